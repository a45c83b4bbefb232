package directory

import (
	"context"
	"sync"

	"github.com/layer-3/whisperbox/core"
)

// Memory is an in-memory profile directory. Register stands in for the
// external registration flow; the core only ever reads.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]*core.Profile
	byOwner  map[string][]string // owner -> handles in registration order
}

// NewMemory creates a new in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*core.Profile),
		byOwner:  make(map[string][]string),
	}
}

// Register adds a profile. Handles are unique and immutable: a second
// registration for the same handle fails with core.ErrHandleTaken.
// The owner is always a member of the allowlist.
func (d *Memory) Register(profile *core.Profile) error {
	if err := core.ValidateHandle(profile.Handle); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.profiles[profile.Handle]; ok {
		return core.ErrHandleTaken
	}

	stored := *profile
	if !stored.Allowlist.Contains(stored.Owner) {
		stored.Allowlist.Add(stored.Owner)
	}
	d.profiles[stored.Handle] = &stored
	d.byOwner[stored.Owner] = append(d.byOwner[stored.Owner], stored.Handle)
	return nil
}

// Lookup returns the profile for a handle.
func (d *Memory) Lookup(ctx context.Context, handle string) (*core.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	profile, ok := d.profiles[handle]
	if !ok {
		return nil, core.ErrUnknownHandle
	}
	cp := *profile
	return &cp, nil
}

// ListByOwner returns the owner's profiles in registration order.
func (d *Memory) ListByOwner(ctx context.Context, owner string) ([]*core.Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	handles := d.byOwner[owner]
	out := make([]*core.Profile, 0, len(handles))
	for _, h := range handles {
		cp := *d.profiles[h]
		out = append(out, &cp)
	}
	return out, nil
}
