package ports

import (
	"context"

	"github.com/layer-3/whisperbox/core"
)

// Directory is the read-only profile registry. Profiles are created and
// mutated only by an external registration flow.
type Directory interface {
	// Lookup returns the profile for a handle, or core.ErrUnknownHandle.
	Lookup(ctx context.Context, handle string) (*core.Profile, error)

	// ListByOwner returns every profile registered by an owner identity.
	ListByOwner(ctx context.Context, owner string) ([]*core.Profile, error)
}
