package core

// MaxHandleLen bounds handle length on every path that accepts one.
const MaxHandleLen = 32

// Profile binds a handle to its owner identity, encryption key and allowlist.
// Profiles are created by an external registration flow and are read-only here.
type Profile struct {
	Handle       string    // Unique, case-sensitive mailbox name
	Owner        string    // Identity that registered the handle
	EncPublicKey [32]byte  // Public key senders encrypt to
	Allowlist    Allowlist // Identities allowed to prove ownership
}

// Authorized reports whether identity may prove ownership of this profile.
// The owner is always authorized, even if the allowlist omits it.
func (p *Profile) Authorized(identity string) bool {
	return identity == p.Owner || p.Allowlist.Contains(identity)
}

// Allowlist is an ordered set of identities.
type Allowlist struct {
	order   []string
	members map[string]struct{}
}

// NewAllowlist builds an allowlist from identities, dropping duplicates.
func NewAllowlist(identities ...string) Allowlist {
	a := Allowlist{members: make(map[string]struct{}, len(identities))}
	for _, id := range identities {
		a.Add(id)
	}
	return a
}

// Add appends an identity, ignoring duplicates.
func (a *Allowlist) Add(identity string) {
	if a.members == nil {
		a.members = make(map[string]struct{})
	}
	if _, ok := a.members[identity]; ok {
		return
	}
	a.members[identity] = struct{}{}
	a.order = append(a.order, identity)
}

// Contains reports set membership.
func (a Allowlist) Contains(identity string) bool {
	_, ok := a.members[identity]
	return ok
}

// Identities returns the members in insertion order.
func (a Allowlist) Identities() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of members.
func (a Allowlist) Len() int {
	return len(a.order)
}

// ValidateHandle checks handle shape shared by all entry points.
func ValidateHandle(handle string) error {
	if handle == "" || len(handle) > MaxHandleLen {
		return ErrInvalidHandle
	}
	return nil
}
