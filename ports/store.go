package ports

import (
	"context"
	"time"

	"github.com/layer-3/whisperbox/core"
)

// MessageStore is the append-only message log. Implementations must assign
// strictly increasing ids with no record loss under concurrent appends.
type MessageStore interface {
	// Append stores a message and returns its assigned id.
	Append(ctx context.Context, msg *core.Message) (int64, error)

	// List returns all messages for a handle in insertion order, id ascending.
	List(ctx context.Context, handle string) ([]core.Message, error)
}

// ChallengeStore holds live challenges. Take must be atomic with removal so
// two concurrent verifications cannot both observe the same challenge.
type ChallengeStore interface {
	// Put stores a challenge for ttl, superseding any live challenge for
	// the same handle.
	Put(ctx context.Context, challenge *core.Challenge, ttl time.Duration) error

	// Take removes and returns the challenge for a nonce, or
	// core.ErrChallengeNotFound if absent or already consumed.
	Take(ctx context.Context, nonce string) (*core.Challenge, error)
}
