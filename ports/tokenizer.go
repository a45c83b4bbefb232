package ports

import (
	"time"

	"github.com/layer-3/whisperbox/core"
)

// Tokenizer converts between grants and access tokens, so a viewer who
// proved ownership once can re-list the inbox without signing again.
type Tokenizer interface {
	// GrantToToken issues an access token for a grant and returns its expiry.
	GrantToToken(grant *core.Grant) (string, time.Time, error)

	// TokenToGrant validates an access token and reconstructs its grant.
	TokenToGrant(token string) (*core.Grant, error)
}
