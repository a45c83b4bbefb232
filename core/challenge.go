package core

import "time"

// ChallengePrefix domain-separates signed challenge text from anything else
// a wallet might be asked to sign.
const ChallengePrefix = "whisper-auth"

// Challenge is a short-lived, single-use proof-of-ownership request.
// It is consumed on the first verification attempt regardless of outcome.
type Challenge struct {
	ID        string    // Unique identifier for the challenge
	Handle    string    // Mailbox the challenge is bound to
	Nonce     string    // Random token embedded in the signed text
	Message   string    // Exact text the wallet must sign
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// ChallengeMessage builds the canonical text to sign for a handle and nonce.
// The prefix, handle and nonce are all embedded so a signer cannot be tricked
// into signing an ambiguous payload.
func ChallengeMessage(handle, nonce string) string {
	return ChallengePrefix + ":" + handle + ":" + nonce
}

// Expired reports whether the challenge is past its expiry at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Grant is proof that an identity passed challenge verification for a handle.
// Mailbox listing is only reachable through a grant.
type Grant struct {
	Handle   string    // Handle the grant authorizes
	Identity string    // Identity that proved ownership
	IssuedAt time.Time // When verification succeeded
}
