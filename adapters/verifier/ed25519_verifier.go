package verifier

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/layer-3/whisperbox/core"
)

// Ed25519 verifies wallet signatures for base58-encoded ed25519 identities.
// This is the default scheme: Solana-style wallets sign the raw challenge
// text with their account key.
type Ed25519 struct{}

// NewEd25519 creates the default verifier.
func NewEd25519() Ed25519 {
	return Ed25519{}
}

// Verify checks signature (base58) over message against identity (base58
// public key). Any decode failure or tag mismatch is an invalid signature.
func (Ed25519) Verify(identity string, message []byte, signature string) error {
	pub, err := base58.Decode(identity)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("malformed identity: %w", core.ErrInvalidSignature)
	}

	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("malformed signature: %w", core.ErrInvalidSignature)
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), message, sig) {
		return core.ErrInvalidSignature
	}
	return nil
}
