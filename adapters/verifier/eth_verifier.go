package verifier

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/whisperbox/core"
)

// PersonalSign verifies EIP-191 personal_sign signatures for hex-address
// identities, for deployments whose registry binds handles to Ethereum
// wallets instead of ed25519 keys.
type PersonalSign struct{}

// NewPersonalSign creates an EIP-191 verifier.
func NewPersonalSign() PersonalSign {
	return PersonalSign{}
}

// Verify recovers the signer of the prefixed message hash and compares it
// to the identity address.
func (PersonalSign) Verify(identity string, message []byte, signature string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return fmt.Errorf("malformed signature: %w", core.ErrInvalidSignature)
	}

	// Wallets return V as 27/28; recovery wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return fmt.Errorf("signature recovery failed: %w", core.ErrInvalidSignature)
	}

	recovered := crypto.PubkeyToAddress(*pub).Hex()
	if !strings.EqualFold(recovered, identity) {
		return core.ErrInvalidSignature
	}
	return nil
}
