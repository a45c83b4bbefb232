package verifier

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/whisperbox/core"
)

func TestEd25519VerifyValid(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte(core.ChallengeMessage("alice", "abc"))
	signature := base58.Encode(ed25519.Sign(priv, message))

	v := NewEd25519()
	assert.NoError(t, v.Verify(base58.Encode(pub), message, signature))
}

func TestEd25519VerifyWrongSigner(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte(core.ChallengeMessage("alice", "abc"))
	signature := base58.Encode(ed25519.Sign(otherPriv, message))

	v := NewEd25519()
	assert.ErrorIs(t, v.Verify(base58.Encode(pub), message, signature), core.ErrInvalidSignature)
}

func TestEd25519VerifyWrongMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signature := base58.Encode(ed25519.Sign(priv, []byte(core.ChallengeMessage("alice", "abc"))))

	v := NewEd25519()
	err = v.Verify(base58.Encode(pub), []byte(core.ChallengeMessage("alice", "xyz")), signature)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestEd25519VerifyMalformedInputs(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := []byte("msg")
	signature := base58.Encode(ed25519.Sign(priv, message))

	v := NewEd25519()
	assert.ErrorIs(t, v.Verify("not-base58-0OIl", message, signature), core.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(base58.Encode([]byte("short")), message, signature), core.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(base58.Encode(pub), message, "not-base58-0OIl"), core.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(base58.Encode(pub), message, base58.Encode([]byte("short"))), core.ErrInvalidSignature)
}

func TestPersonalSignVerifyValid(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	message := []byte(core.ChallengeMessage("alice", "abc"))
	sig, err := ethcrypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)

	// Wallets report V as 27/28.
	walletSig := append([]byte(nil), sig...)
	walletSig[64] += 27

	v := NewPersonalSign()
	assert.NoError(t, v.Verify(address, message, hexutil.Encode(sig)))
	assert.NoError(t, v.Verify(address, message, hexutil.Encode(walletSig)))
}

func TestPersonalSignVerifyWrongAddress(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	message := []byte(core.ChallengeMessage("alice", "abc"))
	sig, err := ethcrypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)

	v := NewPersonalSign()
	err = v.Verify(ethcrypto.PubkeyToAddress(otherKey.PublicKey).Hex(), message, hexutil.Encode(sig))
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestPersonalSignVerifyMalformedSignature(t *testing.T) {
	v := NewPersonalSign()
	message := []byte("msg")

	assert.ErrorIs(t, v.Verify("0x0000000000000000000000000000000000000000", message, "zzz"), core.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify("0x0000000000000000000000000000000000000000", message, "0x0102"), core.ErrInvalidSignature)
}

