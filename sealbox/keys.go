package sealbox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// ErrInvalidKeySize is returned when a decoded key is not 32 bytes.
var ErrInvalidKeySize = errors.New("sealbox: invalid key size")

// ErrInvalidNonceSize is returned when a decoded nonce is not 24 bytes.
var ErrInvalidNonceSize = errors.New("sealbox: invalid nonce size")

// Keypair holds a recipient's long-term box keys. The secret key never
// leaves the holder; only failure of the entropy source prevents creation.
type Keypair struct {
	Public [KeySize]byte
	Secret [KeySize]byte
}

// GenerateKeypair creates a fresh random keypair.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	kp := &Keypair{}
	copy(kp.Public[:], pub[:])
	copy(kp.Secret[:], priv[:])
	return kp, nil
}

// FromSecretKey rebuilds a keypair from a stored base64 secret key blob,
// recomputing the public key.
func FromSecretKey(blob string) (*Keypair, error) {
	secret, err := DecodeKey(blob)
	if err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	if err != nil {
		return nil, err
	}
	kp := &Keypair{Secret: secret}
	copy(kp.Public[:], pub)
	return kp, nil
}

// PublicBase64 returns the public key as standard base64.
func (kp *Keypair) PublicBase64() string {
	return base64.StdEncoding.EncodeToString(kp.Public[:])
}

// SecretBase64 returns the secret key blob the holder persists.
func (kp *Keypair) SecretBase64() string {
	return base64.StdEncoding.EncodeToString(kp.Secret[:])
}

// DecodeKey parses a base64-encoded 32-byte key.
func DecodeKey(s string) ([KeySize]byte, error) {
	var key [KeySize]byte
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return key, ErrInvalidKeySize
	}
	if len(raw) != KeySize {
		return key, ErrInvalidKeySize
	}
	copy(key[:], raw)
	return key, nil
}

// DecodeNonce parses a base64-encoded 24-byte nonce.
func DecodeNonce(s string) ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nonce, ErrInvalidNonceSize
	}
	if len(raw) != NonceSize {
		return nonce, ErrInvalidNonceSize
	}
	copy(nonce[:], raw)
	return nonce, nil
}
