// Package sealbox implements the mailbox encryption codec: X25519 key
// agreement with XSalsa20-Poly1305 authenticated encryption (NaCl box).
// Every Seal call draws a fresh 24-byte nonce and a fresh ephemeral keypair,
// so the ciphertext reveals nothing about the sender's long-term identity.
package sealbox

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/box"
)

const (
	// KeySize is the size of public and secret keys in bytes.
	KeySize = 32

	// NonceSize is the size of the per-message nonce in bytes.
	NonceSize = 24

	// Overhead is the number of bytes the Poly1305 tag adds to a plaintext.
	Overhead = box.Overhead
)

var (
	// ErrDecryptFailed is returned when the authentication tag does not
	// verify. This is an expected negative result: wrong local key,
	// corrupted record or a malicious payload all land here.
	ErrDecryptFailed = errors.New("sealbox: decryption failed")

	// ErrEmptyPlaintext is returned when sealing an empty message.
	ErrEmptyPlaintext = errors.New("sealbox: empty plaintext")
)

// Sealed is the output of one Seal call. All three fields travel with the
// message; the ephemeral secret key is discarded immediately after sealing.
type Sealed struct {
	Ciphertext   []byte
	Nonce        [NonceSize]byte
	EphemeralKey [KeySize]byte
}

// Seal encrypts plaintext to the recipient's public key. The nonce is random
// per call; since it is 192 bits long, a random value provides a sufficiently
// small probability of repeats. Callers never supply their own nonce.
func Seal(plaintext []byte, recipientPub [KeySize]byte) (*Sealed, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	recipient := recipientPub
	sealed := &Sealed{
		Ciphertext: box.Seal(nil, plaintext, &nonce, &recipient, ephPriv),
		Nonce:      nonce,
	}
	copy(sealed.EphemeralKey[:], ephPub[:])
	return sealed, nil
}

// Open decrypts a sealed message with the recipient's secret key and the
// sender's ephemeral public key. A tag mismatch returns ErrDecryptFailed,
// never garbage plaintext.
func Open(ciphertext []byte, nonce [NonceSize]byte, ephemeralKey [KeySize]byte, recipientSecret [KeySize]byte) ([]byte, error) {
	if len(ciphertext) < Overhead {
		return nil, ErrDecryptFailed
	}
	plaintext, ok := box.Open(nil, ciphertext, &nonce, &ephemeralKey, &recipientSecret)
	if !ok {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
