package core

import "errors"

var (
	// ErrUnknownHandle is returned when no profile exists for a handle
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrInvalidHandle is returned when a handle is empty or too long
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrHandleTaken is returned when registering a handle that already exists
	ErrHandleTaken = errors.New("handle already registered")

	// ErrChallengeNotFound is returned when a challenge is absent or already consumed
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrChallengeExpired is returned when a challenge is past its expiry
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrInvalidSignature is returned when a signature does not verify
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNotAuthorized is returned when an identity is not in the handle's allowlist
	ErrNotAuthorized = errors.New("identity not authorized for handle")

	// ErrAccessDenied is the generic denial exposed at the mailbox boundary
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidNonce is returned when a message nonce is not 24 bytes
	ErrInvalidNonce = errors.New("invalid nonce size")

	// ErrInvalidPublicKey is returned when a public key is not 32 bytes
	ErrInvalidPublicKey = errors.New("invalid public key size")

	// ErrInvalidCiphertext is returned when a ciphertext is too short to be authentic
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrDirectoryUnavailable is returned when the profile directory cannot be reached
	ErrDirectoryUnavailable = errors.New("profile directory unavailable")

	// ErrStoreOperationFailed is returned when a store operation fails
	ErrStoreOperationFailed = errors.New("store operation failed")

	// ErrInvalidToken is returned when an access token is invalid
	ErrInvalidToken = errors.New("invalid token")
)
