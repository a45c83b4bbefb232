package core

import "time"

// Message is one encrypted mailbox record. Records are append-only: once
// stored they are never edited or deleted.
type Message struct {
	ID           int64     // Assigned by the store, strictly increasing
	Handle       string    // Recipient handle
	Ciphertext   []byte    // Sealed payload, opaque to the server
	Nonce        [24]byte  // Unique per encryption operation
	EphemeralKey [32]byte  // Sender's one-time public key
	Nickname     string    // Optional sender-chosen label
	CreatedAt    time.Time // When the record was accepted
}
