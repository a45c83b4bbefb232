package ports

// Verifier checks a wallet signature over a message. The signature encoding
// and scheme belong to the adapter, keeping the protocol logic independent
// of any one identity type.
type Verifier interface {
	// Verify returns nil when signature over message was produced by
	// identity, and core.ErrInvalidSignature otherwise.
	Verify(identity string, message []byte, signature string) error
}
