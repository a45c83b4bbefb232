package tokenizer

import "github.com/golang-jwt/jwt/v5"

// InboxClaims combines standard claims with the grant-specific ones
type InboxClaims struct {
	jwt.RegisteredClaims
	Handle string `json:"handle"` // Mailbox the token may list
}
