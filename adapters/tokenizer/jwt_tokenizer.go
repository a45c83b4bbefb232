package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/whisperbox/core"
	"github.com/layer-3/whisperbox/ports"
)

// AudienceInbox marks tokens that authorize inbox listing.
const AudienceInbox = "whisperbox:inbox"

// DefaultAccessTTL is how long an inbox access token stays valid.
const DefaultAccessTTL = 5 * time.Minute

// JWTTokenizer implements the Tokenizer interface using HMAC-signed JWTs
type JWTTokenizer struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte) ports.Tokenizer {
	return &JWTTokenizer{
		secret:    secret,
		accessTTL: DefaultAccessTTL,
	}
}

// GrantToToken converts a Grant to an access JWT token
func (j *JWTTokenizer) GrantToToken(grant *core.Grant) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.accessTTL)

	claims := InboxClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grant.Identity,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceInbox},
		},
		Handle: grant.Handle,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// TokenToGrant converts an access JWT token back to a Grant
func (j *JWTTokenizer) TokenToGrant(tokenStr string) (*core.Grant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &InboxClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceInbox), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*InboxClaims)
	if !ok || claims.Handle == "" {
		return nil, core.ErrInvalidToken
	}

	return &core.Grant{
		Handle:   claims.Handle,
		Identity: claims.Subject,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}
