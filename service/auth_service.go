package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/layer-3/whisperbox/core"
	"github.com/layer-3/whisperbox/ports"
)

// DefaultChallengeTTL is how long an issued challenge stays verifiable.
const DefaultChallengeTTL = 5 * time.Minute

// AuthService issues challenges and verifies wallet signatures over them.
// All denial reasons are logged here in detail; callers at the boundary
// collapse them to a single generic denial.
type AuthService struct {
	directory  ports.Directory
	challenges ports.ChallengeStore
	verifier   ports.Verifier
	log        logrus.FieldLogger

	challengeTTL time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	directory ports.Directory,
	challenges ports.ChallengeStore,
	verifier ports.Verifier,
	log logrus.FieldLogger,
) *AuthService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthService{
		directory:    directory,
		challenges:   challenges,
		verifier:     verifier,
		log:          log,
		challengeTTL: DefaultChallengeTTL,
	}
}

// SetChallengeTTL overrides the expiry window, mainly for tests.
func (s *AuthService) SetChallengeTTL(ttl time.Duration) {
	s.challengeTTL = ttl
}

// IssueChallenge creates a challenge for a handle. A fresh challenge
// supersedes any unconsumed one for the same handle.
func (s *AuthService) IssueChallenge(ctx context.Context, handle string) (*core.Challenge, error) {
	if err := core.ValidateHandle(handle); err != nil {
		return nil, err
	}

	if _, err := s.directory.Lookup(ctx, handle); err != nil {
		return nil, err
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now().UTC()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Handle:    handle,
		Nonce:     nonce,
		Message:   core.ChallengeMessage(handle, nonce),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.challenges.Put(ctx, challenge, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge, nil
}

// Authorize verifies a signed challenge and returns a grant for the handle.
// The challenge is consumed on the first attempt regardless of outcome, so
// a stale signature cannot be replayed after a failure.
func (s *AuthService) Authorize(ctx context.Context, handle, identity, signature, nonce string) (*core.Grant, error) {
	fields := logrus.Fields{"handle": handle, "identity": identity}

	challenge, err := s.challenges.Take(ctx, nonce)
	if err != nil {
		return nil, s.deny(fields, err)
	}

	// A nonce issued for another handle counts as unknown for this one.
	if challenge.Handle != handle {
		return nil, s.deny(fields, core.ErrChallengeNotFound)
	}

	now := time.Now().UTC()
	if challenge.Expired(now) {
		return nil, s.deny(fields, core.ErrChallengeExpired)
	}

	// The text is rebuilt from the stored handle and nonce, never taken
	// from the request.
	message := core.ChallengeMessage(challenge.Handle, challenge.Nonce)
	if err := s.verifier.Verify(identity, []byte(message), signature); err != nil {
		return nil, s.deny(fields, err)
	}

	profile, err := s.directory.Lookup(ctx, handle)
	if err != nil {
		return nil, s.deny(fields, err)
	}
	if !profile.Authorized(identity) {
		return nil, s.deny(fields, core.ErrNotAuthorized)
	}

	return &core.Grant{Handle: handle, Identity: identity, IssuedAt: now}, nil
}

// deny records the detailed reason internally and passes it up; the HTTP
// boundary is responsible for collapsing it.
func (s *AuthService) deny(fields logrus.Fields, reason error) error {
	s.log.WithFields(fields).WithError(reason).Warn("inbox access denied")
	return reason
}

// generateNonce returns a URL-safe random token, 16 bytes of entropy.
func generateNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
