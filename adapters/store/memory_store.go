package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/whisperbox/core"
)

// Memory is an in-memory implementation of the message and challenge stores.
// It is intended for tests and single-instance deployments.
type Memory struct {
	mu     sync.RWMutex
	nextID int64

	messages map[string][]core.Message

	challenges map[string]core.Challenge // keyed by nonce
	byHandle   map[string]string         // handle -> live nonce
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		messages:   make(map[string][]core.Message),
		challenges: make(map[string]core.Challenge),
		byHandle:   make(map[string]string),
	}
}

// Append stores a message and assigns the next id under the store lock,
// so concurrent appends yield distinct, strictly increasing ids.
func (s *Memory) Append(ctx context.Context, msg *core.Message) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := *msg
	stored.ID = s.nextID
	stored.Ciphertext = append([]byte(nil), msg.Ciphertext...)
	s.messages[msg.Handle] = append(s.messages[msg.Handle], stored)
	return stored.ID, nil
}

// List returns the handle's messages in insertion order.
func (s *Memory) List(ctx context.Context, handle string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[handle]
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Put stores a challenge, superseding any live challenge for the handle.
func (s *Memory) Put(ctx context.Context, challenge *core.Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byHandle[challenge.Handle]; ok {
		delete(s.challenges, prev)
	}
	s.challenges[challenge.Nonce] = *challenge
	s.byHandle[challenge.Handle] = challenge.Nonce

	// Sweep the entry after its ttl unless it was consumed or superseded.
	nonce := challenge.Nonce
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		if ch, ok := s.challenges[nonce]; ok {
			delete(s.challenges, nonce)
			if s.byHandle[ch.Handle] == nonce {
				delete(s.byHandle, ch.Handle)
			}
		}
	}()

	return nil
}

// Take removes and returns the challenge for a nonce. Lookup and removal
// happen under one lock, so only one caller can ever take a given nonce.
func (s *Memory) Take(ctx context.Context, nonce string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[nonce]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	delete(s.challenges, nonce)
	if s.byHandle[ch.Handle] == nonce {
		delete(s.byHandle, ch.Handle)
	}
	return &ch, nil
}
