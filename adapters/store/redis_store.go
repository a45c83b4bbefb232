package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/whisperbox/core"
)

const keyPrefix = "whisperbox:"

// Redis implements the message and challenge stores on Redis. Message ids
// come from a single INCR counter; challenge consumption uses GETDEL so two
// concurrent verifications cannot both take the same nonce.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

type messageRecord struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	Ciphertext   []byte    `json:"ciphertext"`
	Nonce        []byte    `json:"nonce"`
	EphemeralKey []byte    `json:"epk"`
	Nickname     string    `json:"nickname,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func inboxKey(handle string) string     { return keyPrefix + "inbox:" + handle }
func challengeKey(nonce string) string  { return keyPrefix + "challenge:" + nonce }
func liveNonceKey(handle string) string { return keyPrefix + "challenge:handle:" + handle }

// Append assigns the next id from the shared counter and pushes the record
// onto the handle's list.
func (s *Redis) Append(ctx context.Context, msg *core.Message) (int64, error) {
	id, err := s.client.Incr(ctx, keyPrefix+"message:id").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to assign message id: %w", core.ErrStoreOperationFailed)
	}

	rec := messageRecord{
		ID:           id,
		Handle:       msg.Handle,
		Ciphertext:   msg.Ciphertext,
		Nonce:        msg.Nonce[:],
		EphemeralKey: msg.EphemeralKey[:],
		Nickname:     msg.Nickname,
		CreatedAt:    msg.CreatedAt,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.client.RPush(ctx, inboxKey(msg.Handle), payload).Err(); err != nil {
		return 0, fmt.Errorf("failed to store message: %w", core.ErrStoreOperationFailed)
	}
	return id, nil
}

// List returns the handle's messages in insertion order.
func (s *Redis) List(ctx context.Context, handle string) ([]core.Message, error) {
	raw, err := s.client.LRange(ctx, inboxKey(handle), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", core.ErrStoreOperationFailed)
	}

	out := make([]core.Message, 0, len(raw))
	for _, item := range raw {
		var rec messageRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode message record: %w", err)
		}
		msg := core.Message{
			ID:         rec.ID,
			Handle:     rec.Handle,
			Ciphertext: rec.Ciphertext,
			Nickname:   rec.Nickname,
			CreatedAt:  rec.CreatedAt,
		}
		copy(msg.Nonce[:], rec.Nonce)
		copy(msg.EphemeralKey[:], rec.EphemeralKey)
		out = append(out, msg)
	}
	return out, nil
}

// Put stores a challenge with its ttl, superseding the handle's previous
// live challenge.
func (s *Redis) Put(ctx context.Context, challenge *core.Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	prev, err := s.client.GetDel(ctx, liveNonceKey(challenge.Handle)).Result()
	if err == nil && prev != "" {
		s.client.Del(ctx, challengeKey(prev))
	} else if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to supersede challenge: %w", core.ErrStoreOperationFailed)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, challengeKey(challenge.Nonce), payload, ttl)
	pipe.Set(ctx, liveNonceKey(challenge.Handle), challenge.Nonce, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store challenge: %w", core.ErrStoreOperationFailed)
	}
	return nil
}

// Take atomically removes and returns the challenge for a nonce.
func (s *Redis) Take(ctx context.Context, nonce string) (*core.Challenge, error) {
	payload, err := s.client.GetDel(ctx, challengeKey(nonce)).Result()
	if err == redis.Nil {
		return nil, core.ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take challenge: %w", core.ErrStoreOperationFailed)
	}

	var ch core.Challenge
	if err := json.Unmarshal([]byte(payload), &ch); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	live, err := s.client.Get(ctx, liveNonceKey(ch.Handle)).Result()
	if err == nil && live == nonce {
		s.client.Del(ctx, liveNonceKey(ch.Handle))
	}
	return &ch, nil
}
