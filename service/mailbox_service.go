package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/layer-3/whisperbox/core"
	"github.com/layer-3/whisperbox/ports"
	"github.com/layer-3/whisperbox/sealbox"
)

// AppendInput is one message as submitted by a sender. Binary fields are
// raw bytes; the transport decodes its wire encoding before calling in.
type AppendInput struct {
	Handle       string
	Ciphertext   []byte
	Nonce        []byte
	EphemeralKey []byte
	Nickname     string
}

// MailboxService accepts messages from anyone and releases them only
// against a grant from the auth service.
type MailboxService struct {
	directory ports.Directory
	store     ports.MessageStore
	events    ports.EventPublisher
	log       logrus.FieldLogger
}

// NewMailboxService creates a new mailbox service. events may be nil.
func NewMailboxService(
	directory ports.Directory,
	store ports.MessageStore,
	events ports.EventPublisher,
	log logrus.FieldLogger,
) *MailboxService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MailboxService{
		directory: directory,
		store:     store,
		events:    events,
		log:       log,
	}
}

// Append validates shape, rejects mail for nonexistent recipients and
// stores the record. Posting is public: no authentication, and shape or
// unknown-handle failures are safe to reveal to the sender.
func (s *MailboxService) Append(ctx context.Context, in AppendInput) (int64, error) {
	if err := core.ValidateHandle(in.Handle); err != nil {
		return 0, err
	}
	if len(in.Nonce) != sealbox.NonceSize {
		return 0, core.ErrInvalidNonce
	}
	if len(in.EphemeralKey) != sealbox.KeySize {
		return 0, core.ErrInvalidPublicKey
	}
	if len(in.Ciphertext) < sealbox.Overhead {
		return 0, core.ErrInvalidCiphertext
	}

	if _, err := s.directory.Lookup(ctx, in.Handle); err != nil {
		return 0, err
	}

	msg := &core.Message{
		Handle:     in.Handle,
		Ciphertext: in.Ciphertext,
		Nickname:   in.Nickname,
		CreatedAt:  time.Now().UTC(),
	}
	copy(msg.Nonce[:], in.Nonce)
	copy(msg.EphemeralKey[:], in.EphemeralKey)

	id, err := s.store.Append(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to store message: %w", err)
	}

	if s.events != nil {
		// The record is already durable; a missed event is not worth
		// failing the post over.
		if err := s.events.PublishMessageStored(ctx, in.Handle, id); err != nil {
			s.log.WithError(err).WithField("handle", in.Handle).Warn("failed to publish message event")
		}
	}

	return id, nil
}

// List returns the handle's messages in insertion order, id ascending.
// It is only callable with a grant for that exact handle.
func (s *MailboxService) List(ctx context.Context, grant *core.Grant, handle string) ([]core.Message, error) {
	if grant == nil || grant.Handle != handle {
		return nil, core.ErrNotAuthorized
	}
	msgs, err := s.store.List(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
