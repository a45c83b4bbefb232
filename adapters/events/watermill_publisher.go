package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/whisperbox/ports"
)

// MessageStoredEvent announces a new mailbox record to other instances
// and indexers. It carries no ciphertext.
type MessageStoredEvent struct {
	Handle   string    `json:"handle"`
	ID       int64     `json:"id"`
	StoredAt time.Time `json:"stored_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "whisperbox.message.stored",
	}
}

// PublishMessageStored publishes a message-stored event
func (p *WatermillPublisher) PublishMessageStored(ctx context.Context, handle string, id int64) error {
	event := MessageStoredEvent{
		Handle:   handle,
		ID:       id,
		StoredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
