package ports

import "context"

// EventPublisher notifies other instances about stored messages.
type EventPublisher interface {
	// PublishMessageStored announces that a message was appended to a handle.
	PublishMessageStored(ctx context.Context, handle string, id int64) error
}
