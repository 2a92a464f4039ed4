package chat

import (
	"context"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

type EventType string

const (
	EventSessionCreated  EventType = "session.created"
	EventMessageAppended EventType = "message.appended"
	EventStatusChanged   EventType = "status.changed"
	EventSessionRead     EventType = "session.read"
)

// SessionEvent is emitted after every successful mutation of a session. It
// carries the session as written and, when the mutation appended one, the
// new message.
type SessionEvent struct {
	Type           EventType
	Session        model.ChatSessionItem
	Message        *model.ChatMessageItem
	PreviousStatus model.ChatStatus
}

type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event SessionEvent) error
}

// PublisherFunc adapts a function to EventPublisher.
type PublisherFunc func(ctx context.Context, event SessionEvent) error

func (f PublisherFunc) PublishSessionEvent(ctx context.Context, event SessionEvent) error {
	return f(ctx, event)
}
