package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"

	"github.com/go-redis/redis/v8"
)

const publishedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Publisher pushes payloads onto the Redis channels the websocket servers
// listen on. It implements chat.EventPublisher.
type Publisher struct {
	client *redis.Client
	now    func() time.Time
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, roomID string, payload interface{}) error {
	if roomID == "" {
		return fmt.Errorf("websocket publish: roomID required")
	}
	if p == nil || p.client == nil {
		return fmt.Errorf("websocket publish: redis client not initialised")
	}

	messageJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("websocket publish: marshal payload: %w", err)
	}

	if err := p.client.Publish(ctx, redisChannel(roomID), messageJSON).Err(); err != nil {
		return fmt.Errorf("websocket publish: redis publish: %w", err)
	}
	return nil
}

// PublishSessionEvent sends event to the session's room and to the agents
// room.
func (p *Publisher) PublishSessionEvent(ctx context.Context, event chat.SessionEvent) error {
	payload := ToChatEvent(event, p.now())
	if err := p.Publish(ctx, SessionRoom(event.Session.SessionID), payload); err != nil {
		return err
	}
	return p.Publish(ctx, AgentsRoom, payload)
}

func ToChatEvent(event chat.SessionEvent, at time.Time) dto.ChatEvent {
	out := dto.ChatEvent{
		Type:           string(event.Type),
		Session:        dto.ToChatSession(event.Session),
		PreviousStatus: string(event.PreviousStatus),
		PublishedAt:    at.UTC().Format(publishedAtLayout),
	}
	if event.Message != nil {
		msg := dto.ToChatMessage(*event.Message)
		out.Message = &msg
	}
	return out
}

func FromChatEvent(event dto.ChatEvent) chat.SessionEvent {
	out := chat.SessionEvent{
		Type:           chat.EventType(event.Type),
		Session:        dto.FromChatSession(event.Session),
		PreviousStatus: model.ChatStatus(event.PreviousStatus),
	}
	if event.Message != nil {
		msg := dto.FromChatMessage(*event.Message)
		out.Message = &msg
	}
	return out
}
