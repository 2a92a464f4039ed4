package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"

	"github.com/go-redis/redis/v8"
)

const UnreadTotalEventType = "unread.total"

// SubscribeSessionEvents decodes every session event published to the
// agents room. The channel closes when ctx ends.
func SubscribeSessionEvents(ctx context.Context, client *redis.Client) <-chan chat.SessionEvent {
	out := make(chan chat.SessionEvent, 64)
	subscriber := client.Subscribe(ctx, redisChannel(AgentsRoom))

	go func() {
		defer close(out)
		defer subscriber.Close()

		ch := subscriber.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, ok := decodeSessionEvent(msg.Payload)
				if !ok {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func decodeSessionEvent(payload string) (chat.SessionEvent, bool) {
	var event dto.ChatEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		slog.Warn("dropping malformed session event", "error", err)
		return chat.SessionEvent{}, false
	}
	if event.Type == "" || event.Session.SessionID == "" {
		return chat.SessionEvent{}, false
	}
	return FromChatEvent(event), true
}

// UnreadNotifier pushes every unread-total change to the agents connected to
// this instance.
func UnreadNotifier(h *Handler) chat.NotifierFunc {
	return func(ctx context.Context, total int, notify bool) error {
		return h.NotifyRoom(ctx, AgentsRoom, dto.UnreadTotalEvent{
			Type:   UnreadTotalEventType,
			Total:  total,
			Notify: notify,
		})
	}
}
