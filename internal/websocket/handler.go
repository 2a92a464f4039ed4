package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const clientBuffer = 16

type Handler struct {
	hub         *Hub
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	now         func() time.Time
}

// NewHandler wires hub to Redis so every room receives what any instance
// publishes for it. A nil client keeps delivery process-local. Call it
// before starting hub.Run.
func NewHandler(hub *Hub, client *redis.Client, allowedOrigins ...string) *Handler {
	h := &Handler{
		hub:         hub,
		redisClient: client,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		now: time.Now,
	}
	if client != nil {
		hub.subscriber = h.subscribeToRoomChannel
	}
	return h
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (h *Handler) subscribeToRoomChannel(ctx context.Context, roomID string) {
	channel := redisChannel(roomID)
	subscriber := h.redisClient.Subscribe(ctx, channel)
	defer subscriber.Close()

	slog.Debug("subscribed to room channel", "channel", channel)
	ch := subscriber.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("unsubscribed from room channel", "channel", channel)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !json.Valid([]byte(msg.Payload)) {
				slog.Warn("dropping non-JSON room payload", "channel", channel)
				continue
			}
			h.hub.publish(ctx, &WSMessage{
				Content:   json.RawMessage(msg.Payload),
				RoomID:    roomID,
				Timestamp: h.now().Unix(),
			})
		}
	}
}

// JoinRoom upgrades the request and adds the connection to roomID.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request, roomID, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	cl := &WSClient{
		Conn:    conn,
		Message: make(chan *WSMessage, clientBuffer),
		ID:      uuid.NewString(),
		UserID:  userID,
		RoomID:  roomID,
		done:    make(chan struct{}),
	}

	if !h.hub.join(cl) {
		cl.close()
		return fmt.Errorf("websocket hub stopped")
	}

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
	return nil
}

// NotifyRoom delivers payload to the clients of roomID connected to this
// instance only.
func (h *Handler) NotifyRoom(ctx context.Context, roomID string, payload interface{}) error {
	content, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("websocket notify: marshal payload: %w", err)
	}
	if !h.hub.publish(ctx, &WSMessage{
		Content:   content,
		RoomID:    roomID,
		Timestamp: h.now().Unix(),
	}) {
		return fmt.Errorf("websocket notify: hub unavailable")
	}
	return nil
}

func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(h.hub.Rooms())
}
