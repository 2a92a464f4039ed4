package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Hub owns the rooms. Membership changes and broadcasts are serialized
// through Run; the mutex only guards readers outside that goroutine.
type Hub struct {
	Register   chan *WSClient
	Unregister chan *WSClient
	Broadcast  chan *WSMessage

	mu    sync.RWMutex
	rooms map[string]*Room
	done  chan struct{}

	// subscriber, when set, feeds a room from outside the process for as
	// long as the room has members.
	subscriber func(ctx context.Context, roomID string)
	metrics    *metrics
}

func NewHub(reg prometheus.Registerer) *Hub {
	return &Hub{
		Register:   make(chan *WSClient),
		Unregister: make(chan *WSClient),
		Broadcast:  make(chan *WSMessage, 64),
		rooms:      make(map[string]*Room),
		done:       make(chan struct{}),
		metrics:    newMetrics(reg),
	}
}

// Run processes registrations and broadcasts until ctx ends, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.register(ctx, client)

		case client := <-h.Unregister:
			h.unregister(client)

		case message := <-h.Broadcast:
			h.broadcast(message)
		}
	}
}

func (h *Hub) register(ctx context.Context, client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.RoomID]
	if !ok {
		room = &Room{
			Id:      client.RoomID,
			Clients: make(map[string]*WSClient),
		}
		if h.subscriber != nil {
			subCtx, cancel := context.WithCancel(ctx)
			room.cancel = cancel
			go h.subscriber(subCtx, room.Id)
		}
		h.rooms[room.Id] = room
		h.metrics.rooms.Set(float64(len(h.rooms)))
	}

	room.Clients[client.ID] = client
	h.metrics.connections.Inc()
	slog.Debug("websocket client joined", "room", room.Id, "client", client.ID, "user", client.UserID)
}

func (h *Hub) unregister(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.RoomID]
	if !ok {
		return
	}
	if _, ok := room.Clients[client.ID]; ok {
		h.removeLocked(room, client)
	}
}

func (h *Hub) broadcast(message *WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[message.RoomID]
	if !ok {
		return
	}

	delivered := 0
	for _, client := range room.Clients {
		select {
		case client.Message <- message:
			delivered++
		default:
			slog.Warn("websocket client too slow, dropping", "room", room.Id, "client", client.ID)
			h.metrics.dropped.Inc()
			h.removeLocked(room, client)
		}
	}
	if delivered > 0 {
		h.metrics.delivered.Add(float64(delivered))
	}
}

// removeLocked detaches client and drops the room once it is empty.
func (h *Hub) removeLocked(room *Room, client *WSClient) {
	delete(room.Clients, client.ID)
	close(client.Message)
	h.metrics.connections.Dec()

	if len(room.Clients) > 0 {
		return
	}
	if room.cancel != nil {
		room.cancel()
	}
	delete(h.rooms, room.Id)
	h.metrics.rooms.Set(float64(len(h.rooms)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range h.rooms {
		for _, client := range room.Clients {
			h.removeLocked(room, client)
		}
	}
}

// join hands client to Run. It reports false once the hub has stopped.
func (h *Hub) join(client *WSClient) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *WSClient) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// publish queues message for local delivery, giving up when ctx ends or the
// hub stops.
func (h *Hub) publish(ctx context.Context, message *WSMessage) bool {
	select {
	case h.Broadcast <- message:
		return true
	case <-ctx.Done():
		return false
	case <-h.done:
		return false
	}
}

// Rooms lists the rooms that currently have members.
func (h *Hub) Rooms() []RoomRes {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]RoomRes, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, RoomRes{ID: room.Id, Clients: len(room.Clients)})
	}
	return rooms
}
