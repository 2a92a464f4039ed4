package websocket

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
)

// WSClient is one websocket connection in one room. ID is unique per
// connection; UserID is whoever the connection authenticated as.
type WSClient struct {
	Conn    *websocket.Conn
	Message chan *WSMessage
	ID      string
	UserID  string
	RoomID  string

	done     chan struct{}
	mu       sync.Mutex
	isClosed bool
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			cl.mu.Unlock()

			if err != nil {
				slog.Debug("websocket ping failed", "client", cl.ID, "error", err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer cl.close()

	for {
		select {
		case <-cl.done:
			return
		case msg, ok := <-cl.Message:
			if !ok {
				cl.mu.Lock()
				_ = cl.Conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				cl.mu.Unlock()
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			_ = cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.Conn.WriteJSON(msg)
			cl.mu.Unlock()

			if err != nil {
				slog.Warn("websocket write failed", "client", cl.ID, "room", cl.RoomID, "error", err)
				return
			}
		}
	}
}

// readMessage only drains the connection: pushes are server to client, so
// anything a client sends is discarded. It returns when the peer goes away.
func (cl *WSClient) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("websocket reader panicked", "client", cl.ID, "panic", r)
		}

		close(cl.done)
		hub.leave(cl)
		cl.close()
		slog.Debug("websocket client disconnected", "client", cl.ID, "room", cl.RoomID)
	}()

	cl.Conn.SetReadLimit(maxMessageSize)
	_ = cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.Conn.SetPongHandler(func(string) error {
		return cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.Conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && (closeErr.Code == websocket.CloseNormalClosure ||
				closeErr.Code == websocket.CloseGoingAway ||
				closeErr.Code == websocket.CloseNoStatusReceived) {
				return
			}
			slog.Debug("websocket read ended", "client", cl.ID, "error", err)
			return
		}
	}
}

func (cl *WSClient) close() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.isClosed {
		return
	}
	cl.isClosed = true
	_ = cl.Conn.Close()
}
