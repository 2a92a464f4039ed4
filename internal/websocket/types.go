package websocket

import (
	"context"
	"encoding/json"
)

const (
	// AgentsRoom fans out every session event and the unread total to the
	// agent dashboard.
	AgentsRoom = "agents"

	channelPrefix = "desertport:ws:"
)

// SessionRoom is the room a chat session's participants join.
func SessionRoom(sessionID string) string {
	return "session:" + sessionID
}

// redisChannel maps a room onto the Redis channel that feeds it across
// server instances.
func redisChannel(roomID string) string {
	return channelPrefix + roomID
}

type Room struct {
	Id      string
	Clients map[string]*WSClient
	cancel  context.CancelFunc
}

type WSMessage struct {
	Content   json.RawMessage `json:"content"`
	RoomID    string          `json:"roomId"`
	Timestamp int64           `json:"timestamp"`
}

type RoomRes struct {
	ID      string `json:"id"`
	Clients int    `json:"clients"`
}
