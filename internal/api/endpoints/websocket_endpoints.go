package endpoints

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/websocket"

	"github.com/go-chi/chi/v5"
)

// RoomJoiner attaches an upgraded connection to a room.
type RoomJoiner interface {
	JoinRoom(w http.ResponseWriter, r *http.Request, roomID, userID string) error
}

type WebsocketEndpoints interface {
	Session(http.ResponseWriter, *http.Request) error
	Notifications(http.ResponseWriter, *http.Request) error
}

type websocketEndpoints struct {
	chat   *chatsvc.Service
	joiner RoomJoiner
}

func NewWebsocketEndpoints(chat *chatsvc.Service, joiner RoomJoiner) WebsocketEndpoints {
	return &websocketEndpoints{chat: chat, joiner: joiner}
}

// Session joins the live feed of one chat session. Visitors authenticate
// with their session token; agents pass role=agent and an admin token.
func (h *websocketEndpoints) Session(w http.ResponseWriter, r *http.Request) error {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: "sessionId is required", ErrorLog: fmt.Errorf("websocket session id missing")}
	}

	if r.URL.Query().Get("role") == "agent" {
		claims, err := adminFromRequest(r)
		if err != nil {
			return err
		}
		return h.join(w, r, websocket.SessionRoom(sessionID), claims.ID)
	}

	access, err := h.chat.AuthorizeSession(r.URL.Query().Get("token"), sessionID)
	if err != nil {
		return chatServiceError(err)
	}
	userID := access.UserID
	if userID == "" {
		userID = "visitor:" + sessionID
	}
	return h.join(w, r, websocket.SessionRoom(sessionID), userID)
}

// Notifications joins the agents room, which carries every session event
// and the unread total.
func (h *websocketEndpoints) Notifications(w http.ResponseWriter, r *http.Request) error {
	claims, err := adminFromRequest(r)
	if err != nil {
		return err
	}
	return h.join(w, r, websocket.AgentsRoom, claims.ID)
}

func (h *websocketEndpoints) join(w http.ResponseWriter, r *http.Request, roomID, userID string) error {
	if err := h.joiner.JoinRoom(w, r, roomID, userID); err != nil {
		// The upgrader has already answered the client.
		slog.Warn("websocket join failed", "room", roomID, "error", err)
	}
	return nil
}

// adminFromRequest accepts the admin token as a bearer header or, since
// browsers cannot set headers on websocket requests, as ?token=.
func adminFromRequest(r *http.Request) (internaljwt.Claims, error) {
	token := middleware.BearerToken(r)
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return internaljwt.Claims{}, &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized", ErrorLog: fmt.Errorf("websocket missing admin token")}
	}

	claims, err := internaljwt.ParseToken(token, internaljwt.RoleAdmin)
	if err != nil {
		return internaljwt.Claims{}, &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized", ErrorLog: fmt.Errorf("websocket admin token: %w", err)}
	}
	return claims, nil
}
