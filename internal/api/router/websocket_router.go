package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/websocket"

	"github.com/go-chi/chi/v5"
)

func WebsocketRoutes(prefix string, chat *chatsvc.Service, handler *websocket.Handler) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		wsEndpoints := endpoints.NewWebsocketEndpoints(chat, handler)
		r.HandleFunc(prefix+"/chat/sessions/{sessionID}", s.MakeHTTPHandleFunc(wsEndpoints.Session))
		r.HandleFunc(prefix+"/notifications", s.MakeHTTPHandleFunc(wsEndpoints.Notifications))
		r.HandleFunc(prefix+"/rooms", s.MakeHTTPHandleFunc(handler.GetRooms, middleware.RequireAdmin))
	}
}
