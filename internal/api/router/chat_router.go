package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"

	"github.com/go-chi/chi/v5"
)

// ChatPublicRoutes serves the site widget. Visitors prove access to a
// session with the token returned when it started.
func ChatPublicRoutes(prefix string, service *chatsvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		chatEndpoints := endpoints.NewChatEndpoints(service)
		r.Route(prefix+"/chat/sessions", func(r chi.Router) {
			r.HandleFunc("/", s.MakeHTTPHandleFunc(chatEndpoints.StartSession, middleware.Identify()))
			r.HandleFunc("/{sessionID}/messages", s.MakeHTTPHandleFunc(chatEndpoints.SessionMessages))
			r.HandleFunc("/{sessionID}/agent-request", s.MakeHTTPHandleFunc(chatEndpoints.RequestAgent))
			r.HandleFunc("/{sessionID}/read", s.MakeHTTPHandleFunc(chatEndpoints.MarkRead))
			r.HandleFunc("/{sessionID}/close", s.MakeHTTPHandleFunc(chatEndpoints.Close))
		})
	}
}

func ChatAdminRoutes(prefix string, service *chatsvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		chatEndpoints := endpoints.NewChatEndpoints(service)
		r.Route(prefix+"/chat/sessions", func(r chi.Router) {
			r.HandleFunc("/", s.MakeHTTPHandleFunc(chatEndpoints.AgentSessions, middleware.RequireAdmin))
			r.HandleFunc("/{sessionID}/messages", s.MakeHTTPHandleFunc(chatEndpoints.AgentMessages, middleware.RequireAdmin))
			r.HandleFunc("/{sessionID}/read", s.MakeHTTPHandleFunc(chatEndpoints.AgentMarkRead, middleware.RequireAdmin))
			r.HandleFunc("/{sessionID}/close", s.MakeHTTPHandleFunc(chatEndpoints.AgentClose, middleware.RequireAdmin))
		})
	}
}
