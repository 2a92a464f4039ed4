package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	authsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/auth"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(prefix string, service *authsvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(service)
		r.Route(prefix+"/auth", func(r chi.Router) {
			r.HandleFunc("/register", s.MakeHTTPHandleFunc(authEndpoints.Register))
			r.HandleFunc("/login", s.MakeHTTPHandleFunc(authEndpoints.Login))
			r.HandleFunc("/refresh", s.MakeHTTPHandleFunc(authEndpoints.Refresh))
			r.HandleFunc("/logout", s.MakeHTTPHandleFunc(authEndpoints.Logout))
			r.HandleFunc("/me", s.MakeHTTPHandleFunc(authEndpoints.Me, middleware.RequireAny))
		})
	}
}
