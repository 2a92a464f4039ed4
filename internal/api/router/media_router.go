package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	mediasvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/media"

	"github.com/go-chi/chi/v5"
)

func MediaRoutes(prefix string, service *mediasvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		mediaEndpoints := endpoints.NewMediaEndpoints(service)
		r.HandleFunc(prefix+"/media", s.MakeHTTPHandleFunc(mediaEndpoints.Upload, middleware.RequireAdmin))
	}
}
