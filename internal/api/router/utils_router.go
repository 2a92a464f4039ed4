package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"

	"github.com/go-chi/chi/v5"
)

func UtilsRoutes(prefix, service string) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		utilsEndpoints := endpoints.NewUtilsEndpoints(service)
		r.HandleFunc(prefix+"/hello-world", s.MakeHTTPHandleFunc(utilsEndpoints.HelloWorld))
		r.HandleFunc(prefix+"/version", s.MakeHTTPHandleFunc(utilsEndpoints.Version))
	}
}
