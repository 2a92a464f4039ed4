package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	favoritessvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/favorites"

	"github.com/go-chi/chi/v5"
)

func FavoritesRoutes(prefix string, service *favoritessvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		favoritesEndpoints := endpoints.NewFavoritesEndpoints(service)
		r.Route(prefix+"/favorites", func(r chi.Router) {
			r.HandleFunc("/", s.MakeHTTPHandleFunc(favoritesEndpoints.Favorites, middleware.RequireUser))
			r.HandleFunc("/{vehicleID}", s.MakeHTTPHandleFunc(favoritesEndpoints.Favorite, middleware.RequireUser))
		})
	}
}
