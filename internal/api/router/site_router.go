package router

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/endpoints"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	sitesvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/site"

	"github.com/go-chi/chi/v5"
)

func SitePublicRoutes(prefix string, service *sitesvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		siteEndpoints := endpoints.NewSiteEndpoints(service)
		r.Route(prefix+"/site", func(r chi.Router) {
			r.HandleFunc("/", s.MakeHTTPHandleFunc(siteEndpoints.Config))
			r.HandleFunc("/sections/{section}/style", s.MakeHTTPHandleFunc(siteEndpoints.SectionStyle))
		})
	}
}

func SiteAdminRoutes(prefix string, service *sitesvc.Service) api.RouteRegistrar {
	return func(r chi.Router, s *api.APIServer) {
		siteEndpoints := endpoints.NewSiteEndpoints(service)
		r.Route(prefix+"/site", func(r chi.Router) {
			r.HandleFunc("/", s.MakeHTTPHandleFunc(siteEndpoints.AdminConfig, middleware.RequireAdmin))
			r.HandleFunc("/path", s.MakeHTTPHandleFunc(siteEndpoints.AdminPath, middleware.RequireAdmin))
		})
	}
}
