package endpoints

import (
	"net/http"
)

type UtilsEndpoints interface {
	HelloWorld(http.ResponseWriter, *http.Request) error
	Version(http.ResponseWriter, *http.Request) error
}

type utilsEndpoints struct {
	service string
}

func NewUtilsEndpoints(service string) UtilsEndpoints {
	return &utilsEndpoints{service: service}
}

func (h *utilsEndpoints) HelloWorld(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Hello world"})
}

func (h *utilsEndpoints) Version(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, map[string]string{"service": h.service})
}
