package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/queue"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc runs f on the request queue behind CORS, request
// logging and the given auth middleware, and renders any returned error.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)
		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		if err := s.requestQueueManager.Enqueue(r.Context(), job); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, ApiError{Error: "Server is busy, try again"})
			return
		}

		err := <-errc
		if err == nil {
			return
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode >= http.StatusInternalServerError {
				slog.Error("request failed", "path", r.URL.Path, "status", httpErr.StatusCode, "error", httpErr.ErrorLog, "request_id", chiMiddleware.GetReqID(r.Context()))
			} else if httpErr.ErrorLog != nil {
				slog.Debug("request rejected", "path", r.URL.Path, "status", httpErr.StatusCode, "error", httpErr.ErrorLog)
			}
			WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
			return
		}

		slog.Error("request failed", "path", r.URL.Path, "error", err, "request_id", chiMiddleware.GetReqID(r.Context()))
		WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(s.cors),
		middleware.Logging(),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler := baseHandler
		for _, m := range authMiddleware {
			handler = m(handler)
		}
		handler(w, r)
	}

	return middleware.Chain(finalHandler, middlewares...)
}
