package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
)

type HTTPError = api.HTTPError

const maxJSONBody = 1 << 20

type ApiMessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method not allowed"),
	}
}

// decodeJSON reads a size-capped JSON body into dst. An empty body is an
// error unless allowEmpty is set.
func decodeJSON(r *http.Request, dst any, what string, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return nil
	}
	return &HTTPError{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid request payload",
		ErrorLog:   fmt.Errorf("decode %s: %w", what, err),
	}
}

// requireClaims returns the identity the authorization middleware stored.
func requireClaims(r *http.Request) (internaljwt.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return internaljwt.Claims{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("request reached a protected handler without claims"),
		}
	}
	return claims, nil
}

// errorWithStatus maps a service error message onto an HTTP error, hiding
// the message for server-side failures.
func errorWithStatus(status int, message string, errorLog error) *HTTPError {
	if status >= http.StatusInternalServerError {
		message = "Internal server error"
	}
	return &HTTPError{
		StatusCode: status,
		Message:    message,
		ErrorLog:   errorLog,
	}
}
