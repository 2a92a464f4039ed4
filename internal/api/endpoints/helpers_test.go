package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/queue"
	authsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/auth"

	"github.com/prometheus/client_golang/prometheus"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func setupTestJWT(t *testing.T) {
	t.Helper()
	internaljwt.Configure("user-secret", "admin-secret", nil)
	authsvc.SetTokenIssuer(func(ctx context.Context, user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error) {
		token, err := internaljwt.CreateToken(user, role, validUntil)
		if err != nil {
			return internaljwt.TokenResponse{}, err
		}
		return internaljwt.TokenResponse{AccessToken: token}, nil
	})
	t.Cleanup(func() {
		authsvc.SetTokenIssuer(nil)
		internaljwt.Configure("", "", nil)
	})
}

func bearer(t *testing.T, id, name string, role internaljwt.Role) map[string]string {
	t.Helper()
	token, err := internaljwt.CreateToken(internaljwt.User{Id: id, Email: id + "@desertport.test", Name: name}, role, 0)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func setupHandler(t *testing.T, registrars ...api.RouteRegistrar) http.Handler {
	t.Helper()

	queueManager := queue.NewRequestQueueManager(10, 2)
	t.Cleanup(queueManager.Shutdown)

	server := api.NewAPIServer(":0", queueManager, registrars, api.WithRegisterer(prometheus.NewRegistry()))
	return server.Handler()
}

func doJSONRequest[T any](t *testing.T, handler http.Handler, method, target string, body interface{}, headers map[string]string, expectedStatus int) T {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, target, expectedStatus, rec.Code, rec.Body.String())
	}

	var result T
	if expectedStatus != http.StatusNoContent {
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return result
}

func mergeHeaders(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
