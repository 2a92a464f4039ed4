package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSListsMethodsAndHeaders(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins: []string{"https://desertport.example"},
		AllowedMethods: []string{http.MethodGet, http.MethodPatch},
		AllowedHeaders: []string{"Authorization", "If-Match"},
		ExposedHeaders: []string{"ETag"},
	})(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/site", nil)
	req.Header.Set("Origin", "https://desertport.example")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	want := map[string]string{
		"Access-Control-Allow-Origin":   "https://desertport.example",
		"Access-Control-Allow-Methods":  "GET, PATCH",
		"Access-Control-Allow-Headers":  "Authorization, If-Match",
		"Access-Control-Expose-Headers": "ETag",
	}
	for key, value := range want {
		if got := rr.Header().Get(key); got != value {
			t.Fatalf("%s = %q, want %q", key, got, value)
		}
	}
}

func TestCORSRejectsUnknownOriginPreflight(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://desertport.example"}})(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a preflight")
	})

	req := httptest.NewRequest(http.MethodOptions, "/site", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Fatalf("unexpected CORS headers for unknown origin: %v", rr.Header())
	}
}
