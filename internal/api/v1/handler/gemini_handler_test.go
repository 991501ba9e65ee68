package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// The text routes are mounted by content kind name. Requests carry no user
// context here, so every mounted route answers 401 before touching the
// dispatch service.
func TestGeminiRoutesMountedByKind(t *testing.T) {
	h := NewGeminiHandler(nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	mux := http.NewServeMux()
	passthrough := func(next http.Handler) http.Handler { return next }
	h.RegisterRoutes(mux, passthrough)

	for _, path := range []string{"/gemini/blog", "/gemini/linkedin", "/gemini/youtube", "/gemini/tweet"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"topic":"Go"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected %s to be mounted and reject the anonymous request with 401, got %d", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/gemini/generate", strings.NewReader(`{"topic":"Go"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected /gemini/generate to be unmounted, got %d", rec.Code)
	}
}
