package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ayuda/pkg/domain"
	"ayuda/pkg/requestcontext"
)

type stubTokens struct {
	actor id.UserID
}

func (s stubTokens) ValidateActor(token string) (id.UserID, error) {
	if token != "good" {
		return id.UserID{}, errors.New("bad token")
	}
	return s.actor, nil
}

type echoModule struct{}

func (echoModule) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, requestcontext.UserID(r.Context()).String())
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, id.UserID) {
	actor := id.UserID(uuid.New())
	return NewRouter(Config{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:  stubTokens{actor: actor},
		Modules: []Module{echoModule{}},
		Checks:  checks,
	}), actor
}

func TestRouter_ModulesRequireBearerToken(t *testing.T) {
	router, actor := newTestRouter(nil)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("valid token reaches the module", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		req.Header.Set("X-Request-ID", "req-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, actor.String(), rec.Body.String())
		assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	})
}

func TestRouter_Healthz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
	})

	t.Run("a failing dependency degrades the probe", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})
}

func TestRouter_MetricsIsPublic(t *testing.T) {
	router, _ := newTestRouter(nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
