package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxsafe/pkg/platform/middleware/request"
	"taxsafe/pkg/requestcontext"
	"taxsafe/pkg/testutil"
)

type echoHandler struct {
	path string
}

func (h echoHandler) Register(r chi.Router) {
	r.Get(h.path, func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		_, _ = w.Write([]byte(requestcontext.RequestID(ctx) + "|" + requestcontext.Now(ctx).Format("2006")))
	})
}

func newRouter(health map[string]HealthCheck) http.Handler {
	return NewRouter(Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		AdminToken: "token",
		Public:     []Registrar{echoHandler{path: "/public"}},
		Admin:      []Registrar{echoHandler{path: "/admin/thing"}},
		Health:     health,
	})
}

func TestRouter(t *testing.T) {
	t.Run("public routes carry request id and pinned time", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/public")
		req.Header.Set(request.HeaderRequestID, "req-42")
		req.Header.Set("X-As-Of", "2031-05-01T00:00:00Z")
		rr := testutil.DoRequest(newRouter(nil), req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "req-42|2031", rr.Body.String())
		assert.Equal(t, "req-42", rr.Header().Get(request.HeaderRequestID))
	})

	t.Run("admin routes need the token", func(t *testing.T) {
		router := newRouter(nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/thing"))
		assert.Equal(t, http.StatusForbidden, rr.Code)

		req := testutil.NewRequest(t, http.MethodGet, "/admin/thing")
		req.Header.Set("X-Admin-Token", "token")
		rr = testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("health reports failing dependencies", func(t *testing.T) {
		router := newRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"degraded","postgres":"ok","redis":"unavailable"}`, rr.Body.String())
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rr := testutil.DoRequest(newRouter(nil), testutil.NewRequest(t, http.MethodGet, "/metrics"))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
