package requesttime_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taxsafe/pkg/platform/middleware/requesttime"
	"taxsafe/pkg/requestcontext"
)

func TestRequestTime(t *testing.T) {
	var seen time.Time
	h := requesttime.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Now(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requesttime.HeaderAsOf, "2025-03-10T12:00:00Z")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requesttime.HeaderAsOf, "yesterday")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.WithinDuration(t, time.Now(), seen, time.Minute)
}
