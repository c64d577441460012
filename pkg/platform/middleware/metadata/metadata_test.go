package metadata_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"taxsafe/pkg/platform/middleware/metadata"
	"taxsafe/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", metadata.ClientIPFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4312"
	assert.Equal(t, "192.0.2.1", metadata.ClientIPFromRequest(req))
}

func TestDescribeUserAgent(t *testing.T) {
	assert.Empty(t, metadata.DescribeUserAgent("  "))

	chrome := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	assert.Contains(t, metadata.DescribeUserAgent(chrome), "Chrome/120.0.0.0")

	long := strings.Repeat("x", 300)
	assert.LessOrEqual(t, len(metadata.DescribeUserAgent(long)), 128)
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotClient string
	h := metadata.ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotClient = requestcontext.Client(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.7")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.7", gotIP)
	assert.Contains(t, gotClient, "Chrome")
}
