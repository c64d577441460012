package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	h := http.NewServeMux()

	srv := New(":0", h, nil)
	assert.Equal(t, ":0", srv.Addr)
	assert.Nil(t, srv.ErrorLog)
	assert.NotZero(t, srv.ReadHeaderTimeout)
	assert.Greater(t, srv.WriteTimeout, srv.ReadTimeout)

	srv = New(":0", h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NotNil(t, srv.ErrorLog)
}
