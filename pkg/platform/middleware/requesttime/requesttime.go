// Package requesttime pins a single "now" for the whole request, so obligation
// statuses, score deductions and issue timestamps computed in one call agree.
package requesttime

import (
	"net/http"
	"time"

	"taxsafe/pkg/requestcontext"
)

// HeaderAsOf lets operators replay a request as of a past or future instant
// (RFC 3339). Invalid values are ignored.
const HeaderAsOf = "X-As-Of"

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		if raw := r.Header.Get(HeaderAsOf); raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				now = t.UTC()
			}
		}
		ctx := requestcontext.WithTime(r.Context(), now)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
