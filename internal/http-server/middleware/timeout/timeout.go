package timeout

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds every request with a deadline of the given number of
// seconds. Store and transport calls inherit it through the request
// context; on expiry the operation counts as failed, never as partially
// applied.
func Timeout(seconds int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), time.Duration(seconds)*time.Second)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
