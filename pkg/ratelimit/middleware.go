package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nna-wms/wmsconsole/pkg/httputil"
)

// RejectFunc writes the response for a limited request. The Retry-After
// header is already set.
type RejectFunc func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

// Middleware enforces l per client IP. A nil limiter passes everything
// through; a nil reject writes a JSON 429.
func Middleware(l *Limiter, reject RejectFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = rejectJSON
	}
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, retryAfter := l.Allow(l.ClientIP(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Retry-After", strconv.Itoa(seconds(retryAfter)))
			reject(w, r, retryAfter)
		})
	}
}

func rejectJSON(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
	httputil.WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please slow down.")
}

// seconds rounds up to whole seconds so clients never retry early. Float
// noise below a millisecond is dropped first.
func seconds(d time.Duration) int {
	d = d.Round(time.Millisecond)
	return max(1, int((d+time.Second-1)/time.Second))
}
