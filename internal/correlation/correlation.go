package correlation

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/logger"
)

// HeaderName is the correlation header, inbound and outbound.
const HeaderName = "X-Correlation-Id"

const maxLen = 64

var allowed = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type contextKey struct{}

// FromContext returns the correlation id resolved for this request, or ""
// outside the middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Middleware resolves the request's correlation id, stores it in the
// request context, echoes it in the response header and emits one access
// log line per request. The id lives only in the request-scoped context, so
// nothing leaks across requests.
func Middleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := resolve(r.Header.Get(HeaderName))

			ctx := context.WithValue(r.Context(), contextKey{}, id)
			w.Header().Set(HeaderName, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// The access line must be emitted no matter how the
			// handler exits.
			defer func() {
				durationMs := time.Since(start).Milliseconds()
				log.Request(r.Method, r.URL.Path, rec.status, durationMs, id)
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

// resolve echoes a valid inbound id and generates a fresh uuid for a
// missing, empty, oversized or malformed one.
func resolve(raw string) string {
	if raw == "" {
		return uuid.New().String()
	}

	candidate := strings.TrimSpace(raw)
	if candidate == "" || len(candidate) > maxLen || !allowed.MatchString(candidate) {
		return uuid.New().String()
	}

	return candidate
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
