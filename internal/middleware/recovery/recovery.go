// Package recovery turns handler panics into 500 responses and reports them
// to Sentry when a client has been initialised.
package recovery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"

	"ledger/internal/log"
)

// Init configures the global Sentry client. An empty DSN leaves reporting off.
func Init(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}
	if environment == "" {
		environment = "production"
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// Middleware recovers from panics in next. Each request gets its own hub so
// scope data does not leak between requests.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		ctx := sentry.SetHubOnContext(r.Context(), hub)
		r = r.WithContext(ctx)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("path", r.URL.Path)
				scope.SetTag("method", r.Method)
				hub.RecoverWithContext(ctx, rec)
			})

			log.FromContext(ctx).WithComponent(log.ComponentHTTP).ErrorContext(ctx, "Handler panic recovered",
				log.FieldError, fmt.Sprint(rec),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"stack", string(debug.Stack()))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
		}()

		next.ServeHTTP(w, r)
	})
}
