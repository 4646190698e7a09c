package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/messenger/core/logger"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Liveness indicates if the process is running. No dependency checks.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ALIVE")
}

// Readiness verifies all checks succeed.
// Returns "READY" if they do, 503 Service Unavailable on the first failure.
//
// Example:
//
//	mux.Handle("GET /health/ready", health.Readiness(log, m.Healthcheck))
func Readiness(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component("health"),
					logger.Error(err))
				writeText(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
				return
			}
		}
		writeText(w, http.StatusOK, "READY")
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
