package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/villagecompute/jobkit/pkg/logger"
)

// Check is a readiness probe for one dependency.
type Check func(context.Context) error

// HealthCheckHandler serves liveness when no checks are given ("ALIVE") and
// readiness otherwise: "READY" when every check passes, 503 "NOT_READY" when
// any fails. Checks run with the request context.
func HealthCheckHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		var errs []error
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			log.ErrorContext(r.Context(), "readiness check failed", logger.Errors(errs...))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
