package jobadmin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/villagecompute/jobkit/pkg/logger"
	"github.com/villagecompute/jobkit/pkg/queue"
)

const defaultArchiveLimit = 50

type inspectorKey struct{}

func inspectorFrom(ctx context.Context) Inspector {
	jt, _ := ctx.Value(inspectorKey{}).(Inspector)
	return jt
}

func (a *api) resolveJobType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "jobType")
		jt, found := a.jobTypes[name]
		if !found {
			fail(w, fmt.Errorf("%w: %s", ErrUnknownJobType, name))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), inspectorKey{}, jt)))
	})
}

func (a *api) listStats(w http.ResponseWriter, r *http.Request) {
	stats := make([]queue.Stats, 0, len(a.names))
	for _, name := range a.names {
		stats = append(stats, a.jobTypes[name].Stats())
	}
	ok(w, stats, map[string]any{"job_types": len(stats)})
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	ok(w, inspectorFrom(r.Context()).Stats(), nil)
}

func (a *api) deadLetters(w http.ResponseWriter, r *http.Request) {
	letters := inspectorFrom(r.Context()).DeadLetters()
	ok(w, letters, map[string]any{"count": len(letters)})
}

func (a *api) archived(w http.ResponseWriter, r *http.Request) {
	jt := inspectorFrom(r.Context())
	archive, found := a.archives[jt.Name()]
	if !found || archive == nil {
		fail(w, fmt.Errorf("%w: %s", ErrArchiveUnavailable, jt.Name()))
		return
	}

	limit := defaultArchiveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(w, fmt.Errorf("%w: %q", ErrInvalidLimit, raw))
			return
		}
		limit = n
	}

	records, err := archive.RecentRaw(r.Context(), jt.Name(), limit)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "failed to read dead letter archive",
			logger.JobType(jt.Name()),
			logger.Error(err))
		fail(w, err)
		return
	}
	ok(w, records, map[string]any{"count": len(records), "limit": limit})
}

func (a *api) requeue(w http.ResponseWriter, r *http.Request) {
	jt := inspectorFrom(r.Context())
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(w, fmt.Errorf("%w: %q", ErrInvalidExecutionID, raw))
		return
	}

	if err := jt.Requeue(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	a.logger.InfoContext(r.Context(), "dead letter requeued by operator",
		logger.JobType(jt.Name()),
		logger.ExecutionID(id))
	ok(w, map[string]any{"id": id, "requeued": true}, nil)
}

func (a *api) requeueAll(w http.ResponseWriter, r *http.Request) {
	jt := inspectorFrom(r.Context())
	n, err := jt.RequeueAll(r.Context())
	if err != nil && n == 0 {
		fail(w, err)
		return
	}
	meta := map[string]any{"remaining": jt.Stats().DeadLetterDepth}
	if err != nil {
		// Partial replay: report what moved and why it stopped.
		meta["stopped"] = err.Error()
	}
	a.logger.InfoContext(r.Context(), "dead letters requeued by operator",
		logger.JobType(jt.Name()),
		logger.Count(n))
	ok(w, map[string]any{"requeued": n}, meta)
}

func (a *api) purge(w http.ResponseWriter, r *http.Request) {
	jt := inspectorFrom(r.Context())
	n := jt.PurgeDeadLetters()
	a.logger.WarnContext(r.Context(), "dead letters purged by operator",
		logger.JobType(jt.Name()),
		logger.Count(n))
	ok(w, map[string]any{"purged": n}, nil)
}

func (a *api) drain(w http.ResponseWriter, r *http.Request) {
	if a.scheduler == nil {
		fail(w, ErrDrainUnavailable)
		return
	}
	jt := inspectorFrom(r.Context())
	n, err := a.scheduler.DrainNow(r.Context(), jt.Name())
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, map[string]any{"processed": n}, nil)
}
