package jobadmin

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/villagecompute/jobkit/pkg/queue"
)

type (
	// Inspector is the operator surface of one job type.
	// *queue.Processor implements it for any payload type.
	Inspector interface {
		Name() string
		Stats() queue.Stats
		DeadLetters() []queue.DeadLetter
		Requeue(ctx context.Context, id uuid.UUID) error
		RequeueAll(ctx context.Context) (int, error)
		PurgeDeadLetters() int
	}

	// Drainer runs a registered drain out of schedule. *queue.Scheduler implements it.
	Drainer interface {
		DrainNow(ctx context.Context, name string) (int, error)
	}

	// ArchiveReader lists durably archived dead letters.
	// *redis.DeadLetterArchive implements it.
	ArchiveReader interface {
		RecentRaw(ctx context.Context, jobType string, limit int) ([]json.RawMessage, error)
	}
)

// RouterOptions configures the admin API. Only JobTypes is required.
type RouterOptions struct {
	JobTypes []Inspector
	// Scheduler enables POST /{jobType}/drain. Drains are looked up by job type name.
	Scheduler Drainer
	// Archives enables GET /{jobType}/dead-letters/archived for the listed job types.
	Archives map[string]ArchiveReader
	Logger   *slog.Logger
}

type api struct {
	jobTypes  map[string]Inspector
	names     []string
	scheduler Drainer
	archives  map[string]ArchiveReader
	logger    *slog.Logger
}

// Router creates the job administration API.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/admin/jobs", jobadmin.Router(jobadmin.RouterOptions{
//	    JobTypes:  []jobadmin.Inspector{notifications, labels},
//	    Scheduler: scheduler,
//	}))
func Router(opts RouterOptions) chi.Router {
	a := &api{
		jobTypes:  make(map[string]Inspector, len(opts.JobTypes)),
		scheduler: opts.Scheduler,
		archives:  opts.Archives,
		logger:    cmp.Or(opts.Logger, slog.Default()),
	}
	for _, jt := range opts.JobTypes {
		if jt == nil {
			continue
		}
		a.jobTypes[jt.Name()] = jt
		a.names = append(a.names, jt.Name())
	}
	slices.Sort(a.names)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", a.listStats)
	r.Route("/{jobType}", func(r chi.Router) {
		r.Use(a.resolveJobType)

		r.Get("/stats", a.stats)
		r.Post("/drain", a.drain)

		r.Route("/dead-letters", func(r chi.Router) {
			r.Get("/", a.deadLetters)
			r.Delete("/", a.purge)
			r.Get("/archived", a.archived)
			r.Post("/requeue", a.requeueAll)
			r.Post("/{id}/requeue", a.requeue)
		})
	})

	return r
}
