// Package httpserver runs the jobkit admin HTTP surface.
//
// Server wraps net/http with functional options, environment configuration
// (see Config) and graceful shutdown driven by context cancellation, so it
// slots into an errgroup next to the drain scheduler:
//
//	srv, err := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// HealthCheckHandler serves liveness and readiness probes. Readiness checks
// such as redis.Healthcheck run with the request context.
package httpserver
