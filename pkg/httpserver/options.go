package httpserver

import (
	"fmt"
	"log/slog"
	"time"
)

// Option configures the HTTP server. Invalid values are reported by New.
type Option func(*config)

func (c *config) invalid(format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidOption}, args...)...))
}

// WithAddr sets the listen address. ":0" picks a free port; see Server.Addr.
func WithAddr(addr string) Option {
	return func(c *config) {
		if addr == "" {
			c.invalid("addr cannot be empty")
			return
		}
		c.addr = addr
	}
}

// WithReadTimeout sets the maximum duration for reading the entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			c.invalid("read timeout must be > 0, got %s", d)
			return
		}
		c.readTimeout = d
	}
}

// WithWriteTimeout sets the maximum duration before timing out writes of the response.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			c.invalid("write timeout must be > 0, got %s", d)
			return
		}
		c.writeTimeout = d
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			c.invalid("idle timeout must be > 0, got %s", d)
			return
		}
		c.idleTimeout = d
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d <= 0 {
			c.invalid("shutdown timeout must be > 0, got %s", d)
			return
		}
		c.shutdownTimeout = d
	}
}

// WithLogger sets the server logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStartHook registers a callback run with the bound address once the
// listener is open.
func WithStartHook(h func(addr string)) Option {
	return func(c *config) {
		if h == nil {
			c.invalid("nil start hook")
			return
		}
		c.startHooks = append(c.startHooks, h)
	}
}

// WithStopHook registers a callback run after the server shuts down.
func WithStopHook(h func()) Option {
	return func(c *config) {
		if h == nil {
			c.invalid("nil stop hook")
			return
		}
		c.stopHooks = append(c.stopHooks, h)
	}
}
