package telegram

import (
	"time"

	"github.com/m3rciful/tracker/internal/config"
	"github.com/m3rciful/tracker/internal/telegram/middleware"
)

// DefaultMiddlewares builds the global middleware chain. Rate limiting is
// added only when an interval is configured.
func DefaultMiddlewares(cfg *config.Config, rec middleware.Counter) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.Recover},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, kind := range cfg.RateLimit.ExcludeUpdates {
				ex[kind] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use:  middleware.RateLimit(middleware.RateLimitOptions{Interval: interval, Exclude: ex}),
			})
		}
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.Logger},
		Middleware{Name: "metrics", Use: middleware.Metrics(rec)},
	)
}

// Names returns the middleware names in chain order.
func Names(mws []Middleware) []string {
	names := make([]string, len(mws))
	for i, mw := range mws {
		names[i] = mw.Name
	}
	return names
}
