package core

// janitor.go evicts grid views nobody has touched for a while.
//
// Views live only in memory and are normally closed by the client when the
// page is left. Tabs that are simply abandoned never send that request, so a
// background sweep drops views idle for longer than IdleTTL.

import (
	"context"
	"log/slog"
	"time"
)

// JanitorConfig controls idle view eviction.
type JanitorConfig struct {
	IdleTTL  time.Duration // evict views idle this long (default: 30m)
	Interval time.Duration // how often to sweep (default: 1m)
}

func (c JanitorConfig) withDefaults() JanitorConfig {
	if c.IdleTTL <= 0 {
		c.IdleTTL = 30 * time.Minute
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	return c
}

// StartJanitor sweeps idle views every Interval until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context, cfg JanitorConfig) {
	cfg = cfg.withDefaults()
	slog.Info("view janitor started",
		"idle_ttl", cfg.IdleTTL.String(),
		"interval", cfg.Interval.String(),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("view janitor stopped")
			return
		case <-ticker.C:
			n := s.sweepIdleViews(cfg.IdleTTL)
			s.metrics.ViewsEvicted(n)
			if n > 0 {
				slog.Info("evicted idle grid views", "views_evicted", n, "views_open", s.ViewCount())
			}
		}
	}
}

// sweepIdleViews removes views whose last use is older than ttl and returns
// how many were removed.
func (s *Service) sweepIdleViews(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, v := range s.views {
		if v.idleSince().Before(cutoff) {
			delete(s.views, id)
			evicted++
		}
	}
	return evicted
}
