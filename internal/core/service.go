package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/grid"
	"github.com/JonMunkholm/techbeat/internal/logging"
	"github.com/JonMunkholm/techbeat/internal/metrics"
)

// DefaultLoadTimeout bounds a load when the config leaves it unset.
const DefaultLoadTimeout = 30 * time.Second

// Service owns every open grid view.
type Service struct {
	cfg     config.GridConfig
	source  grid.Source
	limiter *LoadLimiter
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	views map[string]*View

	loads sync.WaitGroup
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics records view and load counters on m and exposes the open view
// count and load slot usage as gauges.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service whose views load their rows from source.
func NewService(cfg config.GridConfig, source grid.Source, opts ...Option) *Service {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	s := &Service{
		cfg:     cfg,
		source:  source,
		limiter: NewLoadLimiter(cfg.MaxConcurrentLoads, cfg.LoadMaxWait),
		now:     time.Now,
		views:   make(map[string]*View),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.metrics.GaugeFunc("grid_views_open", "Number of open grid views",
		func() float64 { return float64(s.ViewCount()) })
	s.metrics.GaugeFunc("grid_loads_active", "Number of grid loads holding a slot",
		func() float64 { return float64(s.limiter.ActiveCount()) })
	return s
}

// OpenView creates a view in the loading state and starts its one-shot load
// in the background. The load is not tied to ctx: a client disconnecting
// does not abort it, only LoadTimeout does.
func (s *Service) OpenView(ctx context.Context) *View {
	v := newView(uuid.New().String(), s.now)

	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()

	logging.FromContext(ctx).Info("grid view opened", "view_id", v.id)
	s.metrics.ViewOpened()

	s.loads.Add(1)
	go s.load(v)

	return v
}

func (s *Service) load(v *View) {
	defer s.loads.Done()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LoadTimeout)
	defer cancel()
	ctx = logging.WithViewID(ctx, v.id)
	logger := logging.FromContext(ctx)

	rows, err := s.fetch(ctx)
	v.finishLoad(rows, err)
	s.metrics.LoadFinished(time.Since(start), err)

	if err != nil {
		logger.Error("grid load failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	logger.Info("grid load completed",
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// fetch takes a limiter slot and calls the source, turning a panic in the
// source into a load failure so the slot is always released.
func (s *Service) fetch(ctx context.Context) (rows []grid.Row, err error) {
	if !s.limiter.TryAcquire() {
		status := s.limiter.Status()
		logging.WithFields(ctx, "active", status.Active, "max_concurrent", status.MaxConcurrent).
			Info("grid load waiting for a slot")
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}
	defer s.limiter.Release()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in source: %v", grid.ErrLoadFailed, r)
		}
	}()

	return s.source.Load(ctx)
}

// View returns the view with the given id.
func (s *Service) View(id string) (*View, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return v, nil
}

// CloseView discards a view and all of its state.
func (s *Service) CloseView(id string) error {
	s.mu.Lock()
	_, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	slog.Info("grid view closed", "view_id", id)
	return nil
}

// ViewCount returns the number of open views.
func (s *Service) ViewCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// WaitForLoads blocks until every started load has resolved or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.loads.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadLimiterStatus reports load slot usage.
func (s *Service) LoadLimiterStatus() LoadLimiterStatus {
	return s.limiter.Status()
}
