package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/grid"
	"github.com/JonMunkholm/techbeat/internal/metrics"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.GridConfig {
	return config.GridConfig{
		LoadTimeout:        time.Second,
		MaxConcurrentLoads: 4,
		LoadMaxWait:        time.Second,
	}
}

func rowsSource(rows []grid.Row) grid.Source {
	return grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		out := make([]grid.Row, len(rows))
		copy(out, rows)
		return out, nil
	})
}

func generatedRows(n int) []grid.Row {
	return grid.Generator{Seed: 1, Now: func() time.Time { return testNow }}.Generate(n)
}

// openReady opens a view over rows and waits for the load to finish.
func openReady(t *testing.T, rows []grid.Row) (*Service, *View) {
	t.Helper()
	svc := NewService(testConfig(), rowsSource(rows))
	v := svc.OpenView(context.Background())
	waitLoaded(t, v)
	return svc, v
}

func waitLoaded(t *testing.T, v *View) {
	t.Helper()
	select {
	case <-v.Loaded():
	case <-time.After(2 * time.Second):
		t.Fatal("view did not finish loading")
	}
}

func TestService_OpenViewLoadsAsynchronously(t *testing.T) {
	release := make(chan struct{})
	src := grid.SourceFunc(func(ctx context.Context) ([]grid.Row, error) {
		<-release
		return generatedRows(50), nil
	})
	svc := NewService(testConfig(), src)

	v := svc.OpenView(context.Background())

	snap := v.Snapshot()
	assert.True(t, snap.Loading())
	assert.Empty(t, snap.Page.Rows)
	assert.Equal(t, 1, snap.Page.TotalPages)

	_, err := v.ToggleRow(1)
	assert.ErrorIs(t, err, ErrViewNotReady)
	_, err = v.Export()
	assert.ErrorIs(t, err, ErrViewNotReady)

	close(release)
	waitLoaded(t, v)

	snap = v.Snapshot()
	assert.Equal(t, ViewReady, snap.Status)
	assert.Equal(t, 50, snap.StoreRows)
	assert.Len(t, snap.Page.Rows, grid.PageSize)
	assert.Equal(t, 5, snap.Page.TotalPages)
}

func TestService_LoadIgnoresRequestCancellation(t *testing.T) {
	svc := NewService(testConfig(), rowsSource(generatedRows(5)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := svc.OpenView(ctx)
	waitLoaded(t, v)
	assert.Equal(t, ViewReady, v.Snapshot().Status)
}

func TestService_LoadFailure(t *testing.T) {
	src := grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		return nil, errors.New("upstream exploded")
	})
	svc := NewService(testConfig(), src)

	v := svc.OpenView(context.Background())
	waitLoaded(t, v)

	snap := v.Snapshot()
	assert.Equal(t, ViewFailed, snap.Status)
	assert.Equal(t, "GRID001", snap.ErrorCode)
	assert.Equal(t, "The user list could not be loaded", snap.Error)
	assert.Empty(t, snap.Page.Rows)

	_, err := v.ToggleRow(1)
	assert.ErrorIs(t, err, grid.ErrLoadFailed)
}

func TestService_LoadTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.LoadTimeout = 20 * time.Millisecond
	src := grid.SourceFunc(func(ctx context.Context) ([]grid.Row, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := NewService(cfg, src)

	v := svc.OpenView(context.Background())
	waitLoaded(t, v)

	snap := v.Snapshot()
	assert.Equal(t, ViewFailed, snap.Status)
	assert.Equal(t, "GRID001", snap.ErrorCode)
}

func TestService_DuplicateIDsFailLoad(t *testing.T) {
	_, v := openReady(t, []grid.Row{{ID: 1}, {ID: 1}})
	assert.Equal(t, ViewFailed, v.Snapshot().Status)
}

func TestService_SourcePanicFailsLoad(t *testing.T) {
	src := grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		panic("boom")
	})
	svc := NewService(testConfig(), src)

	v := svc.OpenView(context.Background())
	waitLoaded(t, v)

	assert.Equal(t, ViewFailed, v.Snapshot().Status)
	assert.Equal(t, 0, svc.LoadLimiterStatus().Active, "slot released after panic")
}

func TestService_ViewLookupAndClose(t *testing.T) {
	svc, v := openReady(t, generatedRows(3))

	got, err := svc.View(v.ID())
	require.NoError(t, err)
	assert.Same(t, v, got)

	require.NoError(t, svc.CloseView(v.ID()))
	assert.Equal(t, 0, svc.ViewCount())

	_, err = svc.View(v.ID())
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.ErrorIs(t, svc.CloseView(v.ID()), ErrViewNotFound)
}

func TestService_ViewsAreIndependent(t *testing.T) {
	svc := NewService(testConfig(), rowsSource(generatedRows(20)))
	a := svc.OpenView(context.Background())
	b := svc.OpenView(context.Background())
	waitLoaded(t, a)
	waitLoaded(t, b)

	_, err := a.DeleteRow(1)
	require.NoError(t, err)
	_, err = a.ToggleRow(2)
	require.NoError(t, err)

	assert.Equal(t, 19, a.Snapshot().StoreRows)
	assert.Equal(t, 20, b.Snapshot().StoreRows)
	assert.Empty(t, b.Snapshot().Selected)
}

func TestService_WaitForLoads(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})
	src := grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		started.Add(1)
		<-release
		return nil, nil
	})
	svc := NewService(testConfig(), src)
	svc.OpenView(context.Background())
	svc.OpenView(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.WaitForLoads(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, svc.WaitForLoads(context.Background()))
	assert.Equal(t, int32(2), started.Load())
}

func TestService_TooManyLoads(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrentLoads = 1
	cfg.LoadMaxWait = 20 * time.Millisecond

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	src := grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		close(started)
		<-release
		return nil, nil
	})
	svc := NewService(cfg, src)

	svc.OpenView(context.Background())
	<-started
	second := svc.OpenView(context.Background())
	waitLoaded(t, second)

	snap := second.Snapshot()
	assert.Equal(t, ViewFailed, snap.Status)
	assert.Equal(t, "GRID006", snap.ErrorCode)
}

func TestService_JanitorEvictsIdleViews(t *testing.T) {
	svc := NewService(testConfig(), rowsSource(generatedRows(3)))

	clock := testNow
	svc.now = func() time.Time { return clock }

	idle := svc.OpenView(context.Background())
	busy := svc.OpenView(context.Background())
	waitLoaded(t, idle)
	waitLoaded(t, busy)

	clock = clock.Add(20 * time.Minute)
	busy.Snapshot()
	clock = clock.Add(15 * time.Minute)

	assert.Equal(t, 1, svc.sweepIdleViews(30*time.Minute))

	_, err := svc.View(idle.ID())
	assert.ErrorIs(t, err, ErrViewNotFound)
	_, err = svc.View(busy.ID())
	assert.NoError(t, err)
}

func TestService_StartJanitorStopsOnCancel(t *testing.T) {
	svc := NewService(testConfig(), rowsSource(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartJanitor(ctx, JanitorConfig{IdleTTL: time.Minute, Interval: 5 * time.Millisecond})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestService_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	calls := 0
	src := grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("down")
		}
		return generatedRows(5), nil
	})
	svc := NewService(testConfig(), src, WithMetrics(m))

	svc.OpenView(context.Background())
	require.NoError(t, svc.WaitForLoads(context.Background()))
	svc.OpenView(context.Background())
	require.NoError(t, svc.WaitForLoads(context.Background()))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "techbeat_grid_views_opened_total 2")
	assert.Contains(t, body, `techbeat_grid_loads_total{result="ready"} 1`)
	assert.Contains(t, body, `techbeat_grid_loads_total{result="failed"} 1`)
	assert.Contains(t, body, "techbeat_grid_views_open 2")
	assert.Contains(t, body, "techbeat_grid_loads_active 0")
}
