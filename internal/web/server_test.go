package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/core"
	"github.com/JonMunkholm/techbeat/internal/grid"
	"github.com/JonMunkholm/techbeat/internal/metrics"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testRows(n int) []grid.Row {
	return grid.Generator{Seed: 3, Now: func() time.Time { return testNow }}.Generate(n)
}

func testAppConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Grid: config.GridConfig{
			LoadTimeout:        time.Second,
			MaxConcurrentLoads: 4,
			LoadMaxWait:        time.Second,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testEnv struct {
	t   *testing.T
	svc *core.Service
	srv *Server
}

func newTestEnv(t *testing.T, src grid.Source, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testAppConfig()
	}
	svc := core.NewService(cfg.Grid, src)
	srv := NewServer(svc, cfg, WithFormDelay(0))
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testEnv{t: t, svc: svc, srv: srv}
}

func newReadyEnv(t *testing.T, rows []grid.Row) (*testEnv, string) {
	t.Helper()
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		out := make([]grid.Row, len(rows))
		copy(out, rows)
		return out, nil
	}), nil)
	id := env.openView()
	env.waitLoaded(id)
	return env, id
}

func (e *testEnv) do(method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "192.0.2.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) json(method, target string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = strings.NewReader(string(b))
	}
	return e.do(method, target, r, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

func (e *testEnv) openView() string {
	e.t.Helper()
	rec := e.json(http.MethodPost, "/api/grids", nil)
	require.Equal(e.t, http.StatusCreated, rec.Code)
	snap := decodeSnapshot(e.t, rec)
	assert.Equal(e.t, "/api/grids/"+snap.ID, rec.Header().Get("Location"))
	return snap.ID
}

func (e *testEnv) waitLoaded(id string) {
	e.t.Helper()
	v, err := e.svc.View(id)
	require.NoError(e.t, err)
	select {
	case <-v.Loaded():
	case <-time.After(2 * time.Second):
		e.t.Fatal("view did not finish loading")
	}
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) core.Snapshot {
	t.Helper()
	var snap core.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap), rec.Body.String())
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestIndexRedirectsToGrid(t *testing.T) {
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), nil)

	rec := env.do(http.MethodGet, "/", nil, nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/grid", rec.Header().Get("Location"))
}

func TestGridPage_OpensViewAndRenders(t *testing.T) {
	rows := testRows(50)
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return rows, nil }), nil)

	rec := env.do(http.MethodGet, "/grid", nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/grid/"))
	env.waitLoaded(strings.TrimPrefix(loc, "/grid/"))

	rec = env.do(http.MethodGet, loc, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, `data-testid="user-row-1"`)
	assert.Contains(t, body, "Showing 1 to 10 of 50 entries")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	rec = env.do(http.MethodGet, loc, nil, map[string]string{"HX-Request": "true"})
	assert.NotContains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), `id="grid"`)
}

func TestGridPage_UnknownView(t *testing.T) {
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), nil)

	rec := env.do(http.MethodGet, "/grid/gone", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/grid", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/grid/gone", nil, map[string]string{"HX-Request": "true"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "#alerts", rec.Header().Get("HX-Retarget"))
	assert.Contains(t, rec.Body.String(), "GRID002")

	rec = env.json(http.MethodGet, "/api/grids/gone", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "GRID002", decodeError(t, rec).Code)
}

func TestAPI_RowOpsWhileLoading(t *testing.T) {
	release := make(chan struct{})
	env := newTestEnv(t, grid.SourceFunc(func(ctx context.Context) ([]grid.Row, error) {
		<-release
		return testRows(20), nil
	}), nil)
	id := env.openView()
	defer func() {
		close(release)
		env.waitLoaded(id)
	}()

	rec := env.json(http.MethodPost, "/api/grids/"+id+"/rows/1/select", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "GRID003", decodeError(t, rec).Code)

	rec = env.json(http.MethodGet, "/api/grids/"+id+"/export", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Query changes are accepted and applied once rows arrive.
	rec = env.json(http.MethodPut, "/api/grids/"+id+"/query", map[string]string{"search": "user1"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, core.ViewLoading, snap.Status)
	assert.Equal(t, "user1", snap.State.Query.Search)
}

func TestAPI_LoadFailure(t *testing.T) {
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		return nil, errors.New("upstream exploded")
	}), nil)
	id := env.openView()
	env.waitLoaded(id)

	rec := env.json(http.MethodGet, "/api/grids/"+id, nil)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, core.ViewFailed, snap.Status)
	assert.Equal(t, "GRID001", snap.ErrorCode)

	rec = env.json(http.MethodDelete, "/api/grids/"+id+"/rows/1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "GRID001", decodeError(t, rec).Code)
}

func TestAPI_QuerySortAndPaging(t *testing.T) {
	rows := testRows(50)
	env, id := newReadyEnv(t, rows)
	base := "/api/grids/" + id

	rec := env.json(http.MethodPut, base+"/query", map[string]string{"status": "Active"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.json(http.MethodPost, base+"/sort/name", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.json(http.MethodPost, base+"/page/99", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)

	want, st := grid.Derive(rows, grid.ViewState{
		Query: grid.Query{Status: "Active"}.Normalize(),
		Sort:  grid.Sort{Key: grid.FieldName, Dir: grid.Asc},
		Page:  99,
	})
	assert.Equal(t, st, snap.State)
	assert.Equal(t, want.IDs(), snap.Page.IDs())
	assert.False(t, snap.Page.HasNext)

	// Omitted query fields keep their value.
	rec = env.json(http.MethodPut, base+"/query", map[string]string{"search": "example"})
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, "Active", snap.State.Query.Status)

	rec = env.json(http.MethodPost, base+"/next", nil)
	assert.Equal(t, snap.State.Page, decodeSnapshot(t, rec).State.Page, "next is a no-op on the last page")
}

func TestAPI_BadInput(t *testing.T) {
	env, id := newReadyEnv(t, testRows(5))
	base := "/api/grids/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   string
	}{
		{"unknown sort field", http.MethodPost, base + "/sort/password", nil, "GRID005"},
		{"non-numeric page", http.MethodPost, base + "/page/x", nil, "REQ001"},
		{"non-numeric row", http.MethodPost, base + "/rows/abc/select", nil, "REQ001"},
		{"read-only field", http.MethodPost, base + "/edit", map[string]any{"id": 1, "field": "role"}, "GRID004"},
		{"edit without id", http.MethodPost, base + "/edit", map[string]any{"field": "name"}, "REQ001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.json(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestAPI_EditFlow(t *testing.T) {
	env, id := newReadyEnv(t, testRows(10))
	base := "/api/grids/" + id

	rec := env.json(http.MethodPost, base+"/edit", map[string]any{"id": 2, "field": "name"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	require.NotNil(t, snap.Editing)
	assert.Equal(t, grid.EditTarget{ID: 2, Field: grid.FieldName}, *snap.Editing)

	rec = env.json(http.MethodPut, base+"/edit", map[string]string{"value": "Ad"})
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, "Ad", snap.Page.Rows[1].Name, "keystrokes are stored as typed")

	rec = env.json(http.MethodPost, base+"/edit/commit", map[string]string{"value": "Ada"})
	snap = decodeSnapshot(t, rec)
	assert.Nil(t, snap.Editing)
	assert.Equal(t, "Ada", snap.Page.Rows[1].Name)

	rec = env.json(http.MethodPut, base+"/edit", map[string]string{"value": "late"})
	assert.Equal(t, http.StatusOK, rec.Code, "input outside edit mode is ignored")
	assert.Equal(t, "Ada", decodeSnapshot(t, rec).Page.Rows[1].Name)
}

func TestAPI_SelectExportDelete(t *testing.T) {
	env, id := newReadyEnv(t, testRows(30))
	base := "/api/grids/" + id

	env.json(http.MethodPost, base+"/rows/3/select", nil)
	env.json(http.MethodPost, base+"/rows/12/select", nil)

	rec := env.do(http.MethodGet, base+"/export", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="users.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Name,Email,Role,Status,Last Active", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "3,User 3,user3@example.com,"))
	assert.True(t, strings.HasPrefix(lines[2], "12,User 12,user12@example.com,"))

	rec = env.json(http.MethodDelete, base+"/rows/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, []int{12}, snap.Selected)
	assert.Equal(t, 29, snap.StoreRows)
	assert.NotContains(t, snap.Page.IDs(), 3)

	rec = env.json(http.MethodPost, base+"/select-page", nil)
	snap = decodeSnapshot(t, rec)
	assert.True(t, snap.AllOnPageSelected)
	assert.Len(t, snap.Selected, 11)
}

func TestAPI_HTMXAndBrowserResponses(t *testing.T) {
	env, id := newReadyEnv(t, testRows(20))
	base := "/api/grids/" + id

	rec := env.do(http.MethodPost, base+"/next", nil, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-testid="user-row-11"`)
	assert.Contains(t, body, `hx-swap-oob="true"`)

	form := url.Values{"search": {"user2"}, "role": {"All"}, "status": {"All"}}
	rec = env.do(http.MethodPut, base+"/query", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "text/html",
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/grid/"+id, rec.Header().Get("Location"))

	v, err := env.svc.View(id)
	require.NoError(t, err)
	assert.Equal(t, "user2", v.Snapshot().State.Query.Search)
}

func TestAPI_DeleteView(t *testing.T) {
	env, id := newReadyEnv(t, testRows(5))

	rec := env.json(http.MethodDelete, "/api/grids/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.json(http.MethodGet, "/api/grids/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_GalleryForm(t *testing.T) {
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), nil)

	rec := env.json(http.MethodPost, "/api/forms/gallery", map[string]any{
		"username": "a", "email": "nope", "age": 17, "terms": false, "role": "",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp GalleryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Errors, 5)
	codes := make(map[string]string, len(resp.Errors))
	for _, e := range resp.Errors {
		codes[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{
		"username": "VAL001",
		"email":    "VAL002",
		"age":      "VAL003",
		"terms":    "VAL004",
		"role":     "VAL005",
	}, codes)

	rec = env.json(http.MethodPost, "/api/forms/gallery", map[string]any{
		"username": "ada", "email": "ada@example.com", "age": 36, "terms": true, "role": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = GalleryResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, 36, resp.Values.Age)

	form := url.Values{"username": {"ada"}, "email": {"ada@example.com"}, "age": {"36"}, "terms": {"on"}, "role": {"user"}}
	rec = env.do(http.MethodPost, "/api/forms/gallery", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"HX-Request":   "true",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="form-result"`)
	assert.Contains(t, rec.Body.String(), "&#34;username&#34;: &#34;ada&#34;")

	rec = env.do(http.MethodGet, "/gallery", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-testid="button-submit"`)
}

func recordFields(first string) map[string]any {
	return map[string]any{
		"firstName":   first,
		"lastName":    "Lovelace",
		"email":       "ada@example.com",
		"phone":       "5550100123",
		"dateOfBirth": "1990-04-29",
		"address":     "12 Main Street",
		"city":        "Springfield",
		"state":       "IL",
		"postalCode":  "62701",
		"country":     "USA",
	}
}

func TestAPI_Records(t *testing.T) {
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), nil)

	rec := env.json(http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":[]}`, rec.Body.String())

	bad := recordFields("A")
	bad["phone"] = "123"
	rec = env.json(http.MethodPost, "/api/records", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp RecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -1, resp.Index)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "VAL008", resp.Errors[0].Code)
	assert.Equal(t, "VAL006", resp.Errors[1].Code)

	for i, name := range []string{"Ada", "Grace", "Edsger"} {
		rec = env.json(http.MethodPost, "/api/records", recordFields(name))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp = RecordResponse{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, i, resp.Index)
	}

	edit := recordFields("Barbara")
	edit["index"] = 1
	rec = env.json(http.MethodPost, "/api/records", edit)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.json(http.MethodGet, "/api/records/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Barbara"`)

	rec = env.json(http.MethodDelete, "/api/records/0", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.json(http.MethodDelete, "/api/records/9", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "stale delete is a no-op")

	rec = env.json(http.MethodGet, "/api/records", nil)
	var list RecordsList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Records, 2)
	assert.Equal(t, "Barbara", list.Records[0].FirstName)
	assert.Equal(t, "Edsger", list.Records[1].FirstName)

	stale := recordFields("Linus")
	stale["index"] = 5
	rec = env.json(http.MethodPost, "/api/records", stale)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "REC001", decodeError(t, rec).Code)

	rec = env.json(http.MethodGet, "/api/records/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RecordsHTMX(t *testing.T) {
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), nil)
	htmx := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"HX-Request":   "true",
	}
	form := url.Values{}
	for k, v := range recordFields("Ada") {
		form.Set(k, fmt.Sprint(v))
	}

	rec := env.do(http.MethodPost, "/api/records", strings.NewReader(form.Encode()), htmx)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-testid="record-row-0"`)
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "Apr 29, 1990")
	assert.Contains(t, body, `hx-swap-oob="true"`)

	rec = env.do(http.MethodGet, "/api/records/0", nil, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<input type="hidden" name="index" value="0">`)
	assert.Contains(t, rec.Body.String(), `value="1990-04-29"`)
	assert.Contains(t, rec.Body.String(), "Update Record")

	rec = env.do(http.MethodDelete, "/api/records/0", nil, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "record-row-0")

	rec = env.do(http.MethodGet, "/records", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="personal-info-form"`)
}

func TestHealth(t *testing.T) {
	env, _ := newReadyEnv(t, testRows(5))

	rec := env.json(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var h HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 1, h.Views)
	assert.Equal(t, 4, h.Loads.MaxConcurrent)
}

func TestRateLimit(t *testing.T) {
	cfg := testAppConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), cfg)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, env.json(http.MethodGet, "/api/health", nil).Code)
	}
	rec := env.json(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"), "one token refills every 30s")
}

func TestRateLimiter_TokensRefill(t *testing.T) {
	now := testNow
	rl := newRateLimiter(2)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"), "burst spent")
	assert.True(t, rl.allow("b"), "limits are per client")

	now = now.Add(30 * time.Second)
	assert.True(t, rl.allow("a"), "one token back after half a minute")
	assert.False(t, rl.allow("a"))
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	now := testNow
	rl := newRateLimiter(5)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	rl.allow("idle")
	now = now.Add(staleAfter)
	rl.allow("busy")
	now = now.Add(time.Second)

	assert.Equal(t, 1, rl.sweep())
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Contains(t, rl.visitors, "busy")
	assert.NotContains(t, rl.visitors, "idle")
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testAppConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	env := newTestEnv(t, grid.SourceFunc(func(context.Context) ([]grid.Row, error) { return nil, nil }), cfg)

	assert.Equal(t, http.StatusUnauthorized, env.json(http.MethodPost, "/api/grids", nil).Code)
	assert.Equal(t, http.StatusOK, env.json(http.MethodGet, "/api/health", nil).Code, "health stays open")

	rec := env.do(http.MethodPost, "/api/grids", nil, map[string]string{"X-API-Key": "secret", "Accept": "application/json"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	env.waitLoaded(decodeSnapshot(t, rec).ID)
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := testAppConfig()
	cfg.Metrics = config.MetricsConfig{Enabled: true, Path: "/metrics"}
	m := metrics.New()
	svc := core.NewService(cfg.Grid, grid.SourceFunc(func(context.Context) ([]grid.Row, error) {
		return testRows(5), nil
	}), core.WithMetrics(m))
	srv := NewServer(svc, cfg, WithFormDelay(0), WithMetrics(m))
	env := &testEnv{t: t, svc: svc, srv: srv}
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	id := env.openView()
	env.waitLoaded(id)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/grids/"+id+"/export", nil, nil).Code)
	require.Equal(t, http.StatusCreated, env.json(http.MethodPost, "/api/records", recordFields("Ada")).Code)

	rec := env.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "techbeat_grid_views_opened_total 1")
	assert.Contains(t, body, "techbeat_grid_views_open 1")
	assert.Contains(t, body, "techbeat_grid_exported_rows_total 5")
	assert.Contains(t, body, "techbeat_personal_records 1")
	assert.Contains(t, body, `techbeat_form_submissions_total{form="records",result="valid"} 1`)
}
