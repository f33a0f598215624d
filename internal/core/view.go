package core

import (
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/techbeat/internal/grid"
)

var (
	// ErrViewNotFound is returned for an unknown or evicted view id.
	ErrViewNotFound = errors.New("view not found")

	// ErrViewNotReady is returned for row operations while the initial load is
	// still pending.
	ErrViewNotReady = errors.New("view still loading")
)

// ViewStatus is the load lifecycle of a view.
type ViewStatus string

const (
	ViewLoading ViewStatus = "loading"
	ViewReady   ViewStatus = "ready"
	ViewFailed  ViewStatus = "failed"
)

// Snapshot is a read-only rendering of a view at one instant.
type Snapshot struct {
	ID                string           `json:"id"`
	Status            ViewStatus       `json:"status"`
	Error             string           `json:"error,omitempty"`
	ErrorCode         string           `json:"errorCode,omitempty"`
	State             grid.ViewState   `json:"state"`
	Page              grid.PageResult  `json:"page"`
	Selected          []int            `json:"selected"`
	Editing           *grid.EditTarget `json:"editing,omitempty"`
	AllOnPageSelected bool             `json:"allOnPageSelected"`
	StoreRows         int              `json:"storeRows"`
}

// Loading reports whether the skeleton placeholder should be rendered.
func (s Snapshot) Loading() bool {
	return s.Status == ViewLoading
}

// View is one grid instance. It owns the record store, the view state, the
// selection and the edit overlay; every read and write goes through mu.
type View struct {
	id string

	mu       sync.Mutex
	status   ViewStatus
	loadErr  error
	store    *grid.Store
	state    grid.ViewState
	sel      *grid.Selection
	editor   grid.Editor
	lastUsed time.Time
	now      func() time.Time

	memo struct {
		ok      bool
		version uint64
		state   grid.ViewState
		page    grid.PageResult
		clamped grid.ViewState
	}

	loaded chan struct{}
}

func newView(id string, now func() time.Time) *View {
	return &View{
		id:       id,
		status:   ViewLoading,
		state:    grid.DefaultViewState(),
		sel:      grid.NewSelection(),
		lastUsed: now(),
		now:      now,
		loaded:   make(chan struct{}),
	}
}

// ID returns the view id.
func (v *View) ID() string {
	return v.id
}

// Loaded is closed once the initial load has resolved either way.
func (v *View) Loaded() <-chan struct{} {
	return v.loaded
}

// finishLoad populates the store exactly once.
func (v *View) finishLoad(rows []grid.Row, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != ViewLoading {
		return
	}
	defer close(v.loaded)

	if err == nil {
		v.store, err = grid.NewStore(rows)
	}
	if err != nil {
		if !errors.Is(err, grid.ErrLoadFailed) {
			err = errors.Join(grid.ErrLoadFailed, err)
		}
		v.status = ViewFailed
		v.loadErr = err
		return
	}
	v.status = ViewReady
}

func (v *View) touch() {
	v.lastUsed = v.now()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// ready returns the error a row operation should fail with, if any.
func (v *View) ready() error {
	switch v.status {
	case ViewLoading:
		return ErrViewNotReady
	case ViewFailed:
		return v.loadErr
	default:
		return nil
	}
}

// derive recomputes the visible page and stores the clamped state. Results
// are reused while neither the store nor the state has changed.
func (v *View) derive() grid.PageResult {
	if v.status != ViewReady {
		v.state.Page = 1
		return grid.PageResult{Page: 1, TotalPages: 1, Rows: []grid.Row{}}
	}

	if v.memo.ok && v.memo.version == v.store.Version() && v.memo.state == v.state {
		v.state = v.memo.clamped
		return v.memo.page
	}

	page, clamped := grid.Derive(v.store.Rows(), v.state)
	v.memo.ok = true
	v.memo.version = v.store.Version()
	v.memo.state = v.state
	v.memo.page = page
	v.memo.clamped = clamped
	v.state = clamped
	return page
}

func (v *View) snapshotLocked() Snapshot {
	page := v.derive()
	snap := Snapshot{
		ID:       v.id,
		Status:   v.status,
		State:    v.state,
		Page:     page,
		Selected: v.sel.IDs(),
		Editing:  v.editor.Target(),
	}
	if v.store != nil {
		snap.StoreRows = v.store.Len()
	}
	if v.loadErr != nil {
		msg := MapError(v.loadErr)
		snap.Error = msg.Message
		snap.ErrorCode = msg.Code
	}
	snap.AllOnPageSelected = v.sel.AllSelected(page.IDs())
	return snap
}

// Snapshot returns the current visible state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()
	return v.snapshotLocked()
}

// mutate runs fn under the lock and returns the resulting snapshot. When
// needReady is set fn only runs once rows are loaded.
func (v *View) mutate(needReady bool, fn func() error) (Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()

	if needReady {
		if err := v.ready(); err != nil {
			return v.snapshotLocked(), err
		}
	}
	if err := fn(); err != nil {
		return v.snapshotLocked(), err
	}
	return v.snapshotLocked(), nil
}

// SetQuery applies a search/filter change. The current page is kept and
// clamped into the new result set. Filters are recorded even before the
// load completes; they simply have nothing to act on yet.
func (v *View) SetQuery(q grid.Query) (Snapshot, error) {
	return v.mutate(false, func() error {
		v.state.Query = q.Normalize()
		return nil
	})
}

// ToggleSort applies a click on the header for field.
func (v *View) ToggleSort(field grid.Field) (Snapshot, error) {
	return v.mutate(false, func() error {
		v.state.Sort = v.state.Sort.Toggle(field)
		return nil
	})
}

// GoToPage moves to page, clamped into range.
func (v *View) GoToPage(page int) (Snapshot, error) {
	return v.mutate(false, func() error {
		v.state.Page = page
		return nil
	})
}

// NextPage advances one page; it is a no-op on the last page.
func (v *View) NextPage() (Snapshot, error) {
	return v.mutate(false, func() error {
		if v.derive().HasNext {
			v.state.Page++
		}
		return nil
	})
}

// PrevPage goes back one page; it is a no-op on the first page.
func (v *View) PrevPage() (Snapshot, error) {
	return v.mutate(false, func() error {
		if v.derive().HasPrev {
			v.state.Page--
		}
		return nil
	})
}

// ToggleRow flips the selection of one row. Unknown ids are ignored so the
// selection stays a subset of the store.
func (v *View) ToggleRow(id int) (Snapshot, error) {
	return v.mutate(true, func() error {
		if v.store.Has(id) {
			v.sel.Toggle(id)
		}
		return nil
	})
}

// ToggleAllOnPage applies the select-all control to the visible page.
func (v *View) ToggleAllOnPage() (Snapshot, error) {
	return v.mutate(true, func() error {
		v.sel.TogglePage(v.derive().IDs())
		return nil
	})
}

// BeginEdit puts one cell into edit mode.
func (v *View) BeginEdit(id int, field grid.Field) (Snapshot, error) {
	return v.mutate(true, func() error {
		return v.editor.Begin(v.store, id, field)
	})
}

// EditInput writes the in-progress value of the active cell straight to the
// store.
func (v *View) EditInput(value string) (Snapshot, error) {
	return v.mutate(true, func() error {
		return v.editor.Input(v.store, value)
	})
}

// CommitEdit stores value in the active cell and leaves edit mode.
func (v *View) CommitEdit(value string) (Snapshot, error) {
	return v.mutate(true, func() error {
		return v.editor.Commit(v.store, value)
	})
}

// BlurEdit leaves edit mode.
func (v *View) BlurEdit() (Snapshot, error) {
	return v.mutate(true, func() error {
		v.editor.Blur()
		return nil
	})
}

// DeleteRow removes a row and purges it from the selection and the edit
// overlay. Deleting an id that is already gone does nothing.
func (v *View) DeleteRow(id int) (Snapshot, error) {
	return v.mutate(true, func() error {
		if v.store.Delete(id) {
			v.sel.Remove(id)
			v.editor.Forget(id)
		}
		return nil
	})
}

// Export renders the selected rows, or the whole store, as CSV.
func (v *View) Export() (grid.ExportFile, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch()

	if err := v.ready(); err != nil {
		return grid.ExportFile{}, err
	}
	return grid.Export(v.store, v.sel), nil
}
