package grid

import "sort"

// Selection is the set of checked row ids. It spans pages but is only
// bulk-toggled one visible page at a time.
type Selection struct {
	ids map[int]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int]struct{})}
}

// Toggle flips the checked state of id.
func (s *Selection) Toggle(id int) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Has reports whether id is selected.
func (s *Selection) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Remove unselects id.
func (s *Selection) Remove(id int) {
	delete(s.ids, id)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// AllSelected reports whether page is non-empty and every id on it is
// selected. It drives the checked state of the select-all control.
func (s *Selection) AllSelected(page []int) bool {
	if len(page) == 0 {
		return false
	}
	for _, id := range page {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// TogglePage implements the select-all control for the visible page: if all
// of page is already selected those ids are cleared, otherwise all are added.
// Ids on other pages are untouched.
func (s *Selection) TogglePage(page []int) {
	if s.AllSelected(page) {
		for _, id := range page {
			delete(s.ids, id)
		}
		return
	}
	for _, id := range page {
		s.ids[id] = struct{}{}
	}
}

// EditTarget is the single cell currently in edit mode.
type EditTarget struct {
	ID    int   `json:"id"`
	Field Field `json:"field"`
}

// Editor is the inline-edit overlay. It is either idle or editing exactly one
// cell.
//
// The edit input is bound directly to the store: every keystroke passed to
// Input is written through immediately, so there is no cancel. Switching to
// another cell therefore never loses text.
type Editor struct {
	target *EditTarget
}

// Target returns the cell in edit mode, or nil when idle.
func (e *Editor) Target() *EditTarget {
	if e.target == nil {
		return nil
	}
	t := *e.target
	return &t
}

// Begin puts (id, field) into edit mode, replacing any other cell. The row
// must exist and the field must be editable.
func (e *Editor) Begin(store *Store, id int, field Field) error {
	if !field.Editable() {
		return ErrFieldNotEditable
	}
	if !store.Has(id) {
		return nil
	}
	e.target = &EditTarget{ID: id, Field: field}
	return nil
}

// Input writes a keystroke's value through to the store while staying in
// edit mode. It is a no-op when idle.
func (e *Editor) Input(store *Store, value string) error {
	if e.target == nil {
		return nil
	}
	return store.Edit(e.target.ID, e.target.Field, value)
}

// Commit stores value and returns to idle.
func (e *Editor) Commit(store *Store, value string) error {
	if e.target == nil {
		return nil
	}
	t := *e.target
	e.target = nil
	return store.Edit(t.ID, t.Field, value)
}

// Blur returns to idle without another write.
func (e *Editor) Blur() {
	e.target = nil
}

// Forget leaves edit mode if it targets id.
func (e *Editor) Forget(id int) {
	if e.target != nil && e.target.ID == id {
		e.target = nil
	}
}
