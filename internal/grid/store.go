package grid

import "fmt"

// Store is the authoritative row collection for one view. It is not safe for
// concurrent use; the owning view serializes access.
type Store struct {
	rows    []Row
	index   map[int]int // id -> position in rows
	version uint64
}

// NewStore creates a store holding rows in the given order. Duplicate ids are
// rejected since id is the identity key for selection, edit and sort.
func NewStore(rows []Row) (*Store, error) {
	s := &Store{
		rows:  make([]Row, len(rows)),
		index: make(map[int]int, len(rows)),
	}
	copy(s.rows, rows)
	for i, r := range s.rows {
		if _, dup := s.index[r.ID]; dup {
			return nil, fmt.Errorf("duplicate row id %d", r.ID)
		}
		s.index[r.ID] = i
	}
	return s, nil
}

// Rows returns a copy of the rows in store order.
func (s *Store) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// Version increases on every mutation. Derived results keyed on it can be
// reused until it changes.
func (s *Store) Version() uint64 {
	return s.version
}

// Get returns the row with the given id.
func (s *Store) Get(id int) (Row, bool) {
	i, ok := s.index[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[i], true
}

// Has reports whether a row with the given id exists.
func (s *Store) Has(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Edit replaces one field of the row with the given id. A missing id is a
// silent no-op. Only name and email can be edited.
func (s *Store) Edit(id int, field Field, value string) error {
	if !field.Editable() {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
	}
	i, ok := s.index[id]
	if !ok {
		return nil
	}

	switch field {
	case FieldName:
		s.rows[i].Name = value
	case FieldEmail:
		s.rows[i].Email = value
	}
	s.version++
	return nil
}

// Delete removes the row with the given id and reports whether it existed.
func (s *Store) Delete(id int) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}

	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.rows); j++ {
		s.index[s.rows[j].ID] = j
	}
	s.version++
	return true
}
