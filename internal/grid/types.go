// Package grid implements the users data grid: an in-memory record store and
// the filter, sort and pagination stages derived from it, plus the selection
// set, the inline-edit overlay and CSV export.
//
// Everything in this package is synchronous and free of I/O. Loading rows is
// delegated to a Source so callers can plug in a mock generator or a database.
package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// FilterAll is the role/status filter value that matches every row.
const FilterAll = "All"

var (
	// ErrLoadFailed is the generic load-failure state surfaced to the view.
	ErrLoadFailed = errors.New("grid load failed")

	// ErrFieldNotEditable is returned when an edit targets a read-only field.
	ErrFieldNotEditable = errors.New("field not editable")

	// ErrUnknownField is returned when a field name cannot be parsed.
	ErrUnknownField = errors.New("unknown grid field")
)

// Role is the fixed role enumeration.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleUser    Role = "User"
	RoleManager Role = "Manager"
)

// Roles lists the valid roles in display order.
var Roles = []Role{RoleAdmin, RoleUser, RoleManager}

// Status is the fixed status enumeration.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusPending  Status = "Pending"
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusPending}

// Row is one mock user record.
type Row struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Status     Status    `json:"status"`
	LastActive time.Time `json:"lastActive"`
}

// Field identifies a row column. Values match the JSON keys of Row.
type Field string

const (
	FieldID         Field = "id"
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldRole       Field = "role"
	FieldStatus     Field = "status"
	FieldLastActive Field = "lastActive"
)

// Fields lists every column in display order.
var Fields = []Field{FieldID, FieldName, FieldEmail, FieldRole, FieldStatus, FieldLastActive}

// ParseField resolves a column name. Matching is case-insensitive so both
// "lastActive" and "lastactive" resolve.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Label returns the column header used in the table and the CSV export.
func (f Field) Label() string {
	switch f {
	case FieldID:
		return "ID"
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldRole:
		return "Role"
	case FieldStatus:
		return "Status"
	case FieldLastActive:
		return "Last Active"
	default:
		return string(f)
	}
}

// Editable reports whether inline edit may change this field.
func (f Field) Editable() bool {
	return f == FieldName || f == FieldEmail
}

// SortDir is the sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// Sort is the active sort key and direction.
type Sort struct {
	Key Field   `json:"key"`
	Dir SortDir `json:"direction"`
}

// DefaultSort orders rows by id ascending.
var DefaultSort = Sort{Key: FieldID, Dir: Asc}

// Toggle returns the sort that results from clicking the header for key.
// Clicking the active header flips direction; any other header starts
// ascending.
func (s Sort) Toggle(key Field) Sort {
	if s.Key == key && s.Dir == Asc {
		return Sort{Key: key, Dir: Desc}
	}
	return Sort{Key: key, Dir: Asc}
}

// Query holds the free-text search and the two discrete filters.
type Query struct {
	Search string `json:"search"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Normalize maps empty filter values to FilterAll.
func (q Query) Normalize() Query {
	if q.Role == "" {
		q.Role = FilterAll
	}
	if q.Status == "" {
		q.Status = FilterAll
	}
	return q
}

// ViewState is the serializable state of one grid view. It is passed by value
// through the pipeline; the store it is applied to is owned elsewhere.
type ViewState struct {
	Query Query `json:"query"`
	Sort  Sort  `json:"sort"`
	Page  int   `json:"page"`
}

// DefaultViewState is the state of a freshly opened view.
func DefaultViewState() ViewState {
	return ViewState{
		Query: Query{Role: FilterAll, Status: FilterAll},
		Sort:  DefaultSort,
		Page:  1,
	}
}

// PageResult is one visible window over the filtered and sorted rows.
type PageResult struct {
	Rows       []Row `json:"rows"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	Total      int   `json:"total"`
	From       int   `json:"from"`
	To         int   `json:"to"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

// IDs returns the ids of the visible rows in display order.
func (p PageResult) IDs() []int {
	ids := make([]int, len(p.Rows))
	for i, r := range p.Rows {
		ids[i] = r.ID
	}
	return ids
}
