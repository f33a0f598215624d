package forms

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrRecordNotFound is returned for an index outside the record list.
var ErrRecordNotFound = errors.New("record not found")

// DateLayout is the wire format of DateOfBirth in forms.
const DateLayout = "2006-01-02"

// PersonalInfo is one submitted personal information record.
type PersonalInfo struct {
	FirstName   string    `json:"firstName" validate:"min=2"`
	LastName    string    `json:"lastName" validate:"min=2"`
	Email       string    `json:"email" validate:"email"`
	Phone       string    `json:"phone" validate:"min=10"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"past"`
	Address     string    `json:"address" validate:"min=5"`
	City        string    `json:"city" validate:"min=2"`
	State       string    `json:"state" validate:"min=2"`
	PostalCode  string    `json:"postalCode" validate:"min=5"`
	Country     string    `json:"country" validate:"min=2"`
}

var personalInfoMessages = map[string]string{
	"firstName":   "First name must be at least 2 characters",
	"lastName":    "Last name must be at least 2 characters",
	"email":       "Invalid email address",
	"phone":       "Phone number must be at least 10 digits",
	"dateOfBirth": "Date of birth must be a date in the past",
	"address":     "Address must be at least 5 characters",
	"city":        "City must be at least 2 characters",
	"state":       "State must be at least 2 characters",
	"postalCode":  "Postal code must be at least 5 characters",
	"country":     "Country must be at least 2 characters",
}

// ValidatePersonalInfo checks a record before it is stored.
func ValidatePersonalInfo(p PersonalInfo) ValidationResult {
	return check(p, personalInfoMessages)
}

// Records is the ordered list of submitted records. Records are addressed
// by position, so deleting one shifts the indexes of those after it.
type Records struct {
	mu    sync.RWMutex
	items []PersonalInfo
}

// NewRecords returns an empty list.
func NewRecords() *Records {
	return &Records{}
}

// Add appends p and returns its index.
func (r *Records) Add(p PersonalInfo) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, p)
	return len(r.items) - 1
}

// Replace overwrites the record at i.
func (r *Records) Replace(i int, p PersonalInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.items) {
		return ErrRecordNotFound
	}
	r.items[i] = p
	return nil
}

// Delete removes the record at i. An index that is already gone does
// nothing.
func (r *Records) Delete(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.items) {
		return false
	}
	r.items = slices.Delete(r.items, i, i+1)
	return true
}

// Get returns the record at i.
func (r *Records) Get(i int) (PersonalInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.items) {
		return PersonalInfo{}, ErrRecordNotFound
	}
	return r.items[i], nil
}

// List returns a copy of every record in submission order.
func (r *Records) List() []PersonalInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items)
}

// Len returns the number of records.
func (r *Records) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
