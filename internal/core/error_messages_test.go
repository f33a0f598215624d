package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/techbeat/internal/grid"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"load failed", grid.ErrLoadFailed, "GRID001"},
		{"view not found", fmt.Errorf("lookup: %w", ErrViewNotFound), "GRID002"},
		{"still loading", ErrViewNotReady, "GRID003"},
		{"read-only column", fmt.Errorf("%w: role", grid.ErrFieldNotEditable), "GRID004"},
		{"unknown column", grid.ErrUnknownField, "GRID005"},
		{"busy wins over load failed", errors.Join(grid.ErrLoadFailed, ErrTooManyLoads), "GRID006"},
		{"db refused wins over load failed", errors.Join(grid.ErrLoadFailed, errors.New("dial tcp: connection refused")), "DB004"},
		{"load timeout", errors.Join(grid.ErrLoadFailed, context.DeadlineExceeded), "GRID001"},
		{"request timeout", context.DeadlineExceeded, "UPL005"},
		{"request cancelled", context.Canceled, "UPL004"},
		{"username", errors.New("Username must be at least 2 characters"), "VAL001"},
		{"email", errors.New("Invalid email address"), "VAL002"},
		{"age", errors.New("Must be at least 18 years old"), "VAL003"},
		{"terms", errors.New("You must accept the terms"), "VAL004"},
		{"role", errors.New("Please select a role"), "VAL005"},
		{"phone", errors.New("phone: Phone number must be at least 10 digits"), "VAL006"},
		{"birth date", errors.New("dateOfBirth: Date of birth must be a date in the past"), "VAL007"},
		{"short field", errors.New("city: City must be at least 2 characters"), "VAL008"},
		{"username wins over short field", errors.New("username: Username must be at least 2 characters"), "VAL001"},
		{"stale record", errors.New("record not found"), "REC001"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"bad input", errors.New("invalid request: page \"x\""), "REQ001"},
		{"oversized body", errors.New("http: request body too large"), "REQ002"},
		{"unknown error returns default", errors.New("something odd"), "ERR000"},
		{"case insensitive", errors.New("VIEW NOT FOUND"), "GRID002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error is not user facing")
	}
	if !IsUserFacing(ErrViewNotReady) {
		t.Error("known error should be user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error should not be user facing")
	}
}

