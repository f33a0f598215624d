package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Users quote the code; support looks it up here.
//
// # Grid Errors (GRID001-GRID099)
//
//	GRID001 - Load failed: The user list could not be loaded
//	          Action: Reload the page to try again
//	          Patterns: "grid load failed"
//
//	GRID002 - View not found: This grid session no longer exists
//	          Action: Open the grid again
//	          Patterns: "view not found"
//
//	GRID003 - Still loading: The user list is still loading
//	          Action: Wait for the table to finish loading
//	          Patterns: "view still loading"
//
//	GRID004 - Not editable: This column cannot be edited
//	          Action: Only Name and Email can be edited inline
//	          Patterns: "field not editable"
//
//	GRID005 - Unknown column: The requested column does not exist
//	          Action: Use one of id, name, email, role, status, lastActive
//	          Patterns: "unknown grid field"
//
//	GRID006 - System busy: Too many grids are loading
//	          Action: Please wait a moment and try again
//	          Patterns: "too many concurrent loads"
//
// # Validation Errors (VAL001-VAL099)
//
// VAL001-VAL005 mirror the gallery form rules. VAL006-VAL008 cover the
// personal info form.
//
//	VAL001 - "username must be at least"
//	VAL002 - "invalid email"
//	VAL003 - "at least 18"
//	VAL004 - "accept the terms"
//	VAL005 - "select a role"
//	VAL006 - "phone number"
//	VAL007 - "date of birth"
//	VAL008 - "must be at least" (any other too-short field)
//
// # Record Errors (REC001)
//
//	REC001 - "record not found"
//
// # Database Errors (DB004, DB006)
//
// Only reachable with the Postgres source.
//
//	DB004 - "connection refused"
//	DB006 - "timeout"
//
// # Request Errors (REQ001, REQ002, UPL004, UPL005)
//
//	REQ001 - "invalid request"
//	REQ002 - "request body too large"
//	UPL004 - "context canceled"
//	UPL005 - "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - "rate limit"
//
// # Default (ERR000)
//
// Returned when nothing matches. Check the server log for the request id.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins. Load failures are joined with their cause, so the cause-specific
// patterns (GRID006, DB004, DB006) sit above GRID001.

import "strings"

// UserMessage is a user-facing error with guidance and a support code.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Causes first.
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "Too many grids are loading",
			Action:  "Please wait a moment and try again",
			Code:    "GRID006",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	// Grid lifecycle.
	{
		pattern: "grid load failed",
		msg: UserMessage{
			Message: "The user list could not be loaded",
			Action:  "Reload the page to try again",
			Code:    "GRID001",
		},
	},
	{
		pattern: "view not found",
		msg: UserMessage{
			Message: "This grid session no longer exists",
			Action:  "Open the grid again",
			Code:    "GRID002",
		},
	},
	{
		pattern: "view still loading",
		msg: UserMessage{
			Message: "The user list is still loading",
			Action:  "Wait for the table to finish loading",
			Code:    "GRID003",
		},
	},
	{
		pattern: "field not editable",
		msg: UserMessage{
			Message: "This column cannot be edited",
			Action:  "Only Name and Email can be edited inline",
			Code:    "GRID004",
		},
	},
	{
		pattern: "unknown grid field",
		msg: UserMessage{
			Message: "The requested column does not exist",
			Action:  "Use one of id, name, email, role, status, lastActive",
			Code:    "GRID005",
		},
	},

	// Gallery form.
	{
		pattern: "username must be at least",
		msg: UserMessage{
			Message: "Username must be at least 2 characters",
			Action:  "Enter a longer username",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid email",
		msg: UserMessage{
			Message: "Invalid email address",
			Action:  "Enter an address like name@example.com",
			Code:    "VAL002",
		},
	},
	{
		pattern: "at least 18",
		msg: UserMessage{
			Message: "Must be at least 18 years old",
			Action:  "Enter an age of 18 or more",
			Code:    "VAL003",
		},
	},
	{
		pattern: "accept the terms",
		msg: UserMessage{
			Message: "You must accept the terms",
			Action:  "Tick the terms checkbox",
			Code:    "VAL004",
		},
	},
	{
		pattern: "select a role",
		msg: UserMessage{
			Message: "Please select a role",
			Action:  "Choose a role from the list",
			Code:    "VAL005",
		},
	},
	{
		pattern: "phone number",
		msg: UserMessage{
			Message: "Phone number must be at least 10 digits",
			Action:  "Include the area code",
			Code:    "VAL006",
		},
	},
	{
		pattern: "date of birth",
		msg: UserMessage{
			Message: "Date of birth must be a date in the past",
			Action:  "Pick your date of birth from the calendar",
			Code:    "VAL007",
		},
	},
	{
		pattern: "must be at least",
		msg: UserMessage{
			Message: "A field is too short",
			Action:  "Fill in the highlighted field",
			Code:    "VAL008",
		},
	},

	// Personal info records.
	{
		pattern: "record not found",
		msg: UserMessage{
			Message: "This record no longer exists",
			Action:  "Reload the records list",
			Code:    "REC001",
		},
	},

	// Request lifecycle.
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the submitted values and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The request is too large",
			Action:  "Send less data in one request",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Check your connection and try again",
			Code:    "UPL005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. A nil error
// maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// IsUserFacing reports whether err matched a specific pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
