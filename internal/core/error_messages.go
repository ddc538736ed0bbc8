// Package core provides the type inference and validation engine.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors related to reading the submitted file:
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: File could not be parsed as a table
//	          Action: Check the delimiter and that rows have at most as many fields as the header
//	          Matches: *ParseError, "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to validate
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file has no header row
//	          Action: Please provide a CSV file with a header and data rows
//	          Matches: ErrEmptyFile
//
//	FILE006 - File not accessible: The file could not be opened or decompressed
//	          Action: Check the path, permissions and compression format
//	          Matches: *FileAccessError
//
// # Validation Errors (VAL001-VAL099)
//
// Errors related to the validation request itself (cell violations are data,
// not errors):
//
//	VAL001 - Unknown type: An expected type name is not recognized
//	         Action: Use integer, float, boolean, date_string, numeric_string, datetime, categorical or text
//	         Matches: ErrUnknownType
//
//	VAL002 - Unsupported check: A check could not run on this column's data
//	         Action: Verify the expected type matches the column's contents
//	         Matches: ErrUnsupportedOperation
//
//	VAL003 - Invalid expected types: The expected types payload is malformed
//	         Action: Send a JSON object mapping column names to type names
//	         Patterns: "invalid expected types"
//
// # Request Errors (UPL002-UPL099)
//
//	UPL002 - System busy: Too many validations in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent validations"
//
//	UPL003 - Report not found: No stored report has this ID
//	         Action: Check the report ID or validate the file again
//	         Patterns: "report not found"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Matches: context.Canceled
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Matches: context.DeadlineExceeded
//
//	UPL006 - History disabled: Reports are not being stored
//	         Action: Configure DATABASE_URL to keep validation reports
//	         Patterns: "report store not configured"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Typed errors are checked first with errors.Is / errors.As, in the order
// listed in typedErrors. Remaining errors are matched case-insensitively
// against errorPatterns using strings.Contains; the first match wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File could not be parsed as a table",
		Action:  "Check the delimiter and that rows have at most as many fields as the header",
		Code:    "FILE002",
	}
	msgEmptyFile = UserMessage{
		Message: "The file is empty",
		Action:  "Please provide a CSV file with a header and data rows",
		Code:    "FILE005",
	}
	msgFileAccess = UserMessage{
		Message: "The file could not be opened",
		Action:  "Check the path, permissions and compression format",
		Code:    "FILE006",
	}
	msgUnknownType = UserMessage{
		Message: "An expected type name is not recognized",
		Action:  "Use integer, float, boolean, date_string, numeric_string, datetime, categorical or text",
		Code:    "VAL001",
	}
	msgUnsupported = UserMessage{
		Message: "A check could not run on this column's data",
		Action:  "Verify the expected type matches the column's contents",
		Code:    "VAL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
)

// typedErrors maps error identities to user messages. Order matters: an
// ErrEmptyFile arrives wrapped in a *ParseError and must win over it.
var typedErrors = []struct {
	match func(error) bool
	msg   UserMessage
}{
	{func(err error) bool { return errors.Is(err, ErrEmptyFile) }, msgEmptyFile},
	{isParseError, msgInvalidCSV},
	{isFileAccessError, msgFileAccess},
	{func(err error) bool { return errors.Is(err, ErrUnknownType) }, msgUnknownType},
	{func(err error) bool { return errors.Is(err, ErrUnsupportedOperation) }, msgUnsupported},
	{func(err error) bool { return errors.Is(err, context.Canceled) }, msgCancelled},
	{func(err error) bool { return errors.Is(err, context.DeadlineExceeded) }, msgTimeout},
}

func isParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func isFileAccessError(err error) bool {
	var fe *FileAccessError
	return errors.As(err, &fe)
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages
// for errors that cross package boundaries without a shared type.
var errorPatterns = []errorPattern{
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "request body too large", msg: msgFileTooLarge},
	{pattern: "invalid csv", msg: msgInvalidCSV},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to validate",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid expected types",
		msg: UserMessage{
			Message: "The expected types payload is malformed",
			Action:  "Send a JSON object mapping column names to type names",
			Code:    "VAL003",
		},
	},
	{
		pattern: "too many concurrent validations",
		msg: UserMessage{
			Message: "System is busy processing other validations",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "report not found",
		msg: UserMessage{
			Message: "Report not found",
			Action:  "Check the report ID or validate the file again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "report store not configured",
		msg: UserMessage{
			Message: "Report history is not enabled",
			Action:  "Configure DATABASE_URL to keep validation reports",
			Code:    "UPL006",
		},
	},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(&ParseError{Line: 3, Err: errors.New("wrong number of fields")})
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, te := range typedErrors {
		if te.match(err) {
			return te.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
