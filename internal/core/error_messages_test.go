package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "empty file wins over parse error",
			err:         &ParseError{Path: "a.csv", Err: ErrEmptyFile},
			wantCode:    "FILE005",
			wantMessage: "The file is empty",
		},
		{
			name:        "parse error maps to invalid csv",
			err:         &ParseError{Line: 4, Err: errors.New("wrong number of fields")},
			wantCode:    "FILE002",
			wantMessage: "File could not be parsed as a table",
		},
		{
			name:        "file access error",
			err:         fmt.Errorf("load: %w", &FileAccessError{Path: "x.csv", Err: os.ErrNotExist}),
			wantCode:    "FILE006",
			wantMessage: "The file could not be opened",
		},
		{
			name:        "unknown type",
			err:         fmt.Errorf("%w: %q", ErrUnknownType, "money"),
			wantCode:    "VAL001",
			wantMessage: "An expected type name is not recognized",
		},
		{
			name:        "unsupported operation",
			err:         &ColumnFailure{Column: "n", Op: "boolean", Err: ErrUnsupportedOperation},
			wantCode:    "VAL002",
			wantMessage: "A check could not run on this column's data",
		},
		{
			name:        "malformed expected types",
			err:         errors.New("invalid expected types: unexpected end of JSON input"),
			wantCode:    "VAL003",
			wantMessage: "The expected types payload is malformed",
		},
		{
			name:        "request body too large",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "busy",
			err:         errors.New("too many concurrent validations, please try again later"),
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other validations",
		},
		{
			name:        "report not found",
			err:         errors.New("report not found"),
			wantCode:    "UPL003",
			wantMessage: "Report not found",
		},
		{
			name:        "store disabled",
			err:         errors.New("report store not configured"),
			wantCode:    "UPL006",
			wantMessage: "Report history is not enabled",
		},
		{
			name:        "wrapped deadline",
			err:         fmt.Errorf("validate: %w", context.DeadlineExceeded),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("NO FILE PROVIDED"),
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&ParseError{Err: ErrEmptyFile})

	expected := "The file is empty (Code: FILE005). Please provide a CSV file with a header and data rows"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrUnknownType,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &FileAccessError{Path: "x", Err: os.ErrPermission}
		userErr := NewUserError(techErr)

		if userErr.Error() != "The file could not be opened" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, os.ErrPermission) {
			t.Error("Unwrap() should return original error")
		}
	})
}
