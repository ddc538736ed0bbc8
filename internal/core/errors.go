package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check with errors.Is.
var (
	// ErrEmptyFile means the input had no header row at all.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedOperation means a kernel cannot run on a column's storage.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrUnknownType means a type name is not part of the semantic lattice.
	ErrUnknownType = errors.New("unknown semantic type")
)

// FileAccessError is returned when a file cannot be opened, stat'ed or
// decompressed.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("file not accessible: %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// ParseError is returned when file content cannot be read as a table. Line is
// 1-based and zero when unknown.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("invalid csv: %s line %d: %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("invalid csv: %s: %v", e.Path, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("invalid csv: line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("invalid csv: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// ColumnFailure records a vectorized operation that could not run over a
// column. The column's cells are reported as validation errors instead.
type ColumnFailure struct {
	Column string
	Op     string
	Err    error
}

func (e *ColumnFailure) Error() string {
	return fmt.Sprintf("column %q: %s: %v", e.Column, e.Op, e.Err)
}

func (e *ColumnFailure) Unwrap() error { return e.Err }
