// Package core provides the type inference and validation engine.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ErrorKind classifies a violation.
type ErrorKind int

const (
	KindMissingValue ErrorKind = iota
	KindTypeMismatch
	KindParseFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingValue:
		return "missing_value"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindParseFailure:
		return "parse_failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ViolationRecord is one invalid cell.
type ViolationRecord struct {
	Row      int          `json:"row"`    // spreadsheet row: data position + HeaderRowOffset
	Column   string       `json:"column"` // column name
	Value    string       `json:"value"`  // offending value, empty when missing
	Error    string       `json:"error"`  // human-readable message
	Kind     ErrorKind    `json:"kind"`
	Expected SemanticType `json:"expected"`
}

// Summary condenses a report. Valid reports carry Status and Message only.
type Summary struct {
	Status              string      `json:"status"`
	Message             string      `json:"message,omitempty"`
	TotalErrors         int         `json:"total_errors,omitempty"`
	ErrorCountsByKind   *CountTable `json:"error_counts_by_kind,omitempty"`
	ErrorCountsByColumn *CountTable `json:"error_counts_by_column,omitempty"`
	MostCommonError     string      `json:"most_common_error,omitempty"`
}

// Summary statuses.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"

	MsgNoErrors = "No validation errors found"
)

// ValidationReport is the result of validating one table.
type ValidationReport struct {
	FilePath     string            `json:"file_path,omitempty"`
	Error        string            `json:"error,omitempty"`
	TotalRows    int               `json:"total_rows"`
	TotalColumns int               `json:"total_columns"`
	ColumnTypes  *TypeMap          `json:"column_types,omitempty"`
	InvalidCount int               `json:"invalid_count"`
	InvalidCells []ViolationRecord `json:"invalid_cells"`
	Summary      *Summary          `json:"summary,omitempty"`
}

// Valid reports whether the table was read and had no violations.
func (r *ValidationReport) Valid() bool {
	return r.Error == "" && r.InvalidCount == 0
}

// FailedReport is the report for a file that could not be read.
func FailedReport(path string, err error) *ValidationReport {
	return &ValidationReport{
		FilePath:     path,
		Error:        fmt.Sprintf("Failed to read CSV: %v", err),
		InvalidCells: []ViolationRecord{},
	}
}

// FileMetadata is a sampled structural summary of one file. When Error is set
// only Filename is meaningful.
type FileMetadata struct {
	Filename           string
	Error              string
	RowCountEstimate   int
	Columns            []string
	FileSizeBytes      int64
	InferredTypes      *TypeMap
	MissingValueCounts *CountTable
	SampleValues       *SampleTable
}

type fileMetadataJSON struct {
	Filename           string       `json:"filename"`
	RowCountEstimate   int          `json:"row_count_estimate"`
	Columns            []string     `json:"columns"`
	FileSizeBytes      int64        `json:"file_size_bytes"`
	InferredTypes      *TypeMap     `json:"inferred_types"`
	MissingValueCounts *CountTable  `json:"missing_value_counts"`
	SampleValues       *SampleTable `json:"sample_values"`
}

type fileMetadataError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// MarshalJSON emits either the full metadata object or {filename, error}.
func (m FileMetadata) MarshalJSON() ([]byte, error) {
	if m.Error != "" {
		return json.Marshal(fileMetadataError{Filename: m.Filename, Error: m.Error})
	}
	cols := m.Columns
	if cols == nil {
		cols = []string{}
	}
	return json.Marshal(fileMetadataJSON{
		Filename:           m.Filename,
		RowCountEstimate:   m.RowCountEstimate,
		Columns:            cols,
		FileSizeBytes:      m.FileSizeBytes,
		InferredTypes:      orEmpty(m.InferredTypes),
		MissingValueCounts: orEmptyCounts(m.MissingValueCounts),
		SampleValues:       orEmptySamples(m.SampleValues),
	})
}

// MetadataBatch holds one entry per requested file, in request order.
type MetadataBatch struct {
	Files []FileMetadata `json:"files"`
}

func orEmpty(m *TypeMap) *TypeMap {
	if m == nil {
		return &TypeMap{}
	}
	return m
}

func orEmptyCounts(c *CountTable) *CountTable {
	if c == nil {
		return &CountTable{}
	}
	return c
}

func orEmptySamples(s *SampleTable) *SampleTable {
	if s == nil {
		return &SampleTable{}
	}
	return s
}
