package core

// lattice.go defines the semantic types a column can be classified as and the
// fixed heuristics that drive inference.
//
// The thresholds below are part of the engine's contract. Two implementations
// that agree on them (and on the date pattern) classify every column the same
// way, so they are constants rather than configuration.

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// SemanticType is the inferred real-world meaning of a column's values.
type SemanticType int

const (
	TypeText SemanticType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDateString
	TypeNumericString
	TypeDatetime
	TypeCategorical
)

// Inference constants.
const (
	// InferenceSampleSize bounds how many non-missing values of a string
	// column are examined by the heuristics.
	InferenceSampleSize = 1000

	// DateMatchThreshold is the share of sampled values that must match the
	// date pattern for a column to be classified date_string.
	DateMatchThreshold = 0.6

	// NumericParseThreshold is the share of sampled values that must survive
	// a non-strict float cast for a column to be classified numeric_string.
	NumericParseThreshold = 0.8

	// CategoricalRatio and CategoricalMaxUnique must both hold (strictly) for
	// a column to be classified categorical.
	CategoricalRatio     = 0.1
	CategoricalMaxUnique = 50

	// MetadataSampleRows is the bounded prefix read by the metadata sampler.
	MetadataSampleRows = 1000

	// MetadataSampleValues is the number of preview values per column.
	MetadataSampleValues = 5

	// HeaderRowOffset converts a 0-based data position into the row number a
	// person sees in a spreadsheet (1-based, header on row 1).
	HeaderRowOffset = 2
)

// datePatterns are the recognized date layouts, checked as one expression.
var datePatterns = []string{
	`^\d{4}-\d{2}-\d{2}$`, // YYYY-MM-DD
	`^\d{2}/\d{2}/\d{4}$`, // MM/DD/YYYY
	`^\d{2}-\d{2}-\d{4}$`, // MM-DD-YYYY
	`^\d{4}/\d{2}/\d{2}$`, // YYYY/MM/DD
}

// dateRegex is the combined date pattern shared by inference and validation.
var dateRegex = regexp.MustCompile(combinePatterns(datePatterns))

func combinePatterns(patterns []string) string {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(" + p + ")"
	}
	return strings.Join(parts, "|")
}

var semanticTypeNames = map[SemanticType]string{
	TypeText:          "text",
	TypeInteger:       "integer",
	TypeFloat:         "float",
	TypeBoolean:       "boolean",
	TypeDateString:    "date_string",
	TypeNumericString: "numeric_string",
	TypeDatetime:      "datetime",
	TypeCategorical:   "categorical",
}

// AllSemanticTypes lists every semantic type in declaration order.
func AllSemanticTypes() []SemanticType {
	return []SemanticType{
		TypeInteger, TypeFloat, TypeBoolean, TypeDateString,
		TypeNumericString, TypeDatetime, TypeCategorical, TypeText,
	}
}

func (t SemanticType) String() string {
	if name, ok := semanticTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SemanticType(%d)", int(t))
}

// ParseSemanticType converts an external type name (case-insensitive) into a
// SemanticType.
func ParseSemanticType(name string) (SemanticType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for t, n := range semanticTypeNames {
		if n == key {
			return t, nil
		}
	}
	return TypeText, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// MarshalText implements encoding.TextMarshaler.
func (t SemanticType) MarshalText() ([]byte, error) {
	if _, ok := semanticTypeNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SemanticType) UnmarshalText(b []byte) error {
	parsed, err := ParseSemanticType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseExpectedTypes converts a column → type-name mapping (as received from
// JSON, YAML or form input) into typed overrides. Unknown type names are an
// error; the whole mapping is rejected.
func ParseExpectedTypes(raw map[string]string) (map[string]SemanticType, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]SemanticType, len(raw))
	var bad []string
	for col, name := range raw {
		t, err := ParseSemanticType(name)
		if err != nil {
			bad = append(bad, fmt.Sprintf("%s=%q", col, name))
			continue
		}
		out[col] = t
	}
	if len(bad) > 0 {
		slices.Sort(bad)
		return nil, fmt.Errorf("%w for columns: %s", ErrUnknownType, strings.Join(bad, ", "))
	}
	return out, nil
}

// StorageKind is the physical representation of a column's values.
type StorageKind int

const (
	StorageOther StorageKind = iota
	StorageString
	StorageInteger
	StorageFloat
	StorageBoolean
	StorageTemporal
)

func (k StorageKind) String() string {
	switch k {
	case StorageString:
		return "string"
	case StorageInteger:
		return "integer"
	case StorageFloat:
		return "float"
	case StorageBoolean:
		return "boolean"
	case StorageTemporal:
		return "temporal"
	default:
		return "other"
	}
}

// nativeType is the classification of a non-string storage, used by the
// inferrer before any string heuristics run.
func nativeType(k StorageKind) (SemanticType, bool) {
	switch k {
	case StorageInteger:
		return TypeInteger, true
	case StorageFloat:
		return TypeFloat, true
	case StorageBoolean:
		return TypeBoolean, true
	case StorageTemporal:
		return TypeDatetime, true
	case StorageOther:
		return TypeText, true
	default:
		return TypeText, false
	}
}
