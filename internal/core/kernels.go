package core

// kernels.go holds the whole-column checks used by inference and validation.
//
// A kernel takes the full Arrow array plus a skip mask (rows already known to
// be missing) and returns a mask of failing rows. Kernels never panic on
// unexpected storage: they return an error wrapping ErrUnsupportedOperation so
// the validator can degrade the column explicitly.

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Kernel evaluates one check across a whole column.
type Kernel func(arr arrow.Array, skip Mask) (Mask, error)

// stringArray is satisfied by Arrow's String, LargeString and StringView.
type stringArray interface {
	arrow.Array
	Value(i int) string
}

// booleanTokens are the accepted spellings of a boolean, compared lowercase.
var booleanTokens = map[string]struct{}{
	"true": {}, "false": {},
	"1": {}, "0": {},
	"yes": {}, "no": {},
	"y": {}, "n": {},
}

// datetimeLayouts are tried in order when a string column is validated as
// datetime.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var formattingStripper = strings.NewReplacer(",", "", " ", "")

// stripFormatting removes thousands separators and spaces before a cast.
func stripFormatting(s string) string {
	if !strings.ContainsAny(s, ", ") {
		return s
	}
	return formattingStripper.Replace(s)
}

// parsesAsFloat is the non-strict float cast: decimal and exponent notation
// plus inf/infinity/nan. Values that overflow still count as numbers.
func parsesAsFloat(s string) bool {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

// parsesAsInt is the non-strict integer cast: optional sign, decimal digits,
// within int64.
func parsesAsInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func parsesAsDatetime(s string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBooleanToken(s string) bool {
	_, ok := booleanTokens[strings.ToLower(s)]
	return ok
}

func unsupported(op string, arr arrow.Array) error {
	return fmt.Errorf("%s: %w on %s storage (%s)", op, ErrUnsupportedOperation, storageOf(arr.DataType()), arr.DataType())
}

func asStrings(op string, arr arrow.Array) (stringArray, error) {
	s, ok := arr.(stringArray)
	if !ok || storageOf(arr.DataType()) != StorageString {
		return nil, unsupported(op, arr)
	}
	return s, nil
}

// scanStrings marks every non-skipped row whose value fails the predicate.
func scanStrings(arr stringArray, skip Mask, fails func(string) bool) Mask {
	n := arr.Len()
	out := NewMask(n)
	for i := 0; i < n; i++ {
		if skip.Get(i) {
			continue
		}
		if fails(arr.Value(i)) {
			out.Set(i)
		}
	}
	return out
}

// missingMask marks nulls and, for string storage, whitespace-only values.
func missingMask(arr arrow.Array) Mask {
	nulls := nullMask(arr)
	s, ok := arr.(stringArray)
	if !ok || storageOf(arr.DataType()) != StorageString {
		return nulls
	}
	blank := scanStrings(s, nulls, func(v string) bool {
		return strings.TrimSpace(v) == ""
	})
	return nulls.Or(blank)
}

// integerKernel flags values that do not cast to int64. String values are
// stripped of separators first; float values must be finite and integral.
func integerKernel(arr arrow.Array, skip Mask) (Mask, error) {
	switch a := arr.(type) {
	case *array.Float64:
		return scanFloats(a.Float64Values(), skip), nil
	case *array.Float32:
		vals := a.Float32Values()
		wide := make([]float64, len(vals))
		for i, v := range vals {
			wide[i] = float64(v)
		}
		return scanFloats(wide, skip), nil
	}
	s, err := asStrings("integer cast", arr)
	if err != nil {
		return Mask{}, err
	}
	return scanStrings(s, skip, func(v string) bool {
		return !parsesAsInt(stripFormatting(v))
	}), nil
}

func scanFloats(vals []float64, skip Mask) Mask {
	out := NewMask(len(vals))
	for i, v := range vals {
		if skip.Get(i) {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			out.Set(i)
		}
	}
	return out
}

// numberKernel flags values that do not cast to a float after stripping
// separators.
func numberKernel(arr arrow.Array, skip Mask) (Mask, error) {
	s, err := asStrings("numeric cast", arr)
	if err != nil {
		return Mask{}, err
	}
	return scanStrings(s, skip, func(v string) bool {
		return !parsesAsFloat(stripFormatting(v))
	}), nil
}

// booleanKernel flags values outside the accepted boolean tokens.
func booleanKernel(arr arrow.Array, skip Mask) (Mask, error) {
	s, err := asStrings("lowercase", arr)
	if err != nil {
		return Mask{}, err
	}
	return scanStrings(s, skip, func(v string) bool {
		return !isBooleanToken(v)
	}), nil
}

// dateKernel flags values that match none of the date layouts.
func dateKernel(arr arrow.Array, skip Mask) (Mask, error) {
	s, err := asStrings("date pattern match", arr)
	if err != nil {
		return Mask{}, err
	}
	return scanStrings(s, skip, func(v string) bool {
		return !dateRegex.MatchString(v)
	}), nil
}

// datetimeKernel flags string values that parse with none of the datetime
// layouts.
func datetimeKernel(arr arrow.Array, skip Mask) (Mask, error) {
	s, err := asStrings("datetime parse", arr)
	if err != nil {
		return Mask{}, err
	}
	return scanStrings(s, skip, func(v string) bool {
		return !parsesAsDatetime(v)
	}), nil
}
