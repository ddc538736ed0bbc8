package core

// loader.go reads delimited text into a Frame.
//
// Each column is typed from all of its loaded values: an empty field is null,
// everything else keeps its exact text (no trimming). A column becomes Int64,
// Float64 or Boolean only when every non-null value parses as one; with
// ParseDates, ISO dates and datetimes become Date32 and Timestamp. Anything
// else stays String and is left to the inferrer's heuristics.

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LoadOptions controls how a file is read.
type LoadOptions struct {
	Delimiter  rune // 0 = detect from the header line
	MaxRows    int  // 0 = no limit
	ParseDates bool // type ISO date/datetime columns as temporal storage
}

// candidateDelimiters are tried in order; ties go to the earlier entry.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// sniffSize bounds how much of the stream is examined for the header line.
const sniffSize = 64 * 1024

// LoadFile reads a CSV (optionally compressed) or Parquet file.
func LoadFile(path string, opts LoadOptions) (*Frame, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return LoadParquet(path, opts)
	}

	in, err := OpenDecoded(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	f, err := LoadCSV(in, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &FileAccessError{Path: path, Err: err}
	}
	return f, nil
}

// LoadCSV reads delimited text with a header row. Malformed input is returned
// as *ParseError; read failures from r are returned wrapped.
func LoadCSV(r io.Reader, opts LoadOptions) (*Frame, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	delim := opts.Delimiter
	if delim == 0 {
		delim = detectDelimiter(br)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, csvError(err)
	}
	names := headerNames(header)

	values := make([][]string, len(names))
	valid := make([][]bool, len(names))
	rows := 0
	for opts.MaxRows <= 0 || rows < opts.MaxRows {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if len(rec) > len(names) {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("row has %d fields, header has %d", len(rec), len(names)),
			}
		}
		for j := range names {
			if j < len(rec) && rec[j] != "" {
				values[j] = append(values[j], rec[j])
				valid[j] = append(valid[j], true)
			} else {
				values[j] = append(values[j], "")
				valid[j] = append(valid[j], false)
			}
		}
		rows++
	}

	cols := make([]*Column, len(names))
	for j, name := range names {
		cols[j] = buildColumn(name, values[j], valid[j], opts.ParseDates)
	}
	return NewFrame(cols...)
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("read: %w", err)
}

// detectDelimiter picks the candidate occurring most often outside double
// quotes in the first line, defaulting to a comma.
func detectDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(sniffSize)
	counts := make(map[rune]int, len(candidateDelimiters))
	quoted := false
	for _, c := range string(peek) {
		if c == '"' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		if c == '\n' {
			break
		}
		counts[c]++
	}

	best, bestN := ',', 0
	for _, d := range candidateDelimiters {
		if n := counts[d]; n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// headerNames fills blank names with column_N (1-based) and suffixes
// duplicates with _1, _2, ...
func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if seen[name] {
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s_%d", name, n)
				if !seen[candidate] {
					name = candidate
					break
				}
			}
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func buildColumn(name string, vals []string, valid []bool, parseDates bool) *Column {
	present := 0
	for _, ok := range valid {
		if ok {
			present++
		}
	}
	if present == 0 {
		return NewStringColumn(name, vals, valid)
	}

	if ints, ok := parseAll(vals, valid, func(s string) (int64, bool) {
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}); ok {
		return NewInt64Column(name, ints, valid)
	}
	if floats, ok := parseAll(vals, valid, parseFloatStrict); ok {
		return NewFloat64Column(name, floats, valid)
	}
	if bools, ok := parseAll(vals, valid, parseBoolLiteral); ok {
		return NewBooleanColumn(name, bools, valid)
	}
	if parseDates {
		if dates, ok := parseAll(vals, valid, layoutParser("2006-01-02")); ok {
			return NewDateColumn(name, dates, valid)
		}
		if ts, ok := parseAll(vals, valid, layoutParser(datetimeLayouts[:3]...)); ok {
			return NewTimestampColumn(name, ts, valid)
		}
	}
	return NewStringColumn(name, vals, valid)
}

// parseAll converts every valid entry, stopping at the first failure.
func parseAll[T any](vals []string, valid []bool, parse func(string) (T, bool)) ([]T, bool) {
	out := make([]T, len(vals))
	for i, s := range vals {
		if !valid[i] {
			continue
		}
		v, ok := parse(s)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseFloatStrict(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseBoolLiteral(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}

func layoutParser(layouts ...string) func(string) (time.Time, bool) {
	return func(s string) (time.Time, bool) {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}
