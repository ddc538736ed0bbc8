package core

// validation.go classifies every cell of a column as missing, conforming or
// invalid.
//
// Validation happens in two passes over the whole column:
//  1. Missing mask: Arrow nulls plus whitespace-only strings
//  2. Type mask: the registered kernel for the expected type, skipping missing rows
//
// Storage that already guarantees the expected type skips pass 2. A kernel that
// cannot run on the column's storage degrades the column: every non-missing
// cell is reported with the failure's cause and the column continues to be
// reported rather than aborting the table.

import (
	"fmt"
)

// ColumnResult is the outcome of validating one column.
type ColumnResult struct {
	Column     string
	Type       SemanticType
	Violations []ViolationRecord

	// Failure is set when the type check could not run on this column.
	Failure error
}

// ValidateColumn validates every cell of col against t.
func ValidateColumn(col *Column, t SemanticType) ColumnResult {
	res := ColumnResult{Column: col.Name(), Type: t}
	arr := col.Data()

	missing := missingMask(arr)
	for _, i := range missing.Indices() {
		res.Violations = append(res.Violations, ViolationRecord{
			Row:      i + HeaderRowOffset,
			Column:   col.Name(),
			Error:    MsgMissingValue,
			Kind:     KindMissingValue,
			Expected: t,
		})
	}

	rule, ok := RuleFor(t)
	if !ok {
		res.Failure = &ColumnFailure{Column: col.Name(), Op: "dispatch", Err: fmt.Errorf("%w: %s", ErrUnknownType, t)}
		res.Violations = append(res.Violations, degrade(col, t, missing, res.Failure)...)
		return res
	}
	if rule.Native(col.Storage()) || rule.Check == nil {
		return res
	}

	invalid, err := rule.Check(arr, missing)
	if err != nil {
		res.Failure = &ColumnFailure{Column: col.Name(), Op: rule.Label, Err: err}
		res.Violations = append(res.Violations, degrade(col, t, missing, err)...)
		return res
	}

	for _, i := range invalid.Indices() {
		res.Violations = append(res.Violations, ViolationRecord{
			Row:      i + HeaderRowOffset,
			Column:   col.Name(),
			Value:    arr.ValueStr(i),
			Error:    rule.Message,
			Kind:     rule.Kind,
			Expected: t,
		})
	}
	return res
}

// degrade reports every non-missing cell of col with the cause of a
// column-level failure.
func degrade(col *Column, t SemanticType, missing Mask, cause error) []ViolationRecord {
	arr := col.Data()
	msg := MsgValidationError + cause.Error()
	rows := missing.Not().Indices()
	out := make([]ViolationRecord, 0, len(rows))
	for _, i := range rows {
		out = append(out, ViolationRecord{
			Row:      i + HeaderRowOffset,
			Column:   col.Name(),
			Value:    arr.ValueStr(i),
			Error:    msg,
			Kind:     KindParseFailure,
			Expected: t,
		})
	}
	return out
}
