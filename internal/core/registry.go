package core

import (
	"fmt"
	"sync"
)

// TypeRule describes how cells of one semantic type are validated.
type TypeRule struct {
	Type    SemanticType
	Label   string    // diagnostic name, e.g. "number"
	Message string    // violation message for a non-conforming cell
	Kind    ErrorKind // kind recorded for a non-conforming cell

	// Native reports whether a storage already guarantees conformance, in
	// which case only the missing check runs.
	Native func(StorageKind) bool

	// Check flags non-conforming cells. Nil means every non-missing cell is
	// valid.
	Check Kernel
}

var (
	rules   = make(map[SemanticType]TypeRule)
	rulesMu sync.RWMutex
)

// RegisterRule adds the rule for a semantic type.
// Panics if the type already has a rule.
func RegisterRule(rule TypeRule) {
	rulesMu.Lock()
	defer rulesMu.Unlock()

	if _, exists := rules[rule.Type]; exists {
		panic(fmt.Sprintf("type rule already registered: %s", rule.Type))
	}
	if rule.Native == nil {
		rule.Native = func(StorageKind) bool { return false }
	}
	rules[rule.Type] = rule
}

// RuleFor returns the rule registered for t.
func RuleFor(t SemanticType) (TypeRule, bool) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	rule, ok := rules[t]
	return rule, ok
}

// Rules returns every registered rule in lattice order.
func Rules() []TypeRule {
	rulesMu.RLock()
	defer rulesMu.RUnlock()

	out := make([]TypeRule, 0, len(rules))
	for _, t := range AllSemanticTypes() {
		if r, ok := rules[t]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Violation messages.
const (
	MsgMissingValue = "Missing value"
	MsgExpectedInt  = "Expected integer"
	MsgExpectedNum  = "Expected number"
	MsgExpectedBool = "Expected boolean (true/false, 1/0, yes/no)"
	MsgInvalidDate  = "Invalid date format (expected YYYY-MM-DD, MM/DD/YYYY, etc.)"
	MsgExpectedTime = "Expected datetime"

	// MsgValidationError prefixes the cause of a column-level failure.
	MsgValidationError = "Validation error: "
)

func storageIn(kinds ...StorageKind) func(StorageKind) bool {
	return func(k StorageKind) bool {
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

func anyStorage(StorageKind) bool { return true }

func init() {
	RegisterRule(TypeRule{
		Type:    TypeInteger,
		Label:   "integer",
		Message: MsgExpectedInt,
		Kind:    KindTypeMismatch,
		Native:  storageIn(StorageInteger),
		Check:   integerKernel,
	})
	RegisterRule(TypeRule{
		Type:    TypeFloat,
		Label:   "number",
		Message: MsgExpectedNum,
		Kind:    KindTypeMismatch,
		Native:  storageIn(StorageInteger, StorageFloat),
		Check:   numberKernel,
	})
	RegisterRule(TypeRule{
		Type:    TypeNumericString,
		Label:   "number",
		Message: MsgExpectedNum,
		Kind:    KindTypeMismatch,
		Native:  storageIn(StorageInteger, StorageFloat),
		Check:   numberKernel,
	})
	RegisterRule(TypeRule{
		Type:    TypeBoolean,
		Label:   "boolean",
		Message: MsgExpectedBool,
		Kind:    KindTypeMismatch,
		Native:  storageIn(StorageBoolean),
		Check:   booleanKernel,
	})
	RegisterRule(TypeRule{
		Type:    TypeDateString,
		Label:   "date",
		Message: MsgInvalidDate,
		Kind:    KindParseFailure,
		Native:  storageIn(StorageTemporal),
		Check:   dateKernel,
	})
	RegisterRule(TypeRule{
		Type:    TypeDatetime,
		Label:   "datetime",
		Message: MsgExpectedTime,
		Kind:    KindParseFailure,
		Native:  storageIn(StorageTemporal),
		Check:   datetimeKernel,
	})
	RegisterRule(TypeRule{
		Type:   TypeCategorical,
		Label:  "categorical",
		Native: anyStorage,
	})
	RegisterRule(TypeRule{
		Type:   TypeText,
		Label:  "text",
		Native: anyStorage,
	})
}
