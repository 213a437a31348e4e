package rules

import (
	"regexp"

	"goexpect/domain/batch"
)

// Strategy selects how a rule is evaluated.
type Strategy string

const (
	// StrategyDeterministic rules are computed purely from row values.
	StrategyDeterministic Strategy = "deterministic"
	// StrategySemantic rules require an external natural-language judgment
	// per distinct value.
	StrategySemantic Strategy = "semantic"
)

// Built-in rule types. The deterministic set is extensible via Register;
// exactly one type is semantic.
const (
	TypeNotNull       = "expect_column_values_to_not_be_null"
	TypeUnique        = "expect_column_values_to_be_unique"
	TypeInSet         = "expect_column_values_to_be_in_set"
	TypeBetween       = "expect_column_values_to_be_between"
	TypeMatchRegex    = "expect_column_values_to_match_regex"
	TypeRowCount      = "expect_table_row_count_to_be_between"
	TypeSemanticCheck = "expect_column_values_to_match_ai_semantic_check"
)

// Spec is the wire-level rule specification as submitted by a caller.
type Spec struct {
	ID     string                 `json:"id,omitempty"`
	Type   string                 `json:"type"`
	Column string                 `json:"column,omitempty"`
	Kwargs map[string]interface{} `json:"kwargs,omitempty"`
}

// Rule is a parsed and validated rule, ready for evaluation. Exactly one of
// the per-kind argument structs is non-nil, selected by Type. Kwargs keeps the
// raw bag for result metadata and custom registered kinds.
type Rule struct {
	ID       string
	Type     string
	Column   string
	Strategy Strategy
	Kwargs   map[string]interface{}

	NotNull  *NotNullArgs
	Unique   *UniqueArgs
	InSet    *InSetArgs
	Between  *BetweenArgs
	Regex    *RegexArgs
	RowCount *RowCountArgs
	Semantic *SemanticArgs
}

// NotNullArgs parameterizes the not-null check.
type NotNullArgs struct {
	Mostly float64 // minimum pass fraction in (0,1]; 1.0 means no tolerance
}

// UniqueArgs parameterizes the uniqueness check.
type UniqueArgs struct {
	Mostly float64
}

// InSetArgs parameterizes the value-in-set check.
type InSetArgs struct {
	ValueSet []batch.Value
	Mostly   float64
}

// BetweenArgs parameterizes the numeric range check. A nil bound is open.
type BetweenArgs struct {
	Min    *float64
	Max    *float64
	Mostly float64
}

// RegexArgs parameterizes the regex match check.
type RegexArgs struct {
	Pattern *regexp.Regexp
	Mostly  float64
}

// RowCountArgs parameterizes the table-level row count bound. A nil bound is
// open. This rule ignores Column.
type RowCountArgs struct {
	Min *int
	Max *int
}

// SemanticArgs parameterizes the AI semantic check.
type SemanticArgs struct {
	Prompt string
}
