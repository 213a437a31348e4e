package validation

import (
	"time"

	"goexpect/domain/core"
)

// SampleCap bounds the number of offending values kept per rule outcome.
const SampleCap = 20

// RuleOutcome is the result of evaluating a single rule against a batch.
type RuleOutcome struct {
	RuleID            string                 `json:"ruleId"`
	Success           bool                   `json:"success"`
	ObservedValue     interface{}            `json:"observedValue"`
	UnexpectedCount   int                    `json:"unexpectedCount"`
	UnexpectedPercent float64                `json:"unexpectedPercent"`
	UnexpectedSample  []interface{}          `json:"unexpectedSample"`
	Meta              map[string]interface{} `json:"meta,omitempty"`
}

// RunResult is the unified, serializable outcome of evaluating a full rule
// set against a batch. This is the stable contract consumed by any
// presentation layer; field names and types must not change across rule-type
// additions.
type RunResult struct {
	Success  bool          `json:"success"`
	Score    float64       `json:"score"`
	Outcomes []RuleOutcome `json:"outcomes"`
}

// Run is a persisted validation run record.
type Run struct {
	ID      core.RunID   `json:"id" db:"id"`
	SuiteID core.SuiteID `json:"suite_id" db:"suite_id"`
	Success bool         `json:"success" db:"success"`
	Score   float64      `json:"score" db:"score"`
	Result  RunResult    `json:"result"`
	RunTime time.Time    `json:"run_time" db:"run_time"`
}
