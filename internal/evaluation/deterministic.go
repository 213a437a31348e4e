package evaluation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"goexpect/domain/batch"
	"goexpect/domain/core"
	"goexpect/domain/rules"
	"goexpect/domain/validation"
)

// EvaluateDeterministic executes a built-in deterministic rule against a
// batch. Column-scoped kinds scan every row's value in the rule's column;
// table-level kinds (row count) ignore the column. The batch is never
// mutated.
func EvaluateDeterministic(rule rules.Rule, b *batch.Batch) (validation.RuleOutcome, error) {
	switch rule.Type {
	case rules.TypeNotNull:
		return scanColumn(rule, b, rule.NotNull.Mostly, func(v batch.Value) bool {
			return !isNull(v)
		}, observeNullCount), nil
	case rules.TypeUnique:
		return evaluateUnique(rule, b), nil
	case rules.TypeInSet:
		allowed := make(map[string]struct{}, len(rule.InSet.ValueSet))
		for _, v := range rule.InSet.ValueSet {
			allowed[canonical(v)] = struct{}{}
		}
		return scanColumn(rule, b, rule.InSet.Mostly, func(v batch.Value) bool {
			if isNull(v) {
				return false
			}
			_, ok := allowed[canonical(v)]
			return ok
		}, observeDistinctCount), nil
	case rules.TypeBetween:
		return scanColumn(rule, b, rule.Between.Mostly, func(v batch.Value) bool {
			n, ok := asNumber(v)
			if !ok {
				return false
			}
			if rule.Between.Min != nil && n < *rule.Between.Min {
				return false
			}
			if rule.Between.Max != nil && n > *rule.Between.Max {
				return false
			}
			return true
		}, observeNumericRange), nil
	case rules.TypeMatchRegex:
		return scanColumn(rule, b, rule.Regex.Mostly, func(v batch.Value) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			return rule.Regex.Pattern.MatchString(s)
		}, observeDistinctCount), nil
	case rules.TypeRowCount:
		return evaluateRowCount(rule, b), nil
	default:
		return validation.RuleOutcome{}, fmt.Errorf("%w: no deterministic evaluator for %q", core.ErrEvaluation, rule.Type)
	}
}

// observeFunc computes the rule-dependent representative statistic.
type observeFunc func(values []batch.Value) interface{}

// scanColumn classifies every value in the rule's column and folds the
// results into a RuleOutcome. An empty batch yields a vacuous success.
func scanColumn(rule rules.Rule, b *batch.Batch, mostly float64, valid func(batch.Value) bool, observe observeFunc) validation.RuleOutcome {
	values := b.ColumnValues(rule.Column)

	outcome := validation.RuleOutcome{
		RuleID:           rule.ID,
		UnexpectedSample: []interface{}{},
		Meta:             map[string]interface{}{"rule_type": rule.Type, "column": rule.Column},
	}

	for _, v := range values {
		if valid(v) {
			continue
		}
		outcome.UnexpectedCount++
		if len(outcome.UnexpectedSample) < validation.SampleCap {
			outcome.UnexpectedSample = append(outcome.UnexpectedSample, v)
		}
	}

	rowCount := len(values)
	if rowCount > 0 {
		outcome.UnexpectedPercent = 100 * float64(outcome.UnexpectedCount) / float64(rowCount)
	}
	outcome.Success = passes(outcome.UnexpectedCount, rowCount, mostly)
	outcome.ObservedValue = observe(values)
	return outcome
}

// evaluateUnique counts every occurrence of a duplicated value as unexpected.
func evaluateUnique(rule rules.Rule, b *batch.Batch) validation.RuleOutcome {
	values := b.ColumnValues(rule.Column)
	counts := make(map[string]int, len(values))
	for _, v := range values {
		if isNull(v) {
			continue
		}
		counts[canonical(v)]++
	}
	return scanColumn(rule, b, rule.Unique.Mostly, func(v batch.Value) bool {
		if isNull(v) {
			// Nulls carry no identity; uniqueness is about present values.
			return true
		}
		return counts[canonical(v)] == 1
	}, observeDistinctCount)
}

func evaluateRowCount(rule rules.Rule, b *batch.Batch) validation.RuleOutcome {
	rowCount := b.RowCount()
	success := true
	if rule.RowCount.Min != nil && rowCount < *rule.RowCount.Min {
		success = false
	}
	if rule.RowCount.Max != nil && rowCount > *rule.RowCount.Max {
		success = false
	}
	// A table-level rule has no per-row unexpected values: the failure is
	// carried by the success flag and the observed row count alone.
	return validation.RuleOutcome{
		RuleID:           rule.ID,
		Success:          success,
		ObservedValue:    rowCount,
		UnexpectedSample: []interface{}{},
		Meta:             map[string]interface{}{"rule_type": rule.Type, "table_level": true},
	}
}

// passes applies the tolerance threshold: success when the pass fraction is
// at least mostly. With mostly == 1.0 this reduces to unexpected == 0.
// An empty column defaults to success.
func passes(unexpected, rowCount int, mostly float64) bool {
	if rowCount == 0 {
		return true
	}
	passFraction := 1 - float64(unexpected)/float64(rowCount)
	return passFraction >= mostly
}

// --- value classification helpers ---

// isNull treats nil and empty strings as null; file-backed sources surface
// missing cells as either depending on the reader.
func isNull(v batch.Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// asNumber coerces a cell to float64 where possible. Numeric strings count:
// CSV sources deliver untyped text.
func asNumber(v batch.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// canonical renders a cell as a comparison key. Numbers use the shortest
// round-trip form so 30 and 30.0 compare equal.
func canonical(v batch.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// --- observed statistics ---

func observeNullCount(values []batch.Value) interface{} {
	nulls := 0
	for _, v := range values {
		if isNull(v) {
			nulls++
		}
	}
	return map[string]interface{}{"null_count": nulls, "element_count": len(values)}
}

func observeDistinctCount(values []batch.Value) interface{} {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		if isNull(v) {
			continue
		}
		distinct[canonical(v)] = struct{}{}
	}
	return map[string]interface{}{"distinct_count": len(distinct), "element_count": len(values)}
}

func observeNumericRange(values []batch.Value) interface{} {
	nums := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if n, ok := asNumber(v); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return map[string]interface{}{"element_count": len(values)}
	}
	min, _ := stats.Min(nums)
	max, _ := stats.Max(nums)
	return map[string]interface{}{"min": min, "max": max, "element_count": len(values)}
}
