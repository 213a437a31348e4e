package evaluation

import (
	"context"
	"fmt"
	"log"

	"goexpect/domain/batch"
	"goexpect/domain/rules"
	"goexpect/domain/validation"
	"goexpect/ports"
)

// EvaluateSemantic executes an AI semantic rule against a batch.
//
// It collects the target column's values, discards null/empty cells,
// deduplicates the rest by exact string form, and submits the distinct set
// plus the rule's condition to the judge in one batched call, so the number
// of external calls is bounded per rule rather than per row. Verdicts are
// then expanded back across all original occurrences; a value the judge did
// not answer for counts as invalid (fail-closed).
//
// A judge failure degrades to a failing outcome with meta.error set - it is
// never silently dropped, and it never aborts the rest of the run.
func EvaluateSemantic(ctx context.Context, judge ports.SemanticJudge, rule rules.Rule, b *batch.Batch) validation.RuleOutcome {
	outcome := validation.RuleOutcome{
		RuleID:           rule.ID,
		UnexpectedSample: []interface{}{},
		Meta: map[string]interface{}{
			"rule_type": rule.Type,
			"column":    rule.Column,
			"ai_prompt": rule.Semantic.Prompt,
		},
	}

	// Occurrences in row order, skipping null/empty cells.
	occurrences := make([]string, 0, b.RowCount())
	for _, v := range b.ColumnValues(rule.Column) {
		if isNull(v) {
			continue
		}
		occurrences = append(occurrences, canonical(v))
	}

	distinct := dedupe(occurrences)
	outcome.Meta["distinct_count"] = len(distinct)

	if len(distinct) == 0 {
		// Nothing to judge: vacuous success.
		outcome.Success = true
		outcome.ObservedValue = "0 failures out of 0 checked"
		return outcome
	}

	verdicts, err := judge.JudgeValues(ctx, rule.Semantic.Prompt, distinct)
	if err != nil {
		log.Printf("[SemanticEvaluator] judge call failed for rule %s: %v", rule.ID, err)
		outcome.Success = false
		outcome.ObservedValue = "semantic judge unavailable"
		outcome.Meta["error"] = err.Error()
		return outcome
	}

	for _, value := range occurrences {
		if verdicts[value] {
			continue
		}
		outcome.UnexpectedCount++
		if len(outcome.UnexpectedSample) < validation.SampleCap {
			outcome.UnexpectedSample = append(outcome.UnexpectedSample, value)
		}
	}

	checked := len(occurrences)
	if rowCount := b.RowCount(); rowCount > 0 {
		outcome.UnexpectedPercent = 100 * float64(outcome.UnexpectedCount) / float64(rowCount)
	}
	outcome.Success = outcome.UnexpectedCount == 0
	outcome.ObservedValue = fmt.Sprintf("%d failures out of %d checked", outcome.UnexpectedCount, checked)
	return outcome
}

// dedupe preserves first-seen order and the exact string form of each value.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	return distinct
}
