package evaluation

import "goexpect/domain/validation"

// Aggregate merges per-rule outcomes into one RunResult, weighting each rule
// equally: score = 100 * passedRuleCount / totalRuleCount.
//
// A rule counts as passed when its success flag is set, or when its reported
// statistics show a clean pass (no unexpected values and no evaluation
// error) even though the flag arrived stale-false from an upstream source.
// Overall success starts as the conjunction of the flags and is then forced
// to true whenever the score is exactly 100.0. Both are read-time rules: the
// per-rule outcomes are never rewritten.
//
// An empty rule set yields {success: true, score: 0.0} by convention.
func Aggregate(outcomes []validation.RuleOutcome) validation.RunResult {
	result := validation.RunResult{
		Success:  true,
		Outcomes: outcomes,
	}
	if len(outcomes) == 0 {
		result.Outcomes = []validation.RuleOutcome{}
		return result
	}

	passed := 0
	for _, outcome := range outcomes {
		if outcome.Success || statisticallyClean(outcome) {
			passed++
		}
		if !outcome.Success {
			result.Success = false
		}
	}
	result.Score = 100 * float64(passed) / float64(len(outcomes))

	if result.Score == 100.0 {
		result.Success = true
	}
	return result
}

// statisticallyClean reports whether an outcome's per-row statistics describe
// a full pass regardless of its success flag. An outcome carrying an
// evaluation error in meta is never clean, even with zero unexpected values.
// Table-level outcomes carry no per-row statistics at all, so their flag is
// authoritative.
func statisticallyClean(outcome validation.RuleOutcome) bool {
	if outcome.UnexpectedCount != 0 || outcome.UnexpectedPercent != 0 {
		return false
	}
	if _, failed := outcome.Meta["error"]; failed {
		return false
	}
	if tableLevel, _ := outcome.Meta["table_level"].(bool); tableLevel {
		return false
	}
	return true
}
