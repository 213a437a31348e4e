package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JudgeSystemPrompt primes the model as a strict binary classifier. The
// response schema is pinned so the evaluator can parse per-value verdicts.
const JudgeSystemPrompt = `You are a strict data validation engine.
The user provides a list of values and a validation condition.
Evaluate EACH value against the condition.
Return a JSON object: {"results": [{"value": "val", "isValid": true}, ...]}
Include every submitted value exactly once. No prose.`

// BuildJudgePrompt renders the batched classification request for a
// deduplicated value set.
func BuildJudgePrompt(condition string, values []string) string {
	encoded, _ := json.Marshal(values)
	return fmt.Sprintf("Validation Condition: %q\nValues: %s", condition, string(encoded))
}

// SuggestSystemPrompt primes the model as a data-quality analyst proposing
// candidate rules from a column profile.
const SuggestSystemPrompt = `You are a data quality expert.
Given a profile of a tabular dataset, suggest 3-5 data-quality rules.
Return a JSON object: {"suggestions": [{"column": "...", "type": "...", "kwargs": {...}, "description": "..."}]}
Use only these rule types: expect_column_values_to_not_be_null,
expect_column_values_to_be_unique, expect_column_values_to_be_in_set,
expect_column_values_to_be_between, expect_column_values_to_match_regex,
expect_table_row_count_to_be_between.`

// BuildSuggestPrompt renders the profile summary handed to the model.
func BuildSuggestPrompt(profileJSON []byte, columns []string) string {
	var sb strings.Builder
	sb.WriteString("Dataset profile:\n")
	sb.Write(profileJSON)
	sb.WriteString("\n\nColumns: ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString("\nSuggest rules for the columns above.")
	return sb.String()
}
