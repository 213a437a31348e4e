package suggest

import (
	"context"
	"fmt"

	"goexpect/domain/profile"
	"goexpect/domain/rules"
	"goexpect/ports"
)

// lowCardinalityMax bounds how many distinct values a column may have before
// an in-set suggestion stops making sense.
const lowCardinalityMax = 10

// Heuristic proposes rules from a profile using fixed thresholds, no
// external calls. It backs the LLM suggester when no API key is configured;
// its output is labeled heuristic so callers never mistake it for model
// judgment.
type Heuristic struct{}

// NewHeuristic creates a heuristic rule suggester.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// SuggestRules derives candidate rules column by column.
func (h *Heuristic) SuggestRules(ctx context.Context, prof profile.TableProfile) ([]ports.SuggestedRule, error) {
	var suggestions []ports.SuggestedRule

	for _, col := range prof.Columns {
		if col.MissingRate == 0 && prof.RowCount > 0 {
			suggestions = append(suggestions, ports.SuggestedRule{
				Spec:        rules.Spec{Type: rules.TypeNotNull, Column: col.Name},
				Description: fmt.Sprintf("heuristic: %s had no missing values in the sample", col.Name),
			})
		}

		if col.Cardinality == prof.RowCount && prof.RowCount > 1 {
			suggestions = append(suggestions, ports.SuggestedRule{
				Spec:        rules.Spec{Type: rules.TypeUnique, Column: col.Name},
				Description: fmt.Sprintf("heuristic: %s was unique across the sample", col.Name),
			})
		}

		if col.DataType == "numeric" && col.Min != nil && col.Max != nil {
			suggestions = append(suggestions, ports.SuggestedRule{
				Spec: rules.Spec{
					Type:   rules.TypeBetween,
					Column: col.Name,
					Kwargs: map[string]interface{}{"min_value": *col.Min, "max_value": *col.Max},
				},
				Description: fmt.Sprintf("heuristic: observed range of %s", col.Name),
			})
		}

		if col.DataType == "text" && col.Cardinality > 0 && col.Cardinality <= lowCardinalityMax &&
			len(col.Samples) == col.Cardinality {
			valueSet := make([]interface{}, 0, len(col.Samples))
			for _, s := range col.Samples {
				valueSet = append(valueSet, s)
			}
			suggestions = append(suggestions, ports.SuggestedRule{
				Spec: rules.Spec{
					Type:   rules.TypeInSet,
					Column: col.Name,
					Kwargs: map[string]interface{}{"value_set": valueSet},
				},
				Description: fmt.Sprintf("heuristic: %s has low cardinality", col.Name),
			})
		}
	}

	return suggestions, nil
}
