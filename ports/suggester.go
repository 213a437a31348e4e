package ports

import (
	"context"

	"goexpect/domain/profile"
	"goexpect/domain/rules"
)

// SuggestedRule is a candidate rule produced from a data profile.
type SuggestedRule struct {
	Spec        rules.Spec `json:"spec"`
	Description string     `json:"description"`
}

// RuleSuggester proposes candidate rules for a profiled dataset.
type RuleSuggester interface {
	SuggestRules(ctx context.Context, prof profile.TableProfile) ([]SuggestedRule, error)
}
