package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"goexpect/ai"
	"goexpect/domain/profile"
	"goexpect/domain/rules"
	"goexpect/models"
	"goexpect/ports"
)

// suggestResponse is the wire schema for rule suggestions.
type suggestResponse struct {
	Suggestions []struct {
		Column      string                 `json:"column"`
		Type        string                 `json:"type"`
		Kwargs      map[string]interface{} `json:"kwargs"`
		Description string                 `json:"description"`
	} `json:"suggestions"`
}

// SuggesterAdapter implements ports.RuleSuggester via the LLM, validating
// every suggestion against the rule registry before returning it. When no
// API key is configured it falls back to heuristic suggestions and labels
// them as such.
type SuggesterAdapter struct {
	client    *ai.StructuredClient[suggestResponse]
	registry  *rules.Registry
	heuristic ports.RuleSuggester
}

// NewSuggesterAdapter creates the rule suggester adapter.
func NewSuggesterAdapter(config *models.AIConfig, registry *rules.Registry, heuristic ports.RuleSuggester) *SuggesterAdapter {
	return &SuggesterAdapter{
		client:    ai.NewStructuredClient[suggestResponse](config),
		registry:  registry,
		heuristic: heuristic,
	}
}

// SuggestRules proposes candidate rules for a profiled dataset.
func (a *SuggesterAdapter) SuggestRules(ctx context.Context, prof profile.TableProfile) ([]ports.SuggestedRule, error) {
	if !a.client.Configured() {
		log.Printf("[SuggesterAdapter] no API key configured, using heuristic suggestions")
		return a.heuristic.SuggestRules(ctx, prof)
	}

	profileJSON, err := json.Marshal(prof)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	columns := make([]string, 0, len(prof.Columns))
	for _, col := range prof.Columns {
		columns = append(columns, col.Name)
	}

	resp, err := a.client.GetJsonResponse(ctx, ai.BuildSuggestPrompt(profileJSON, columns), ai.SuggestSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("suggestion call failed: %w", err)
	}

	suggestions := make([]ports.SuggestedRule, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		spec := rules.Spec{Type: s.Type, Column: s.Column, Kwargs: s.Kwargs}
		if _, err := a.registry.Parse(spec); err != nil {
			// Drop malformed model output rather than handing callers a
			// rule set that would fail fast at run time.
			log.Printf("[SuggesterAdapter] dropping invalid suggestion %s: %v", s.Type, err)
			continue
		}
		suggestions = append(suggestions, ports.SuggestedRule{Spec: spec, Description: s.Description})
	}
	return suggestions, nil
}
