package llm

import (
	"context"
	"fmt"

	"goexpect/ai"
	"goexpect/domain/core"
	"goexpect/models"
)

// JudgeResponse is the wire schema the classifier must return.
type JudgeResponse struct {
	Results []JudgeVerdict `json:"results"`
}

// JudgeVerdict is one per-value classification.
type JudgeVerdict struct {
	Value   string `json:"value"`
	IsValid bool   `json:"isValid"`
}

// JudgeAdapter implements ports.SemanticJudge on top of the structured LLM
// client. One call classifies the whole deduplicated value set, so the
// external call count is bounded per rule, not per row.
type JudgeAdapter struct {
	client *ai.StructuredClient[JudgeResponse]
}

// NewJudgeAdapter creates the semantic judge adapter.
func NewJudgeAdapter(config *models.AIConfig) *JudgeAdapter {
	return &JudgeAdapter{client: ai.NewStructuredClient[JudgeResponse](config)}
}

// JudgeValues submits the condition and distinct values in one batched call
// and returns the per-value verdict map. A missing API key or an unreachable
// service is a typed ErrJudgeUnavailable, never disguised all-invalid data.
func (a *JudgeAdapter) JudgeValues(ctx context.Context, condition string, values []string) (map[string]bool, error) {
	if !a.client.Configured() {
		return nil, fmt.Errorf("%w: no API key configured", core.ErrJudgeUnavailable)
	}

	prompt := ai.BuildJudgePrompt(condition, values)
	resp, err := a.client.GetJsonResponse(ctx, prompt, ai.JudgeSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrJudgeUnavailable, err)
	}

	verdicts := make(map[string]bool, len(resp.Results))
	for _, item := range resp.Results {
		verdicts[item.Value] = item.IsValid
	}
	return verdicts, nil
}
