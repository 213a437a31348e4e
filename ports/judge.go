package ports

import "context"

// SemanticJudge classifies a deduplicated set of values against a
// natural-language condition in one batched call. The returned map is keyed
// by the exact string form of each submitted value; a value absent from the
// map must be treated as invalid by callers (fail-closed).
//
// Implementations return core.ErrJudgeUnavailable (wrapped) when the external
// classifier cannot be reached or authorized; they never return disguised
// all-invalid data in that case.
type SemanticJudge interface {
	JudgeValues(ctx context.Context, condition string, values []string) (map[string]bool, error)
}
