package ports

import (
	"context"

	"goexpect/domain/core"
	"goexpect/domain/validation"
)

// RunRecorder persists completed validation runs. Only complete runs are ever
// recorded; the engine discards partial results on cancellation.
type RunRecorder interface {
	Record(ctx context.Context, run *validation.Run) error
	GetRun(ctx context.Context, id core.RunID) (*validation.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*validation.Run, error)
}
