package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goexpect/domain/core"
	"goexpect/domain/validation"
	"goexpect/ports"
)

// RunRecorder keeps completed runs in memory. Used for development and as
// the default store when no database is configured.
type RunRecorder struct {
	mu   sync.RWMutex
	runs map[core.RunID]*validation.Run
}

// NewRunRecorder creates an empty in-memory run store.
func NewRunRecorder() *RunRecorder {
	return &RunRecorder{runs: make(map[core.RunID]*validation.Run)}
}

var _ ports.RunRecorder = (*RunRecorder)(nil)

func (r *RunRecorder) Record(ctx context.Context, run *validation.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *run
	r.runs[run.ID] = &copied
	return nil
}

func (r *RunRecorder) GetRun(ctx context.Context, id core.RunID) (*validation.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	copied := *run
	return &copied, nil
}

func (r *RunRecorder) ListRuns(ctx context.Context, limit int) ([]*validation.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*validation.Run, 0, len(r.runs))
	for _, run := range r.runs {
		copied := *run
		runs = append(runs, &copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].RunTime.After(runs[j].RunTime)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
