package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"goexpect/domain/batch"
	"goexpect/domain/core"
	"goexpect/domain/dataset"
	"goexpect/domain/rules"
	"goexpect/domain/validation"
	"goexpect/ports"
)

type stubResolver struct {
	batch *batch.Batch
	err   error
}

func (s *stubResolver) Resolve(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*batch.Batch, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func (s *stubResolver) Preview(ctx context.Context, desc dataset.Descriptor, rowLimit int) (*ports.Preview, error) {
	return nil, errors.New("not implemented")
}

type stubJudge struct {
	verdicts map[string]bool
	err      error
	block    chan struct{}
}

func (s *stubJudge) JudgeValues(ctx context.Context, condition string, values []string) (map[string]bool, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.verdicts, nil
}

type memRecorder struct {
	mu   sync.Mutex
	runs []*validation.Run
}

func (m *memRecorder) Record(ctx context.Context, run *validation.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRecorder) GetRun(ctx context.Context, id core.RunID) (*validation.Run, error) {
	return nil, core.ErrRunNotFound
}

func (m *memRecorder) ListRuns(ctx context.Context, limit int) ([]*validation.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs, nil
}

func cityBatch() *batch.Batch {
	return batch.New([]string{"city", "age"}, []batch.Row{
		{"city": "paris", "age": float64(30)},
		{"city": "gotham", "age": float64(40)},
	})
}

func newService(resolver ports.SourceResolver, judge ports.SemanticJudge, recorder ports.RunRecorder) *ValidationService {
	return NewValidationService(resolver, judge, recorder, rules.NewRegistry())
}

func TestRunUnknownRuleTypeAbortsBeforeResolution(t *testing.T) {
	resolver := &stubResolver{err: errors.New("resolver must not be called")}
	svc := newService(resolver, &stubJudge{}, &memRecorder{})

	_, err := svc.Run(context.Background(), "suite", dataset.Descriptor{FilePath: "x.csv"}, []rules.Spec{
		{Type: "expect_column_to_levitate", Column: "age"},
	})

	if !errors.Is(err, core.ErrUnknownRuleType) {
		t.Fatalf("err = %v, want ErrUnknownRuleType", err)
	}
}

func TestRunSourceErrorAborts(t *testing.T) {
	resolver := &stubResolver{err: core.NewSourceUnavailableError("db", errors.New("refused"))}
	recorder := &memRecorder{}
	svc := newService(resolver, &stubJudge{}, recorder)

	_, err := svc.Run(context.Background(), "suite", dataset.Descriptor{}, []rules.Spec{
		{Type: rules.TypeNotNull, Column: "age"},
	})

	if !errors.Is(err, core.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if len(recorder.runs) != 0 {
		t.Error("failed runs must not be recorded")
	}
}

func TestRunMixedRules(t *testing.T) {
	judge := &stubJudge{verdicts: map[string]bool{"paris": true, "gotham": false}}
	recorder := &memRecorder{}
	svc := newService(&stubResolver{batch: cityBatch()}, judge, recorder)

	run, err := svc.Run(context.Background(), "suite", dataset.Descriptor{FilePath: "x.csv"}, []rules.Spec{
		{Type: rules.TypeNotNull, Column: "age"},
		{Type: rules.TypeSemanticCheck, Column: "city", Kwargs: map[string]interface{}{"prompt": "Is a real city"}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if run.Score != 50.0 || run.Success {
		t.Errorf("got score=%v success=%v, want 50/false", run.Score, run.Success)
	}
	if len(run.Result.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2 in rule order", len(run.Result.Outcomes))
	}
	// Outcome order follows the submitted rule order regardless of which
	// evaluator finished first.
	if run.Result.Outcomes[0].Meta["rule_type"] != rules.TypeNotNull {
		t.Errorf("outcome order not preserved: %v", run.Result.Outcomes[0].Meta)
	}
	if len(recorder.runs) != 1 {
		t.Errorf("recorded runs = %d, want 1", len(recorder.runs))
	}
}

func TestRunJudgeUnavailableIsPerRuleFailure(t *testing.T) {
	judge := &stubJudge{err: fmt.Errorf("%w: timeout", core.ErrJudgeUnavailable)}
	svc := newService(&stubResolver{batch: cityBatch()}, judge, &memRecorder{})

	run, err := svc.Run(context.Background(), "suite", dataset.Descriptor{FilePath: "x.csv"}, []rules.Spec{
		{Type: rules.TypeNotNull, Column: "age"},
		{Type: rules.TypeSemanticCheck, Column: "city", Kwargs: map[string]interface{}{"prompt": "Is a real city"}},
	})
	if err != nil {
		t.Fatalf("judge failure must degrade per-rule, not abort the run: %v", err)
	}

	if run.Score != 50.0 || run.Success {
		t.Errorf("got score=%v success=%v, want 50/false", run.Score, run.Success)
	}
	semantic := run.Result.Outcomes[1]
	if semantic.Success || semantic.Meta["error"] == nil {
		t.Errorf("semantic outcome must fail with meta.error, got %+v", semantic)
	}
	deterministic := run.Result.Outcomes[0]
	if !deterministic.Success {
		t.Error("deterministic outcome must still be reported")
	}
}

func TestRunEmptyRuleSet(t *testing.T) {
	svc := newService(&stubResolver{batch: cityBatch()}, &stubJudge{}, &memRecorder{})

	run, err := svc.Run(context.Background(), "suite", dataset.Descriptor{FilePath: "x.csv"}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !run.Success || run.Score != 0.0 {
		t.Errorf("got success=%v score=%v, want true/0.0", run.Success, run.Score)
	}
	if len(run.Result.Outcomes) != 0 {
		t.Errorf("outcomes = %v, want empty", run.Result.Outcomes)
	}
}

func TestRunCancellationDiscardsPartialResults(t *testing.T) {
	judge := &stubJudge{block: make(chan struct{})}
	recorder := &memRecorder{}
	svc := newService(&stubResolver{batch: cityBatch()}, judge, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(ctx, "suite", dataset.Descriptor{FilePath: "x.csv"}, []rules.Spec{
			{Type: rules.TypeNotNull, Column: "age"},
			{Type: rules.TypeSemanticCheck, Column: "city", Kwargs: map[string]interface{}{"prompt": "Is a real city"}},
		})
		done <- err
	}()

	cancel()
	err := <-done
	if err == nil {
		t.Fatal("cancelled run must fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
	if len(recorder.runs) != 0 {
		t.Error("partial results must never be persisted")
	}
}
