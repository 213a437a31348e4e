package app

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"goexpect/domain/batch"
	"goexpect/domain/core"
	"goexpect/domain/dataset"
	"goexpect/domain/rules"
	"goexpect/domain/validation"
	"goexpect/internal/evaluation"
	"goexpect/ports"
)

// DefaultRowLimit bounds how many rows a run materializes when the caller
// does not ask for a full scan.
const DefaultRowLimit = 1000

// DefaultSemanticConcurrency caps in-flight judge calls to respect external
// rate limits.
const DefaultSemanticConcurrency = 4

// ValidationService executes validation runs: it resolves the dataset
// descriptor, evaluates the rule set against the batch, aggregates the
// outcomes, and records the completed run.
//
// Every run gets fresh state; the service itself holds only read-only
// collaborators, so concurrent runs share nothing mutable.
type ValidationService struct {
	resolver ports.SourceResolver
	judge    ports.SemanticJudge
	recorder ports.RunRecorder
	registry *rules.Registry

	rowLimit            int
	semanticConcurrency int64
}

// NewValidationService creates a validation service.
func NewValidationService(resolver ports.SourceResolver, judge ports.SemanticJudge, recorder ports.RunRecorder, registry *rules.Registry) *ValidationService {
	return &ValidationService{
		resolver:            resolver,
		judge:               judge,
		recorder:            recorder,
		registry:            registry,
		rowLimit:            DefaultRowLimit,
		semanticConcurrency: DefaultSemanticConcurrency,
	}
}

// SetRowLimit overrides the resolution row bound. Zero or negative means a
// full table scan.
func (s *ValidationService) SetRowLimit(limit int) {
	s.rowLimit = limit
}

// Run executes one validation run end to end.
//
// Rule-set and source errors abort the run before any evaluation - there is
// nothing to aggregate. Per-rule evaluation errors are isolated: they become
// failing outcomes and the rest of the run proceeds. Cancellation aborts
// outstanding work and discards partial results; a partial run is never
// recorded. The caller always receives either a complete run or an error.
func (s *ValidationService) Run(ctx context.Context, suiteID core.SuiteID, desc dataset.Descriptor, specs []rules.Spec) (*validation.Run, error) {
	started := time.Now()

	// Reject the whole rule set up front: an unknown rule type is a caller
	// mistake, not something to skip past.
	parsed, err := s.registry.ParseAll(specs)
	if err != nil {
		return nil, err
	}

	b, err := s.resolver.Resolve(ctx, desc, s.rowLimit)
	if err != nil {
		return nil, err
	}
	log.Printf("[ValidationService] resolved batch: %d columns, %d rows, %d rules",
		len(b.Columns), b.RowCount(), len(parsed))

	outcomes := make([]validation.RuleOutcome, len(parsed))

	// Deterministic rules are CPU-bound; semantic rules block on network
	// calls. Each class gets its own bound so a slow judge never starves
	// local evaluation, and vice versa.
	cpuSem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	judgeSem := semaphore.NewWeighted(s.semanticConcurrency)

	eg, evalCtx := errgroup.WithContext(ctx)
	for i, rule := range parsed {
		i, rule := i, rule
		eg.Go(func() error {
			sem := cpuSem
			if rule.Strategy == rules.StrategySemantic {
				sem = judgeSem
			}
			if err := sem.Acquire(evalCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			outcomes[i] = s.evaluateRule(evalCtx, rule, b)
			return evalCtx.Err()
		})
	}

	if err := eg.Wait(); err != nil {
		// Cancelled mid-flight: partial results are discarded, never
		// aggregated or persisted.
		return nil, fmt.Errorf("validation run aborted: %w", err)
	}

	result := evaluation.Aggregate(outcomes)
	run := &validation.Run{
		ID:      core.NewRunID(),
		SuiteID: suiteID,
		Success: result.Success,
		Score:   result.Score,
		Result:  result,
		RunTime: time.Now().UTC(),
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	log.Printf("[ValidationService] run %s complete: success=%v score=%.1f (%v)",
		run.ID, run.Success, run.Score, time.Since(started))
	return run, nil
}

// evaluateRule dispatches one rule to its evaluator, converting panics and
// evaluator errors into failing outcomes so one bad rule never aborts the
// whole run.
func (s *ValidationService) evaluateRule(ctx context.Context, rule rules.Rule, b *batch.Batch) (outcome validation.RuleOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ValidationService] rule %s panicked: %v", rule.ID, r)
			outcome = failingOutcome(rule, fmt.Sprintf("%v: %v", core.ErrEvaluation, r))
		}
	}()

	if rule.Strategy == rules.StrategySemantic {
		return evaluation.EvaluateSemantic(ctx, s.judge, rule, b)
	}

	outcome, err := evaluation.EvaluateDeterministic(rule, b)
	if err != nil {
		return failingOutcome(rule, err.Error())
	}
	return outcome
}

func failingOutcome(rule rules.Rule, errText string) validation.RuleOutcome {
	return validation.RuleOutcome{
		RuleID:           rule.ID,
		Success:          false,
		UnexpectedSample: []interface{}{},
		Meta: map[string]interface{}{
			"rule_type": rule.Type,
			"error":     errText,
		},
	}
}
