package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: validation run", ErrNotFound)

	// Rule set errors (abort the whole run before evaluation)
	ErrUnknownRuleType = errors.New("unknown rule type")
	ErrInvalidRule     = errors.New("invalid rule specification")

	// Source resolution errors (abort the whole run, nothing to aggregate)
	ErrSourceUnavailable  = errors.New("data source unavailable")
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	ErrDriverUnavailable  = errors.New("database driver not installed")

	// Evaluation errors (isolated per rule, folded into the aggregate as failures)
	ErrJudgeUnavailable = errors.New("semantic judge unavailable")
	ErrEvaluation       = errors.New("rule evaluation failed")
)

// Error constructors with context
func NewUnknownRuleTypeError(ruleType string) error {
	return fmt.Errorf("%w: %q", ErrUnknownRuleType, ruleType)
}

func NewInvalidRuleError(ruleType string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRule, ruleType, reason)
}

func NewSourceUnavailableError(source string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, source, err)
}

func NewUnsupportedDialectError(dialect string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsRuleSetError(err error) bool {
	return errors.Is(err, ErrUnknownRuleType) || errors.Is(err, ErrInvalidRule)
}

func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrUnsupportedDialect) ||
		errors.Is(err, ErrDriverUnavailable)
}

func IsJudgeError(err error) bool {
	return errors.Is(err, ErrJudgeUnavailable)
}
