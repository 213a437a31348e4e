package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"goexpect/domain/batch"
	"goexpect/domain/core"
)

// parseFunc validates a spec's kwargs and fills the matching argument struct.
type parseFunc func(spec Spec, rule *Rule) error

type registration struct {
	strategy Strategy
	parse    parseFunc
}

// Registry maps a rule's declared type string to its evaluation strategy and
// kwargs parser. It is populated once at startup and read-only afterwards;
// no per-run state lives here.
type Registry struct {
	kinds map[string]registration
}

// NewRegistry returns a registry with all built-in rule kinds.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]registration)}
	r.register(TypeNotNull, StrategyDeterministic, parseNotNull)
	r.register(TypeUnique, StrategyDeterministic, parseUnique)
	r.register(TypeInSet, StrategyDeterministic, parseInSet)
	r.register(TypeBetween, StrategyDeterministic, parseBetween)
	r.register(TypeMatchRegex, StrategyDeterministic, parseRegex)
	r.register(TypeRowCount, StrategyDeterministic, parseRowCount)
	r.register(TypeSemanticCheck, StrategySemantic, parseSemantic)
	return r
}

func (r *Registry) register(ruleType string, strategy Strategy, parse parseFunc) {
	r.kinds[ruleType] = registration{strategy: strategy, parse: parse}
}

// Register adds a custom deterministic rule kind. Custom kinds keep their raw
// kwargs bag; evaluators for them must be wired separately.
func (r *Registry) Register(ruleType string, parse parseFunc) {
	r.register(ruleType, StrategyDeterministic, parse)
}

// Classify returns the evaluation strategy for a rule type.
func (r *Registry) Classify(ruleType string) (Strategy, error) {
	reg, ok := r.kinds[ruleType]
	if !ok {
		return "", core.NewUnknownRuleTypeError(ruleType)
	}
	return reg.strategy, nil
}

// ParseAll validates a full rule set up front. Any unknown type or malformed
// kwargs rejects the whole set before evaluation begins - a bad rule is never
// silently skipped.
func (r *Registry) ParseAll(specs []Spec) ([]Rule, error) {
	parsed := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		rule, err := r.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if rule.ID == "" {
			rule.ID = fmt.Sprintf("rule_%d_%s", i, rule.Type)
		}
		parsed = append(parsed, rule)
	}
	return parsed, nil
}

// Parse validates a single rule spec against the registry.
func (r *Registry) Parse(spec Spec) (Rule, error) {
	reg, ok := r.kinds[spec.Type]
	if !ok {
		return Rule{}, core.NewUnknownRuleTypeError(spec.Type)
	}

	rule := Rule{
		ID:       spec.ID,
		Type:     spec.Type,
		Column:   spec.Column,
		Strategy: reg.strategy,
		Kwargs:   spec.Kwargs,
	}
	if err := reg.parse(spec, &rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// --- built-in kwargs parsers ---

func parseNotNull(spec Spec, rule *Rule) error {
	if err := requireColumn(spec); err != nil {
		return err
	}
	mostly, err := parseMostly(spec)
	if err != nil {
		return err
	}
	rule.NotNull = &NotNullArgs{Mostly: mostly}
	return nil
}

func parseUnique(spec Spec, rule *Rule) error {
	if err := requireColumn(spec); err != nil {
		return err
	}
	mostly, err := parseMostly(spec)
	if err != nil {
		return err
	}
	rule.Unique = &UniqueArgs{Mostly: mostly}
	return nil
}

func parseInSet(spec Spec, rule *Rule) error {
	if err := requireColumn(spec); err != nil {
		return err
	}
	raw, ok := spec.Kwargs["value_set"]
	if !ok {
		return core.NewInvalidRuleError(spec.Type, "value_set kwarg is required")
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) == 0 {
		return core.NewInvalidRuleError(spec.Type, "value_set must be a non-empty array")
	}
	set := make([]batch.Value, 0, len(values))
	for _, v := range values {
		set = append(set, batch.Value(v))
	}
	mostly, err := parseMostly(spec)
	if err != nil {
		return err
	}
	rule.InSet = &InSetArgs{ValueSet: set, Mostly: mostly}
	return nil
}

func parseBetween(spec Spec, rule *Rule) error {
	if err := requireColumn(spec); err != nil {
		return err
	}
	min, err := optionalFloat(spec, "min_value")
	if err != nil {
		return err
	}
	max, err := optionalFloat(spec, "max_value")
	if err != nil {
		return err
	}
	if min == nil && max == nil {
		return core.NewInvalidRuleError(spec.Type, "min_value or max_value is required")
	}
	if min != nil && max != nil && *min > *max {
		return core.NewInvalidRuleError(spec.Type, "min_value must be <= max_value")
	}
	mostly, err := parseMostly(spec)
	if err != nil {
		return err
	}
	rule.Between = &BetweenArgs{Min: min, Max: max, Mostly: mostly}
	return nil
}

func parseRegex(spec Spec, rule *Rule) error {
	if err := requireColumn(spec); err != nil {
		return err
	}
	raw, ok := spec.Kwargs["regex"].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return core.NewInvalidRuleError(spec.Type, "regex kwarg is required")
	}
	pattern, err := regexp.Compile(raw)
	if err != nil {
		return core.NewInvalidRuleError(spec.Type, fmt.Sprintf("invalid regex %q: %v", raw, err))
	}
	mostly, err := parseMostly(spec)
	if err != nil {
		return err
	}
	rule.Regex = &RegexArgs{Pattern: pattern, Mostly: mostly}
	return nil
}

func parseRowCount(spec Spec, rule *Rule) error {
	min, err := optionalInt(spec, "min_value")
	if err != nil {
		return err
	}
	max, err := optionalInt(spec, "max_value")
	if err != nil {
		return err
	}
	if min == nil && max == nil {
		return core.NewInvalidRuleError(spec.Type, "min_value or max_value is required")
	}
	if min != nil && max != nil && *min > *max {
		return core.NewInvalidRuleError(spec.Type, "min_value must be <= max_value")
	}
	rule.RowCount = &RowCountArgs{Min: min, Max: max}
	return nil
}

func parseSemantic(spec Spec, rule *Rule) error {
	column := spec.Column
	if column == "" {
		// Some callers nest column inside kwargs for this kind.
		column, _ = spec.Kwargs["column"].(string)
	}
	if strings.TrimSpace(column) == "" {
		return core.NewInvalidRuleError(spec.Type, "column is required")
	}
	prompt, ok := spec.Kwargs["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		return core.NewInvalidRuleError(spec.Type, "prompt kwarg is required")
	}
	rule.Column = column
	rule.Semantic = &SemanticArgs{Prompt: prompt}
	return nil
}

// --- kwarg coercion helpers ---

func requireColumn(spec Spec) error {
	if strings.TrimSpace(spec.Column) == "" {
		return core.NewInvalidRuleError(spec.Type, "column is required")
	}
	return nil
}

// parseMostly reads the GX-style "mostly" tolerance: the minimum fraction of
// values that must pass, in (0, 1]. Absent means 1.0 (no tolerance).
func parseMostly(spec Spec) (float64, error) {
	raw, ok := spec.Kwargs["mostly"]
	if !ok {
		return 1.0, nil
	}
	mostly, err := coerceFloat(raw)
	if err != nil {
		return 0, core.NewInvalidRuleError(spec.Type, fmt.Sprintf("mostly: %v", err))
	}
	if mostly <= 0 || mostly > 1 {
		return 0, core.NewInvalidRuleError(spec.Type, "mostly must be in (0, 1]")
	}
	return mostly, nil
}

func optionalFloat(spec Spec, key string) (*float64, error) {
	raw, ok := spec.Kwargs[key]
	if !ok || raw == nil {
		return nil, nil
	}
	f, err := coerceFloat(raw)
	if err != nil {
		return nil, core.NewInvalidRuleError(spec.Type, fmt.Sprintf("%s: %v", key, err))
	}
	return &f, nil
}

func optionalInt(spec Spec, key string) (*int, error) {
	f, err := optionalFloat(spec, key)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	if float64(n) != *f {
		return nil, core.NewInvalidRuleError(spec.Type, fmt.Sprintf("%s must be an integer", key))
	}
	return &n, nil
}

func coerceFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", raw)
	}
}
