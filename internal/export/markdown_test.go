package export

import (
	"strings"
	"testing"
	"time"

	"goexpect/domain/validation"
)

func sampleRun() *validation.Run {
	return &validation.Run{
		ID:      "run-7",
		SuiteID: "orders",
		Success: false,
		Score:   50.0,
		Result: validation.RunResult{
			Success: false,
			Score:   50.0,
			Outcomes: []validation.RuleOutcome{
				{
					RuleID:           "rule_0_not_null",
					Success:          true,
					ObservedValue:    0,
					UnexpectedSample: []interface{}{},
				},
				{
					RuleID:            "rule_1_between",
					Success:           false,
					ObservedValue:     map[string]interface{}{"min": 10.0, "max": 200.0},
					UnexpectedCount:   2,
					UnexpectedPercent: 50.0,
					UnexpectedSample:  []interface{}{nil, 200.0},
					Meta:              map[string]interface{}{"error": "value out of range"},
				},
			},
		},
		RunTime: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdownReport(t *testing.T) {
	md := Markdown(sampleRun())

	for _, want := range []string{
		"# Validation Run run-7",
		"**Status**: FAILED",
		"**Score**: 50.0",
		"rule_0_not_null",
		"rule_1_between",
		"Unexpected: 2 (50.00%)",
		"`200`",
		"Error: value out of range",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestHTMLRendersHeadings(t *testing.T) {
	out := string(HTML(sampleRun()))

	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<h2") {
		t.Errorf("expected rendered headings, got: %s", out[:min(len(out), 200)])
	}
	if !strings.Contains(out, "rule_1_between") {
		t.Error("rule section missing from HTML")
	}
}
