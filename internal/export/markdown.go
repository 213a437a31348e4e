// Package export renders completed validation runs as shareable reports.
package export

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goexpect/domain/validation"
)

// Markdown renders a run as a markdown report: a summary header followed by
// one section per rule outcome.
func Markdown(run *validation.Run) string {
	var b strings.Builder

	status := "FAILED"
	if run.Success {
		status = "PASSED"
	}

	fmt.Fprintf(&b, "# Validation Run %s\n\n", run.ID)
	fmt.Fprintf(&b, "- **Status**: %s\n", status)
	fmt.Fprintf(&b, "- **Score**: %.1f\n", run.Score)
	fmt.Fprintf(&b, "- **Suite**: %s\n", run.SuiteID)
	fmt.Fprintf(&b, "- **Run time**: %s\n", run.RunTime.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Rules**: %d\n\n", len(run.Result.Outcomes))

	for _, outcome := range run.Result.Outcomes {
		writeOutcome(&b, outcome)
	}

	return b.String()
}

func writeOutcome(b *strings.Builder, outcome validation.RuleOutcome) {
	marker := "❌"
	if outcome.Success {
		marker = "✅"
	}
	fmt.Fprintf(b, "## %s %s\n\n", marker, outcome.RuleID)

	if outcome.ObservedValue != nil {
		fmt.Fprintf(b, "- Observed: %v\n", outcome.ObservedValue)
	}
	fmt.Fprintf(b, "- Unexpected: %d (%.2f%%)\n", outcome.UnexpectedCount, outcome.UnexpectedPercent)

	if len(outcome.UnexpectedSample) > 0 {
		samples := make([]string, 0, len(outcome.UnexpectedSample))
		for _, v := range outcome.UnexpectedSample {
			samples = append(samples, fmt.Sprintf("`%v`", v))
		}
		fmt.Fprintf(b, "- Sample: %s\n", strings.Join(samples, ", "))
	}
	if errText, ok := outcome.Meta["error"]; ok {
		fmt.Fprintf(b, "- Error: %v\n", errText)
	}
	b.WriteString("\n")
}

// HTML renders the markdown report to a standalone HTML fragment.
func HTML(run *validation.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(Markdown(run)))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	return markdown.Render(doc, renderer)
}
