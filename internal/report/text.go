package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/clauseguard/internal/model"
)

var (
	rule     = strings.Repeat("=", 60)
	thinRule = strings.Repeat("-", 60)
)

type textRenderer struct {
	opts Options
}

func (t *textRenderer) Render(_ context.Context, w io.Writer, r *model.AssessmentResult) error {
	v := buildView(r, t.opts)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\nCONTRACT RISK ASSESSMENT REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(bw, "Generated: %s\n", v.Generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Document: %s\n", r.DocumentName)
	fmt.Fprintf(bw, "Language: %s\n", v.LanguageName)
	fmt.Fprintf(bw, "\nRISK SCORE: %d/100 (Grade: %s)\n", r.Score, r.Grade)
	fmt.Fprintf(bw, "Total Clauses Analyzed: %d\n", r.Metrics.Clauses)
	fmt.Fprintf(bw, "Risky Clauses Found: %d\n", r.Metrics.RiskyClauses)
	for _, c := range v.Counts {
		fmt.Fprintf(bw, "  - %s Risk: %d\n", c.Severity.Title(), c.Count)
	}

	fmt.Fprintf(bw, "\n%s\nDETAILED FINDINGS\n%s\n\n", rule, rule)
	if len(v.Findings) == 0 {
		bw.WriteString("No risky clauses detected.\n")
	}
	for _, f := range v.Findings {
		fmt.Fprintf(bw, "\nCLAUSE #%d\n%s\n", f.Number, thinRule)
		fmt.Fprintf(bw, "Text: %s\n\n", f.Text)
		fmt.Fprintf(bw, "Risks Identified: %s\n", strings.Join(labels(f.Matches), ", "))
		for _, m := range f.Matches {
			fmt.Fprintf(bw, "  - %s: %s Risk\n", m.CategoryLabel, m.Severity.Title())
		}
		if e := f.Explanation; e != nil {
			bw.WriteString("\n")
			writeTextSection(bw, "Meaning", e.Meaning)
			writeTextSection(bw, "Risk", e.Risk)
			writeTextSection(bw, "Who Benefits", e.Beneficiary)
			writeTextSection(bw, "Recommendation", e.Recommendation)
			if e.Notice != "" {
				fmt.Fprintf(bw, "Note: %s\n", e.Notice)
			}
		}
		bw.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(bw, "\n%s\nWARNINGS\n%s\n", rule, rule)
		for _, warn := range r.Warnings {
			fmt.Fprintf(bw, "- %s\n", warn)
		}
	}

	fmt.Fprintf(bw, "\n%s\nRECOMMENDATION\n%s\n%s\n", rule, rule, r.Recommendation)
	return bw.Flush()
}

func writeTextSection(w io.StringWriter, title, body string) {
	if body == "" {
		return
	}
	w.WriteString(title + ": " + strings.ReplaceAll(body, "\n", "\n  ") + "\n")
}
