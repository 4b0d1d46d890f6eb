package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/clauseguard/internal/model"
)

type markdownRenderer struct {
	opts Options
}

func (m *markdownRenderer) Render(_ context.Context, w io.Writer, r *model.AssessmentResult) error {
	v := buildView(r, m.opts)
	bw := bufio.NewWriter(w)

	bw.WriteString("# Contract Risk Assessment Report\n\n")
	fmt.Fprintf(bw, "- **Document:** %s\n", mdEscape(r.DocumentName))
	fmt.Fprintf(bw, "- **Language:** %s\n", v.LanguageName)
	fmt.Fprintf(bw, "- **Generated:** %s\n\n", v.Generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "## Score: %d/100 (Grade %s)\n\n", r.Score, r.Grade)
	fmt.Fprintf(bw, "> %s\n\n", r.Recommendation)

	bw.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(bw, "| Clauses analyzed | %d |\n", r.Metrics.Clauses)
	fmt.Fprintf(bw, "| Risky clauses | %d |\n", r.Metrics.RiskyClauses)
	for _, c := range v.Counts {
		fmt.Fprintf(bw, "| %s risk | %d |\n", c.Severity.Title(), c.Count)
	}
	fmt.Fprintf(bw, "| Risk density (per 1000 words) | %.1f |\n\n", r.Metrics.Density)

	bw.WriteString("## Findings\n\n")
	if len(v.Findings) == 0 {
		bw.WriteString("No risky clauses detected.\n\n")
	}
	for _, f := range v.Findings {
		fmt.Fprintf(bw, "### Clause %d: %s\n\n", f.Number, strings.Join(labels(f.Matches), ", "))
		fmt.Fprintf(bw, "> %s\n\n", strings.ReplaceAll(mdEscape(f.Text), "\n", "\n> "))
		for _, cm := range f.Matches {
			fmt.Fprintf(bw, "- **%s**: %s risk\n", cm.CategoryLabel, cm.Severity.Title())
		}
		bw.WriteString("\n")
		if e := f.Explanation; e != nil {
			writeMDSection(bw, "Meaning", e.Meaning)
			writeMDSection(bw, "Risk", e.Risk)
			writeMDSection(bw, "Who benefits", e.Beneficiary)
			writeMDSection(bw, "Recommendation", e.Recommendation)
			if e.Notice != "" {
				fmt.Fprintf(bw, "_%s_\n\n", e.Notice)
			}
		}
	}

	if len(r.Warnings) > 0 {
		bw.WriteString("## Warnings\n\n")
		for _, warn := range r.Warnings {
			fmt.Fprintf(bw, "- %s\n", warn)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func writeMDSection(w io.StringWriter, title, body string) {
	if body == "" {
		return
	}
	w.WriteString("**" + title + ":** " + strings.ReplaceAll(body, "\n", "  \n") + "\n\n")
}

var mdReplacer = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`)

func mdEscape(s string) string { return mdReplacer.Replace(s) }
