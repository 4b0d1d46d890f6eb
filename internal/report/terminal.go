package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raysh454/clauseguard/internal/model"
)

var (
	termTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	termMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	termLabel = lipgloss.NewStyle().Bold(true)
	termBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	termNote  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#E5C07B"))
)

var severityColors = map[model.Severity]lipgloss.Color{
	model.SeverityCritical: lipgloss.Color("#B71C1C"),
	model.SeverityHigh:     lipgloss.Color("#FF6B6B"),
	model.SeverityMedium:   lipgloss.Color("#FFA94D"),
	model.SeverityLow:      lipgloss.Color("#FFD43B"),
}

var bandColors = map[string]lipgloss.Color{
	"low":      lipgloss.Color("#51CF66"),
	"moderate": lipgloss.Color("#FFA94D"),
	"high":     lipgloss.Color("#FF6B6B"),
}

type terminalRenderer struct {
	opts Options
}

func (t *terminalRenderer) Render(_ context.Context, w io.Writer, r *model.AssessmentResult) error {
	v := buildView(r, t.opts)
	width := max(40, t.opts.Width)
	inner := width - 4

	header := lipgloss.JoinVertical(lipgloss.Left,
		termTitle.Render("Contract Risk Assessment"),
		termMuted.Render(fmt.Sprintf("%s · %s", r.DocumentName, v.LanguageName)),
	)

	score := lipgloss.NewStyle().Bold(true).Foreground(bandColors[r.Band]).
		Render(fmt.Sprintf("%d/100  Grade %s", r.Score, r.Grade))
	counts := make([]string, 0, len(v.Counts))
	for _, c := range v.Counts {
		counts = append(counts, lipgloss.NewStyle().Foreground(severityColors[c.Severity]).
			Render(fmt.Sprintf("%s %d", c.Severity.Title(), c.Count)))
	}
	summary := termBox.BorderForeground(bandColors[r.Band]).Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left,
		score,
		fmt.Sprintf("%d clauses, %d risky", r.Metrics.Clauses, r.Metrics.RiskyClauses),
		strings.Join(counts, "  "),
		r.Recommendation,
	))

	blocks := []string{header, summary}
	if len(v.Findings) == 0 {
		blocks = append(blocks, termMuted.Render("No risky clauses detected."))
	}
	for _, f := range v.Findings {
		blocks = append(blocks, t.renderFinding(f, inner))
	}
	for _, warn := range r.Warnings {
		blocks = append(blocks, termNote.Width(width).Render("! "+warn))
	}

	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, blocks...)+"\n")
	return err
}

func (t *terminalRenderer) renderFinding(f finding, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(severityColors[f.Worst]).
		Render(fmt.Sprintf("Clause %d · %s", f.Number, f.LabelList()))
	lines := []string{title, termMuted.Render(f.Text)}
	if e := f.Explanation; e != nil {
		for _, s := range []struct{ label, body string }{
			{"Meaning", e.Meaning},
			{"Risk", e.Risk},
			{"Who benefits", e.Beneficiary},
			{"Recommendation", e.Recommendation},
		} {
			if s.body != "" {
				lines = append(lines, termLabel.Render(s.label+": ")+s.body)
			}
		}
		if e.Notice != "" {
			lines = append(lines, termNote.Render(e.Notice))
		}
	}
	return termBox.BorderForeground(severityColors[f.Worst]).Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
