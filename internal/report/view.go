package report

import (
	"sort"
	"strings"
	"time"

	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/matcher"
	"github.com/raysh454/clauseguard/internal/model"
)

// view is the format-independent shape every human-readable renderer
// draws from.
type view struct {
	Result       *model.AssessmentResult
	Generated    time.Time
	LanguageName string
	Counts       []severityCount
	Findings     []finding
}

type severityCount struct {
	Severity model.Severity
	Count    int
}

type finding struct {
	// Number is 1-based.
	Number      int
	Text        string
	Matches     []model.ClauseMatch
	Explanation *model.Explanation
	Worst       model.Severity
}

func buildView(r *model.AssessmentResult, opts Options) view {
	v := view{
		Result:       r,
		Generated:    opts.Now(),
		LanguageName: language.DisplayName(r.Language),
	}
	// Most severe first.
	for i := len(model.Severities) - 1; i >= 0; i-- {
		s := model.Severities[i]
		v.Counts = append(v.Counts, severityCount{Severity: s, Count: r.Metrics.CountsBySeverity[s]})
	}

	texts := make(map[int]string, len(r.Clauses))
	for _, c := range r.Clauses {
		texts[c.Index] = c.Text
	}
	byClause := r.MatchesByClause()
	indexes := make([]int, 0, len(byClause))
	for idx := range byClause {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		ms := byClause[idx]
		text, ok := texts[idx]
		if ok {
			text = matcher.Excerpt(text, opts.PreviewChars)
		} else {
			text = ms[0].Excerpt
		}
		f := finding{Number: idx + 1, Text: text, Matches: ms}
		for _, m := range ms {
			if m.Severity.Weight() > f.Worst.Weight() {
				f.Worst = m.Severity
			}
			if f.Explanation == nil {
				f.Explanation = m.Explanation
			}
		}
		v.Findings = append(v.Findings, f)
	}
	return v
}

func labels(ms []model.ClauseMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.CategoryLabel
	}
	return out
}

// LabelList joins the category labels of the finding.
func (f finding) LabelList() string {
	return strings.Join(labels(f.Matches), ", ")
}
