// Package assessment runs the contract analysis pipeline: extract, detect,
// match, explain and score.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/explain"
	"github.com/raysh454/clauseguard/internal/extract"
	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/matcher"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/scoring"
)

// ExplainMode selects which matches get explanations.
type ExplainMode string

const (
	ExplainAll  ExplainMode = "all"
	ExplainNone ExplainMode = "none"
)

// ParseExplainMode accepts "all", "none" and the empty string (all).
// "true"/"false" are accepted for form and query parameters.
func ParseExplainMode(s string) (ExplainMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "true", "yes", "1":
		return ExplainAll, nil
	case "none", "false", "no", "0":
		return ExplainNone, nil
	}
	return "", model.NewInputError("explain mode", fmt.Errorf("%w: %q", model.ErrInvalidInput, s))
}

// Input is one document to analyze. Data takes precedence over Text.
type Input struct {
	Name string
	Data []byte
	Text string

	// Language is the explanation language: "en", "hi" or "both".
	Language string
	Explain  ExplainMode
}

// Stage names a pipeline step reported through Progress.
type Stage string

const (
	StageExtract Stage = "extract"
	StageDetect  Stage = "detect"
	StageMatch   Stage = "match"
	StageExplain Stage = "explain"
	StageScore   Stage = "score"
	StageDone    Stage = "done"
)

// Progress is emitted as the pipeline advances. Done and Total are only
// set during StageExplain.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Done    int    `json:"done,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProgressFunc receives progress updates. It is called synchronously and
// must not block.
type ProgressFunc func(Progress)

// Analyzer wires the pipeline components. It is safe for concurrent use;
// every call to Analyze is independent.
type Analyzer struct {
	extractor *extract.Extractor
	matcher   *matcher.Matcher
	explainer *explain.Service
	scorer    *scoring.Aggregator
	logger    logging.Logger
	now       func() time.Time
}

// Deps are the components an Analyzer runs. Nil fields get defaults;
// a nil Explainer means template explanations only.
type Deps struct {
	Extractor *extract.Extractor
	Matcher   *matcher.Matcher
	Explainer *explain.Service
	Scorer    *scoring.Aggregator
}

func NewAnalyzer(deps Deps, logger logging.Logger) *Analyzer {
	if deps.Extractor == nil {
		deps.Extractor = extract.New(extract.DefaultConfig(), logger)
	}
	if deps.Matcher == nil {
		deps.Matcher = matcher.New(matcher.DefaultConfig(), nil, logger)
	}
	if deps.Explainer == nil {
		deps.Explainer = explain.New(nil, nil, explain.DefaultConfig(), logger)
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.Default()
	}
	return &Analyzer{
		extractor: deps.Extractor,
		matcher:   deps.Matcher,
		explainer: deps.Explainer,
		scorer:    deps.Scorer,
		logger:    logging.Component(logger, "analyzer"),
		now:       time.Now,
	}
}

// ExplanationsAvailable reports whether a language model backs the
// explainer.
func (a *Analyzer) ExplanationsAvailable() bool { return a.explainer.Available() }

// Analyze runs the whole pipeline on one document. Input and scoring
// errors are returned as is; explanation service failures degrade the
// result instead.
func (a *Analyzer) Analyze(ctx context.Context, in Input, progress ProgressFunc) (*model.AssessmentResult, error) {
	res, _, err := a.analyze(ctx, in, progress)
	return res, err
}

func (a *Analyzer) analyze(ctx context.Context, in Input, progress ProgressFunc) (*model.AssessmentResult, *extract.Document, error) {
	if progress == nil {
		progress = func(Progress) {}
	}
	start := a.now()

	lang := in.Language
	if lang == "" {
		lang = language.English
	}
	if !language.ValidExplanationLanguage(lang) {
		return nil, nil, model.NewInputError("analyze", fmt.Errorf("%w: explanation language %q", model.ErrInvalidInput, in.Language))
	}
	mode := in.Explain
	if mode == "" {
		mode = ExplainAll
	}
	if mode != ExplainAll && mode != ExplainNone {
		return nil, nil, model.NewInputError("analyze", fmt.Errorf("%w: explain mode %q", model.ErrInvalidInput, mode))
	}

	name := in.Name
	if name == "" {
		name = "document"
	}

	progress(Progress{Stage: StageExtract})
	data := in.Data
	if data == nil {
		data = []byte(in.Text)
	}
	doc, err := a.extractor.Extract(ctx, name, data)
	if err != nil {
		return nil, nil, err
	}

	progress(Progress{Stage: StageDetect})
	detected := language.Detect(doc.Text)
	clauses := extract.SplitClauses(doc.Text)

	progress(Progress{Stage: StageMatch, Message: fmt.Sprintf("%d clauses", len(clauses))})
	matched, err := a.matcher.Match(ctx, clauses)
	if err != nil {
		return nil, nil, err
	}
	matches := matched.Matches
	warnings := append([]string(nil), matched.Warnings...)

	degraded := false
	if mode == ExplainAll && len(matches) > 0 {
		var w []string
		degraded, w, err = a.explainMatches(ctx, clauses, matches, lang, progress)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
	}

	progress(Progress{Stage: StageScore})
	summary, err := a.scorer.Aggregate(matches, len(clauses), doc.Words())
	if err != nil {
		return nil, nil, err
	}
	summary.Metrics.Characters = doc.Characters()

	res := &model.AssessmentResult{
		ID:                  uuid.NewString(),
		DocumentName:        doc.Name,
		Format:              string(doc.Format),
		Language:            detected,
		ExplanationLanguage: lang,
		Clauses:             clauses,
		Matches:             matches,
		Metrics:             summary.Metrics,
		Score:               summary.Score,
		Grade:               summary.Grade,
		Band:                string(summary.Band),
		Recommendation:      summary.Recommendation,
		Degraded:            degraded,
		Warnings:            warnings,
		CreatedAt:           start.UTC(),
		Duration:            a.now().Sub(start),
	}
	if res.Matches == nil {
		res.Matches = []model.ClauseMatch{}
	}

	a.logger.Info("document analyzed",
		logging.Field{Key: "document", Value: res.DocumentName},
		logging.Field{Key: "language", Value: res.Language},
		logging.Field{Key: "clauses", Value: len(clauses)},
		logging.Field{Key: "matches", Value: len(matches)},
		logging.Field{Key: "score", Value: res.Score},
		logging.Field{Key: "degraded", Value: degraded})
	progress(Progress{Stage: StageDone, Message: fmt.Sprintf("score %d (%s)", res.Score, res.Grade)})
	return res, doc, nil
}

// explainMatches attaches one explanation per risky clause to every match
// of that clause. After the first outage or rate limit the remaining
// clauses go straight to templates.
func (a *Analyzer) explainMatches(ctx context.Context, clauses []model.Clause, matches []model.ClauseMatch, lang string, progress ProgressFunc) (degraded bool, warnings []string, err error) {
	byClause := make(map[int][]int)
	var order []int
	for i, m := range matches {
		if _, seen := byClause[m.ClauseIndex]; !seen {
			order = append(order, m.ClauseIndex)
		}
		byClause[m.ClauseIndex] = append(byClause[m.ClauseIndex], i)
	}
	text := make(map[int]string, len(clauses))
	for _, c := range clauses {
		text[c.Index] = c.Text
	}

	available := a.explainer.Available()
	notice := ""
	if !available {
		notice = explain.Notice(&model.ServiceError{Service: "explain", Err: model.ErrServiceUnavailable})
	}
	fallbacks := 0

	for n, idx := range order {
		progress(Progress{Stage: StageExplain, Done: n, Total: len(order)})
		cats := make([]model.RiskCategory, 0, len(byClause[idx]))
		for _, mi := range byClause[idx] {
			cats = append(cats, categoryOf(matches[mi]))
		}

		var e *model.Explanation
		if available {
			e, err = a.explainClause(ctx, text[idx], cats, lang)
			if err != nil {
				if !model.IsServiceError(err) {
					return false, nil, err
				}
				a.logger.Warn("explanation failed; using template",
					logging.Field{Key: "clause", Value: idx},
					logging.Field{Key: "error", Value: err})
				e = explain.Fallback(cats, lang, explain.Notice(err))
				degraded = true
				if errors.Is(err, model.ErrServiceUnavailable) || errors.Is(err, model.ErrRateLimited) {
					available = false
					notice = explain.Notice(err)
				}
			}
		} else {
			e = explain.Fallback(cats, lang, notice)
		}
		if e.Source == model.SourceTemplate {
			fallbacks++
		}
		for _, mi := range byClause[idx] {
			matches[mi].Explanation = e
		}
	}
	progress(Progress{Stage: StageExplain, Done: len(order), Total: len(order)})

	if degraded {
		warnings = append(warnings, fmt.Sprintf(
			"AI explanations unavailable for %d of %d risky clauses; standard explanations shown",
			fallbacks, len(order)))
	}
	return degraded, warnings, nil
}

func (a *Analyzer) explainClause(ctx context.Context, clause string, cats []model.RiskCategory, lang string) (*model.Explanation, error) {
	if len(cats) == 1 {
		return a.explainer.Explain(ctx, clause, cats[0], lang)
	}
	return a.explainer.ExplainMulti(ctx, clause, cats, lang)
}

// categoryOf returns the catalog category behind m.
func categoryOf(m model.ClauseMatch) model.RiskCategory {
	if e, ok := catalog.Lookup(m.CategoryID); ok {
		return e.RiskCategory
	}
	return model.RiskCategory{ID: m.CategoryID, Label: m.CategoryLabel, Severity: m.Severity}
}
