// Package matcher finds catalog risk signatures in contract clauses.
package matcher

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/translate"
)

// MinClauseChars is the number of non-space characters a clause needs
// before it is matched at all.
const MinClauseChars = 20

// DefaultPreviewChars bounds ClauseMatch.Excerpt.
const DefaultPreviewChars = 200

type Config struct {
	PreviewChars int
	// Target is the language translations are requested in.
	Target string
}

func DefaultConfig() Config {
	return Config{PreviewChars: DefaultPreviewChars, Target: language.English}
}

// Matcher checks clauses against every catalog entry. It holds no
// per-request state and is safe for concurrent use.
type Matcher struct {
	cfg        Config
	translator translate.Translator
	logger     logging.Logger
}

// New returns a Matcher. translator may be nil, in which case Hindi and
// mixed clauses are only matched against the Hindi signatures.
func New(cfg Config, translator translate.Translator, logger logging.Logger) *Matcher {
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = DefaultPreviewChars
	}
	if cfg.Target == "" {
		cfg.Target = language.English
	}
	return &Matcher{cfg: cfg, translator: translator, logger: logging.Component(logger, "matcher")}
}

// Result is the outcome of matching one document.
type Result struct {
	Matches []model.ClauseMatch
	// Warnings carries translation failures. They never abort matching.
	Warnings []string
	// Translated counts clauses that were checked in translation.
	Translated int
}

// Match returns one ClauseMatch per (clause, category) pair whose first
// signature hit, in clause order and then catalog order. Only context
// cancellation is reported as an error.
func (m *Matcher) Match(ctx context.Context, clauses []model.Clause) (*Result, error) {
	res := &Result{}
	for _, clause := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if nonSpaceRunes(clause.Text) < MinClauseChars {
			continue
		}

		var translated string
		if m.translator != nil && language.HasDevanagari(clause.Text) &&
			language.NeedsTranslation(language.Detect(clause.Text)) {
			out, err := m.translator.Translate(ctx, clause.Text, "auto", m.cfg.Target)
			switch {
			case err == nil:
				translated = out
				res.Translated++
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				m.logger.Warn("clause translation failed",
					logging.Field{Key: "clause", Value: clause.Index},
					logging.Field{Key: "error", Value: err})
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("clause %d: translation failed, matched on original text only: %v", clause.Index+1, err))
			}
		}

		res.Matches = append(res.Matches, m.matchClause(clause, translated)...)
	}
	m.logger.Debug("clauses matched",
		logging.Field{Key: "clauses", Value: len(clauses)},
		logging.Field{Key: "matches", Value: len(res.Matches)})
	return res, nil
}

func (m *Matcher) matchClause(clause model.Clause, translated string) []model.ClauseMatch {
	var out []model.ClauseMatch
	for _, entry := range catalog.All() {
		match, ok := m.matchEntry(entry, clause, translated)
		if ok {
			out = append(out, match)
		}
	}
	return out
}

func (m *Matcher) matchEntry(entry catalog.Entry, clause model.Clause, translated string) (model.ClauseMatch, bool) {
	for _, re := range entry.Patterns {
		if loc := re.FindStringIndex(clause.Text); loc != nil {
			span := model.Span{Start: clause.Span.Start + loc[0], End: clause.Span.Start + loc[1]}
			return m.newMatch(entry, clause, span, re.String(), false), true
		}
	}
	if translated == "" {
		return model.ClauseMatch{}, false
	}
	for _, re := range entry.Patterns {
		if re.MatchString(translated) {
			return m.newMatch(entry, clause, clause.Span, re.String(), true), true
		}
	}
	return model.ClauseMatch{}, false
}

func (m *Matcher) newMatch(entry catalog.Entry, clause model.Clause, span model.Span, pattern string, viaTranslation bool) model.ClauseMatch {
	return model.ClauseMatch{
		ID:             uuid.NewString(),
		ClauseIndex:    clause.Index,
		Span:           span,
		Excerpt:        Excerpt(clause.Text, m.cfg.PreviewChars),
		CategoryID:     entry.ID,
		CategoryLabel:  entry.Label,
		Severity:       entry.Severity,
		Weight:         entry.Weight(),
		Pattern:        strings.TrimPrefix(pattern, "(?is)"),
		ViaTranslation: viaTranslation,
	}
}

// Excerpt truncates text to at most n runes, appending "..." when cut.
func Excerpt(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return strings.TrimRightFunc(text[:i], unicode.IsSpace) + "..."
		}
		count++
	}
	return text
}

func nonSpaceRunes(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
