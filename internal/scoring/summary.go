package scoring

import (
	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/model"
)

// Summary is the scored view of a set of matches.
type Summary struct {
	Score          int           `json:"score"`
	Grade          string        `json:"grade"`
	Band           Band          `json:"band"`
	Recommendation string        `json:"recommendation"`
	Metrics        model.Metrics `json:"metrics"`
}

// Aggregate scores matches found in a document of clauses clauses and
// words words. Each match weight is re-read from the catalog so a match
// carrying a weight that disagrees with its category is rejected.
func (a *Aggregator) Aggregate(matches []model.ClauseMatch, clauses, words int) (*Summary, error) {
	if clauses < 0 {
		return nil, &model.ScoringError{Err: model.ErrInvalidInput}
	}
	weights := make([]int, 0, len(matches))
	counts := make(map[model.Severity]int, len(model.Severities))
	risky := make(map[int]struct{})
	for _, m := range matches {
		w, err := catalog.Weight(m.CategoryID)
		if err != nil {
			return nil, &model.ScoringError{Err: err}
		}
		if m.Weight != w {
			return nil, &model.ScoringError{Err: model.ErrInvalidInput}
		}
		weights = append(weights, w)
		counts[m.Severity]++
		risky[m.ClauseIndex] = struct{}{}
	}

	mass, err := massOf(weights, words)
	if err != nil {
		return nil, err
	}
	score := a.score(mass, words)
	band := BandFor(score)
	return &Summary{
		Score:          score,
		Grade:          Grade(score),
		Band:           band,
		Recommendation: band.Recommendation(),
		Metrics: model.Metrics{
			Words:            words,
			Clauses:          clauses,
			RiskyClauses:     len(risky),
			WeightedMass:     mass,
			Density:          Density(mass, words),
			CountsBySeverity: counts,
		},
	}, nil
}
