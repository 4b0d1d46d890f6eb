package model

import "time"

// Metrics summarizes document size and risk mass.
type Metrics struct {
	Characters   int `json:"characters"`
	Words        int `json:"words"`
	Clauses      int `json:"clauses"`
	RiskyClauses int `json:"risky_clauses"`

	// WeightedMass is the sum of severity weights over all matches.
	WeightedMass int `json:"weighted_mass"`

	// Density is WeightedMass per 1000 words.
	Density float64 `json:"density"`

	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
}

// AssessmentResult is the outcome of analyzing one document. It is built
// once per request and treated as read-only afterwards.
type AssessmentResult struct {
	ID           string `json:"id"`
	DocumentName string `json:"document_name"`
	Format       string `json:"format"`

	// Language is the detected tag: "en", "hi" or "mixed".
	Language string `json:"language"`

	// ExplanationLanguage is the language explanations were requested in.
	ExplanationLanguage string `json:"explanation_language"`

	Clauses []Clause      `json:"clauses,omitempty"`
	Matches []ClauseMatch `json:"matches"`
	Metrics Metrics       `json:"metrics"`

	// Score is the aggregate safety score in [0, 100]; higher is safer.
	Score          int    `json:"score"`
	Grade          string `json:"grade"`
	Band           string `json:"band"`
	Recommendation string `json:"recommendation"`

	// Degraded is set when at least one explanation fell back to a template
	// because the explanation service failed.
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`

	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// MatchesByClause groups matches by clause index, preserving match order.
func (r *AssessmentResult) MatchesByClause() map[int][]ClauseMatch {
	out := make(map[int][]ClauseMatch)
	for _, m := range r.Matches {
		out[m.ClauseIndex] = append(out[m.ClauseIndex], m)
	}
	return out
}

// RiskyClauses returns the clauses that carry at least one match, in
// document order.
func (r *AssessmentResult) RiskyClauses() []Clause {
	byClause := r.MatchesByClause()
	var out []Clause
	for _, c := range r.Clauses {
		if len(byClause[c.Index]) > 0 {
			out = append(out, c)
		}
	}
	return out
}
