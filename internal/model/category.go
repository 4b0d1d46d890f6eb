package model

// RiskCategory describes one kind of risky clause. Categories come from the
// static catalog and are never mutated at runtime.
type RiskCategory struct {
	// ID is a stable slug such as "liability-cap".
	ID string `json:"id"`

	// Label is the human readable name ("Liability Cap").
	Label string `json:"label"`

	Severity Severity `json:"severity"`

	// Description is a one line summary of what the category flags.
	Description string `json:"description"`
}

// Weight returns the ordinal weight of the category's severity.
func (c RiskCategory) Weight() int { return c.Severity.Weight() }
