package scoring

// Grade maps a score onto a letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// Band is the coarse risk posture of a contract.
type Band string

const (
	BandLow      Band = "low"
	BandModerate Band = "moderate"
	BandHigh     Band = "high"
)

// BandFor buckets a score.
func BandFor(score int) Band {
	switch {
	case score >= 80:
		return BandLow
	case score >= 60:
		return BandModerate
	default:
		return BandHigh
	}
}

// Recommendation is the closing advice printed in reports.
func (b Band) Recommendation() string {
	switch b {
	case BandLow:
		return "This contract appears relatively safe. Review flagged items as a precaution."
	case BandModerate:
		return "This contract has moderate risks. Carefully review all flagged clauses."
	default:
		return "This contract has significant risks. Professional legal review is strongly recommended."
	}
}
