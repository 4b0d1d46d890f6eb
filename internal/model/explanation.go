package model

// ExplanationSource tells whether an explanation came from the language
// model or from the built-in templates.
type ExplanationSource string

const (
	SourceAI       ExplanationSource = "ai"
	SourceTemplate ExplanationSource = "template"
)

// Explanation is the plain-language breakdown attached to a clause match.
type Explanation struct {
	Meaning        string            `json:"meaning"`
	Risk           string            `json:"risk"`
	Beneficiary    string            `json:"beneficiary"`
	Recommendation string            `json:"recommendation"`
	Source         ExplanationSource `json:"source"`
	Language       string            `json:"language"`

	// Notice is a short user-facing note, e.g. why the AI explanation is
	// missing.
	Notice string `json:"notice,omitempty"`
}

// Complete reports whether all four sections are populated.
func (e *Explanation) Complete() bool {
	return e != nil && e.Meaning != "" && e.Risk != "" && e.Beneficiary != "" && e.Recommendation != ""
}
