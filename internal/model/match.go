package model

// Span is a half-open byte range [Start, End) into the cleaned document text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Valid reports whether the span is well formed for a text of length n.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

// Clause is one segment of a contract produced by clause splitting.
type Clause struct {
	// Index is the 0-based position of the clause in the document.
	Index int    `json:"index"`
	Text  string `json:"text"`
	Span  Span   `json:"span"`
}

// ClauseMatch records that a clause matched a risk category.
//
// Severity and Weight are copied from the catalog entry for CategoryID when
// the match is created; nothing else assigns them.
type ClauseMatch struct {
	ID          string `json:"id"`
	ClauseIndex int    `json:"clause_index"`

	// Span locates the signature hit inside the document. When the hit came
	// from a translation of the clause, Span covers the whole clause.
	Span Span `json:"span"`

	// Excerpt is the clause text, truncated for display.
	Excerpt string `json:"excerpt"`

	CategoryID    string   `json:"category_id"`
	CategoryLabel string   `json:"category_label"`
	Severity      Severity `json:"severity"`
	Weight        int      `json:"weight"`

	// Pattern is the signature that matched.
	Pattern string `json:"pattern,omitempty"`

	// ViaTranslation is set when the hit was found in the English
	// translation of a Hindi or mixed clause.
	ViaTranslation bool `json:"via_translation,omitempty"`

	// Explanation is absent when explanations were disabled.
	Explanation *Explanation `json:"explanation,omitempty"`
}
