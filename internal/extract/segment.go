package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raysh454/clauseguard/internal/model"
)

// MinClauseRunes is the shortest segment kept as a clause.
const MinClauseRunes = 50

// clauseMarker matches a line-initial clause heading: "1.", "1)", "A.",
// "A)", "Section 3", "Article 3", "Clause 3", Hindi letters "क." and the
// Hindi words for section and article.
var clauseMarker = regexp.MustCompile(`\n(?:\d+[.)]\s+|[A-Z][.)]\s+|(?:Section|Article|Clause)\s+\d+|[क-ह]\.\s+|धारा\s+\d+|अनुच्छेद\s+\d+)`)

// SplitClauses segments text into clauses on heading markers. When fewer
// than two substantial clauses result it splits on blank lines instead,
// and when that also yields nothing the whole text becomes one clause.
// Spans index into text.
func SplitClauses(text string) []model.Clause {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	clauses := splitOnMarkers(text)
	if len(clauses) < 2 {
		clauses = splitOnParagraphs(text)
	}
	if len(clauses) == 0 {
		clauses = []model.Clause{trimmed(text, 0, len(text))}
	}
	for i := range clauses {
		clauses[i].Index = i
	}
	return clauses
}

func splitOnMarkers(text string) []model.Clause {
	// Prefix a newline so a marker on the very first line counts; offsets
	// are shifted back by one below.
	padded := "\n" + text
	locs := clauseMarker.FindAllStringIndex(padded, -1)

	var out []model.Clause
	start := 0
	for _, loc := range locs {
		out = appendIfSubstantial(out, text, start, max(loc[0]-1, 0))
		start = loc[1] - 1
	}
	return appendIfSubstantial(out, text, start, len(text))
}

func splitOnParagraphs(text string) []model.Clause {
	var out []model.Clause
	start := 0
	for {
		i := strings.Index(text[start:], "\n\n")
		if i < 0 {
			return appendIfSubstantial(out, text, start, len(text))
		}
		out = appendIfSubstantial(out, text, start, start+i)
		start += i + 2
	}
}

func appendIfSubstantial(out []model.Clause, text string, start, end int) []model.Clause {
	if start >= end {
		return out
	}
	c := trimmed(text, start, end)
	if utf8.RuneCountInString(c.Text) <= MinClauseRunes {
		return out
	}
	return append(out, c)
}

// trimmed returns text[start:end] without surrounding whitespace and the
// matching span.
func trimmed(text string, start, end int) model.Clause {
	seg := text[start:end]
	rest := strings.TrimLeftFunc(seg, unicode.IsSpace)
	lead := len(seg) - len(rest)
	body := strings.TrimRightFunc(rest, unicode.IsSpace)
	return model.Clause{
		Text: body,
		Span: model.Span{Start: start + lead, End: start + lead + len(body)},
	}
}
