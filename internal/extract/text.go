package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// decodeText returns data as UTF-8. Valid UTF-8 passes through; anything
// else goes through charset detection and leftover invalid bytes are
// dropped.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	enc, _, _ := charset.DetermineEncoding(data, "text/plain")
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return strings.TrimPrefix(strings.ToValidUTF8(string(decoded), ""), "\ufeff")
}

var (
	horizontalSpace = regexp.MustCompile(`[\t\f\v\x{00A0}\x{2000}-\x{200A}\x{202F}\x{3000} ]+`)
	manyNewlines    = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes text to NFC, drops byte order marks, unifies line endings, collapses runs of
// horizontal whitespace, trims every line and keeps at most one blank line
// between paragraphs.
func Clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CountWords counts whitespace-separated tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
