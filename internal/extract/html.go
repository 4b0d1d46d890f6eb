package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/raysh454/clauseguard/internal/model"
)

const blockSelector = "p, div, li, br, tr, h1, h2, h3, h4, h5, h6, section, article, blockquote, pre"

// extractHTML returns the visible text of an HTML contract, with block
// elements separated by newlines so clause markers stay at line starts.
func extractHTML(data []byte) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return "", model.NewInputError("html", fmt.Errorf("%v: %w", err, model.ErrUnreadableDocument))
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", model.NewInputError("html", fmt.Errorf("%v: %w", err, model.ErrUnreadableDocument))
	}
	doc.Find("script, style, noscript, template, head").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})
	return doc.Text(), nil
}
