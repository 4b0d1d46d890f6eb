// Package report renders assessment results for people and machines.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raysh454/clauseguard/internal/model"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatTerminal Format = "terminal"
	FormatPDF      Format = "pdf"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatHTML, FormatTerminal, FormatPDF}
}

// ParseFormat accepts format names and common aliases ("txt", "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	case "terminal", "term", "ansi":
		return FormatTerminal, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", model.NewInputError("report", fmt.Errorf("%w: report format %q", model.ErrUnsupportedFormat, s))
}

// ContentType is the MIME type served for f.
func ContentType(f Format) string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

func extension(f Format) string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	case FormatPDF:
		return "pdf"
	default:
		return "txt"
	}
}

// FileName is the download name for a report generated at t, e.g.
// contract_risk_report_20240131_154500.txt.
func FileName(f Format, t time.Time) string {
	return fmt.Sprintf("contract_risk_report_%s.%s", t.Format("20060102_150405"), extension(f))
}

// Renderer writes one result in one format.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, r *model.AssessmentResult) error
}

// Options tune rendering. Zero values get defaults.
type Options struct {
	// PreviewChars truncates clause text in findings.
	PreviewChars int
	// Width is the terminal width used by the terminal format.
	Width int
	// ChromePath overrides the browser used for PDF export.
	ChromePath string
	PDFTimeout time.Duration
	// Now stamps the "Generated" line.
	Now func() time.Time
}

func (o *Options) defaults() {
	if o.PreviewChars <= 0 {
		o.PreviewChars = 200
	}
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.PDFTimeout <= 0 {
		o.PDFTimeout = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// New returns the renderer for format.
func New(format Format, opts Options) (Renderer, error) {
	opts.defaults()
	switch format {
	case FormatText:
		return &textRenderer{opts: opts}, nil
	case FormatMarkdown:
		return &markdownRenderer{opts: opts}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatHTML:
		return &htmlRenderer{opts: opts}, nil
	case FormatTerminal:
		return &terminalRenderer{opts: opts}, nil
	case FormatPDF:
		return &pdfRenderer{opts: opts, html: &htmlRenderer{opts: opts}}, nil
	}
	return nil, model.NewInputError("report", fmt.Errorf("%w: report format %q", model.ErrUnsupportedFormat, format))
}

// Render is a convenience wrapper around New and Renderer.Render.
func Render(ctx context.Context, w io.Writer, format Format, opts Options, r *model.AssessmentResult) error {
	rr, err := New(format, opts)
	if err != nil {
		return err
	}
	return rr.Render(ctx, w, r)
}
