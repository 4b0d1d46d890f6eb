// Package extract turns uploaded contract files into cleaned text and
// splits that text into clauses.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"

	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
)

// Format identifies how a document was decoded.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// Config bounds the work done per document.
type Config struct {
	// MaxBytes rejects larger inputs up front.
	MaxBytes int64
	// MaxPages stops PDF extraction after this many pages; 0 means no cap.
	MaxPages int
}

// DefaultConfig allows 20 MiB and 200 pages.
func DefaultConfig() Config {
	return Config{MaxBytes: 20 << 20, MaxPages: 200}
}

// Document is the extracted, cleaned text of an upload.
type Document struct {
	Name   string
	Format Format
	Text   string
	Pages  int
}

// Characters returns the rune count of the cleaned text.
func (d *Document) Characters() int { return utf8.RuneCountInString(d.Text) }

// Words returns the whitespace-separated word count of the cleaned text.
func (d *Document) Words() int { return CountWords(d.Text) }

// Extractor decodes PDF, HTML and plain text uploads.
type Extractor struct {
	cfg    Config
	logger logging.Logger
}

func New(cfg Config, logger logging.Logger) *Extractor {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultConfig().MaxBytes
	}
	return &Extractor{cfg: cfg, logger: logging.Component(logger, "extract")}
}

// Extract decodes data according to its sniffed format. All failures are
// *model.InputError values.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (*Document, error) {
	if int64(len(data)) > e.cfg.MaxBytes {
		return nil, model.NewInputError("extract", fmt.Errorf("%d bytes exceeds limit of %d: %w", len(data), e.cfg.MaxBytes, model.ErrDocumentTooLarge))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.NewInputError("extract", model.ErrEmptyDocument)
	}

	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Name: name, Format: format}
	var raw string
	switch format {
	case FormatPDF:
		raw, doc.Pages, err = extractPDF(ctx, data, e.cfg.MaxPages)
	case FormatHTML:
		raw, err = extractHTML(data)
	default:
		raw = decodeText(data)
	}
	if err != nil {
		return nil, err
	}

	doc.Text = Clean(raw)
	if strings.TrimSpace(doc.Text) == "" {
		return nil, model.NewInputError(string(format), model.ErrEmptyDocument)
	}
	e.logger.Debug("document extracted",
		logging.Field{Key: "name", Value: name},
		logging.Field{Key: "format", Value: string(format)},
		logging.Field{Key: "chars", Value: doc.Characters()},
		logging.Field{Key: "pages", Value: doc.Pages})
	return doc, nil
}

// DetectFormat sniffs the leading bytes and falls back to the file
// extension for text formats. Recognized binary formats other than PDF
// are rejected.
func DetectFormat(name string, data []byte) (Format, error) {
	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	if hasUTF16BOM(head) {
		if isHTMLExt(name) {
			return FormatHTML, nil
		}
		return FormatText, nil
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		if kind.Extension == "pdf" {
			return FormatPDF, nil
		}
		return "", model.NewInputError("detect", fmt.Errorf("%s (%s): %w", name, kind.MIME.Value, model.ErrUnsupportedFormat))
	}

	if strings.ToLower(filepath.Ext(name)) == ".pdf" {
		// Extension claims PDF but the magic bytes disagree.
		return "", model.NewInputError("detect", fmt.Errorf("%s: not a valid PDF: %w", name, model.ErrUnreadableDocument))
	}
	if isHTMLExt(name) {
		return FormatHTML, nil
	}
	if looksLikeHTML(head) {
		return FormatHTML, nil
	}
	if isBinary(head) {
		return "", model.NewInputError("detect", fmt.Errorf("%s: %w", name, model.ErrUnsupportedFormat))
	}
	return FormatText, nil
}

func looksLikeHTML(head []byte) bool {
	h := strings.ToLower(strings.TrimSpace(string(head)))
	return strings.HasPrefix(h, "<!doctype html") || strings.HasPrefix(h, "<html")
}

func isHTMLExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// hasUTF16BOM reports a UTF-16 byte order mark. Such text is full of NUL
// bytes and must skip the binary check.
func hasUTF16BOM(head []byte) bool {
	_, name, certain := charset.DetermineEncoding(head, "text/plain")
	return certain && strings.HasPrefix(name, "utf-16")
}

// isBinary reports NUL bytes, which never appear in text encodings we read.
func isBinary(head []byte) bool {
	return bytes.IndexByte(head, 0) >= 0
}
