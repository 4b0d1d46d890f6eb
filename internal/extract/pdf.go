package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/raysh454/clauseguard/internal/model"
)

// extractPDF reads the plain text of each page. The pdf library panics on
// some malformed files, so panics are converted to InputErrors.
func extractPDF(ctx context.Context, data []byte, maxPages int) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewInputError("pdf", fmt.Errorf("parser panic: %v: %w", r, model.ErrUnreadableDocument))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, model.NewInputError("pdf", fmt.Errorf("%v: %w", err, model.ErrUnreadableDocument))
	}

	total := reader.NumPage()
	limit := total
	if maxPages > 0 && limit > maxPages {
		limit = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= limit; i++ {
		select {
		case <-ctx.Done():
			return "", 0, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), total, nil
}
