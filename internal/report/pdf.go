package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/clauseguard/internal/model"
)

// pdfRenderer prints the HTML report through headless Chrome.
type pdfRenderer struct {
	opts Options
	html *htmlRenderer
}

func (p *pdfRenderer) Render(ctx context.Context, w io.Writer, r *model.AssessmentResult) error {
	var doc bytes.Buffer
	if err := p.html.Render(ctx, &doc, r); err != nil {
		return err
	}
	buf, err := p.print(ctx, doc.String())
	if err != nil {
		return &model.ServiceError{Service: "chrome", Op: "pdf", Err: errors.Join(model.ErrServiceUnavailable, err)}
	}
	_, err = w.Write(buf)
	return err
}

func (p *pdfRenderer) print(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if p.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.opts.ChromePath))
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.PDFTimeout)
	defer cancel()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var out []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
