package report

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/raysh454/clauseguard/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type htmlRenderer struct {
	opts Options
}

func (h *htmlRenderer) Render(_ context.Context, w io.Writer, r *model.AssessmentResult) error {
	return reportTemplate.ExecuteTemplate(w, "report.html.tmpl", buildView(r, h.opts))
}
