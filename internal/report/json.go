package report

import (
	"context"
	"encoding/json"
	"io"

	"github.com/raysh454/clauseguard/internal/model"
)

type jsonRenderer struct{}

func (jsonRenderer) Render(_ context.Context, w io.Writer, r *model.AssessmentResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
