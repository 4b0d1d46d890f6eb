package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/clauseguard/internal/model"
)

// LibreOptions points at a LibreTranslate-compatible server.
type LibreOptions struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Libre calls POST {endpoint}/translate.
type Libre struct {
	hc     *http.Client
	url    string
	apiKey string
}

func NewLibre(opts LibreOptions) *Libre {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Libre{
		hc:     hc,
		url:    strings.TrimRight(opts.Endpoint, "/") + "/translate",
		apiKey: opts.APIKey,
	}
}

type libreReq struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResp struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *Libre) Translate(ctx context.Context, text, src, dst string) (string, error) {
	if src == "" {
		src = "auto"
	}
	payload, err := json.Marshal(libreReq{Q: text, Source: src, Target: dst, Format: "text", APIKey: l.apiKey})
	if err != nil {
		return "", fmt.Errorf("libre: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("libre: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", libreError(0, errors.Join(model.ErrServiceUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", libreError(resp.StatusCode, errors.Join(model.ErrServiceUnavailable, err))
	}

	var out libreResp
	decodeErr := json.Unmarshal(body, &out)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", libreError(resp.StatusCode, model.ErrRateLimited)
	case resp.StatusCode/100 != 2:
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", libreError(resp.StatusCode, errors.Join(model.ErrServiceUnavailable, errors.New(msg)))
	case decodeErr != nil:
		return "", libreError(resp.StatusCode, errors.Join(model.ErrMalformedResponse, decodeErr))
	case out.TranslatedText == "":
		return "", libreError(resp.StatusCode, model.ErrMalformedResponse)
	}
	return out.TranslatedText, nil
}

func libreError(status int, err error) error {
	return &model.ServiceError{Service: "libretranslate", Op: "translate", Status: status, Err: err}
}
