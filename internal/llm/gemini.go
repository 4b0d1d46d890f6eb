package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/raysh454/clauseguard/internal/model"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiOptions configures the Gemini API client.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient replaces the SDK's client, mainly for tests.
	HTTPClient *http.Client
}

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing api key: %w", model.ErrInvalidInput)
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &GeminiClient{client: c, model: opts.Model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.User) == "" {
		return "", fmt.Errorf("gemini: empty prompt: %w", model.ErrInvalidInput)
	}
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), cfg)
	if err != nil {
		return "", g.classify(ctx, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", serviceError("gemini", 0, model.ErrMalformedResponse)
	}
	return text, nil
}

// classify walks the error chain for the SDK's API error; anything else is
// a transport failure.
func (g *GeminiClient) classify(ctx context.Context, err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := any(e).(type) {
		case genai.APIError:
			return statusError("gemini", v.Code, v.Message)
		case *genai.APIError:
			return statusError("gemini", v.Code, v.Message)
		}
	}
	return transportError(ctx, "gemini", err)
}
