package llm

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

const (
	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	DefaultOpenAIModel   = "llama-3.3-70b-versatile"
)

// OpenAIOptions configures an OpenAI-compatible chat completions client.
// The defaults target Groq.
type OpenAIOptions struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
	// EndpointPath overrides /chat/completions; a full URL is used as-is.
	EndpointPath string
	ExtraHeaders map[string]string
	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

func (o *OpenAIOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultOpenAIBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultOpenAIModel
	}
	if o.EndpointPath == "" {
		o.EndpointPath = "/chat/completions"
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
}

// OpenAIClient talks to /chat/completions.
type OpenAIClient struct {
	hc     *http.Client
	url    string
	apiKey string
	model  string
	extraH map[string]string
}

// NewOpenAI validates opts and builds a client.
func NewOpenAI(opts OpenAIOptions) (*OpenAIClient, error) {
	opts.defaults()
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: missing api key: %w", model.ErrInvalidInput)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	full := opts.EndpointPath
	if !strings.HasPrefix(full, "http://") && !strings.HasPrefix(full, "https://") {
		full = strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(opts.EndpointPath, "/")
	}
	return &OpenAIClient{
		hc:     hc,
		url:    full,
		apiKey: opts.APIKey,
		model:  opts.Model,
		extraH: opts.ExtraHeaders,
	}, nil
}

func (c *OpenAIClient) Name() string { return "openai:" + c.model }

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaResponseFormat struct {
	Type string `json:"type"`
}

type oaReq struct {
	Model          string            `json:"model"`
	Messages       []oaMessage       `json:"messages"`
	Temperature    *float64          `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat *oaResponseFormat `json:"response_format,omitempty"`
}

type oaResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) encode(req Request) ([]byte, error) {
	body := oaReq{Model: c.model, MaxTokens: req.MaxTokens}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	if req.System != "" {
		body.Messages = append(body.Messages, oaMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, oaMessage{Role: "user", Content: req.User})
	if req.JSON {
		body.ResponseFormat = &oaResponseFormat{Type: "json_object"}
	}
	return json.Marshal(&body)
}

// Generate performs one chat completion. The response body is closed on
// every path.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.User) == "" {
		return "", fmt.Errorf("openai: empty prompt: %w", model.ErrInvalidInput)
	}
	payload, err := c.encode(req)
	if err != nil {
		return "", fmt.Errorf("openai: encode: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range c.extraH {
		if k != "" {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", transportError(ctx, "openai", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", statusError("openai", resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var out oaResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", serviceError("openai", resp.StatusCode, errors.Join(model.ErrMalformedResponse, err))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", serviceError("openai", resp.StatusCode, model.ErrMalformedResponse)
	}
	return out.Choices[0].Message.Content, nil
}
