// Package llm is the thin client layer over hosted chat models used for
// clause explanations and translation.
package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/raysh454/clauseguard/internal/model"
)

// Request is a single-turn chat completion.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	// JSON asks the provider to return a JSON object.
	JSON bool
}

// Client generates text. Failures are *model.ServiceError values wrapping
// model.ErrServiceUnavailable, model.ErrRateLimited or
// model.ErrMalformedResponse; context errors are returned as-is.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	// Name identifies provider and model, e.g. "openai:llama-3.3-70b-versatile".
	Name() string
}

// Ping issues a tiny request to confirm credentials and connectivity.
func Ping(ctx context.Context, c Client) error {
	_, err := c.Generate(ctx, Request{User: "Say 'OK'", MaxTokens: 10})
	return err
}

func serviceError(service string, status int, err error) error {
	return &model.ServiceError{Service: service, Op: "generate", Status: status, Err: err}
}

// transportError maps a transport failure. Context cancellation by the
// caller passes through untouched so it is not mistaken for an outage.
func transportError(ctx context.Context, service string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return serviceError(service, 0, errors.Join(model.ErrServiceUnavailable, err))
}

// statusError classifies a non-2xx HTTP status. 429 is a rate limit;
// everything else means the service cannot answer this request.
func statusError(service string, status int, body string) error {
	kind := model.ErrServiceUnavailable
	if status == http.StatusTooManyRequests {
		kind = model.ErrRateLimited
	}
	if body != "" {
		return serviceError(service, status, errors.Join(kind, errors.New(body)))
	}
	return serviceError(service, status, kind)
}

// retryable reports whether err is worth another attempt: rate limits,
// timeouts and 5xx responses. Other 4xx statuses (bad key, bad request)
// fail the same way every time.
func retryable(err error) bool {
	var se *model.ServiceError
	if !errors.As(err, &se) || !se.Retryable() {
		return false
	}
	switch {
	case se.Status == 0, se.Status == http.StatusTooManyRequests, se.Status == http.StatusRequestTimeout:
		return true
	default:
		return se.Status >= 500
	}
}
