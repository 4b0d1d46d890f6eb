package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/clauseguard/internal/model"
)

func newOpenAI(t *testing.T, h http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewOpenAI(OpenAIOptions{BaseURL: srv.URL + "/v1", APIKey: "gsk_test"})
	require.NoError(t, err)
	return c
}

func TestOpenAIGenerate(t *testing.T) {
	t.Parallel()
	var got oaReq
	c := newOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"meaning\":\"m\"}"}}]}`))
	})

	out, err := c.Generate(context.Background(), Request{
		System: "sys", User: "explain", Temperature: 0.3, MaxTokens: 600, JSON: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"meaning":"m"}`, out)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "explain", got.Messages[1].Content)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.3, *got.Temperature, 1e-9)
	assert.Equal(t, 600, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, "openai:"+DefaultOpenAIModel, c.Name())
}

func TestOpenAIStatusMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, model.ErrRateLimited},
		{http.StatusBadGateway, model.ErrServiceUnavailable},
		{http.StatusUnauthorized, model.ErrServiceUnavailable},
	}
	for _, tc := range cases {
		c := newOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tc.status)
		})
		_, err := c.Generate(context.Background(), Request{User: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)

		var se *model.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, tc.status, se.Status)
	}
}

func TestOpenAIMalformed(t *testing.T) {
	t.Parallel()
	for _, body := range []string{`not json`, `{"choices":[]}`, `{"choices":[{"message":{"content":"  "}}]}`} {
		c := newOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := c.Generate(context.Background(), Request{User: "x"})
		assert.ErrorIs(t, err, model.ErrMalformedResponse, body)
		assert.True(t, model.IsServiceError(err))
	}
}

func TestOpenAIUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewOpenAI(OpenAIOptions{BaseURL: url, APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), Request{User: "x"})
	assert.ErrorIs(t, err, model.ErrServiceUnavailable)
}

func TestOpenAICanceledContext(t *testing.T) {
	t.Parallel()
	c := newOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Generate(ctx, Request{User: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, model.IsServiceError(err))
}

func TestOpenAIRequiresKeyAndPrompt(t *testing.T) {
	t.Parallel()
	_, err := NewOpenAI(OpenAIOptions{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	c := newOpenAI(t, func(http.ResponseWriter, *http.Request) {})
	_, err = c.Generate(context.Background(), Request{User: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestOpenAIEndpointOverride(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/custom", r.URL.Path)
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"OK"}}]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewOpenAI(OpenAIOptions{
		APIKey:       "k",
		EndpointPath: srv.URL + "/custom",
		ExtraHeaders: map[string]string{"X-Extra": "yes"},
	})
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), c))
	assert.Equal(t, int32(1), hits.Load())
}
