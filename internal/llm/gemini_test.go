package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/clauseguard/internal/model"
)

func newGemini(t *testing.T, h http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewGemini(context.Background(), GeminiOptions{
		APIKey:     "gemini_test",
		Model:      "gemini-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func geminiError(status int, reason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s","status":"%s"}}`, status, reason, reason)
	}
}

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()
	c := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"OK"}]}}]}`))
	})

	out, err := c.Generate(context.Background(), Request{User: "Say 'OK'", MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
	assert.Equal(t, "gemini:gemini-test", c.Name())
}

func TestGeminiErrorClassification(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, model.ErrRateLimited},
		{"server error", http.StatusInternalServerError, model.ErrServiceUnavailable},
		{"unavailable", http.StatusServiceUnavailable, model.ErrServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newGemini(t, geminiError(tc.status, "FAILED"))

			_, err := c.Generate(context.Background(), Request{User: "hello"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var se *model.ServiceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "gemini", se.Service)
			assert.Equal(t, tc.status, se.Status)
		})
	}
}

func TestGeminiEmptyCandidatesIsMalformed(t *testing.T) {
	t.Parallel()
	c := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.Generate(context.Background(), Request{User: "hello"})
	assert.ErrorIs(t, err, model.ErrMalformedResponse)
}

func TestGeminiRejectsEmptyPrompt(t *testing.T) {
	t.Parallel()
	c := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.Generate(context.Background(), Request{User: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
