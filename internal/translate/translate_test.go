package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/clauseguard/internal/config"
	"github.com/raysh454/clauseguard/internal/llm"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
)

type recorder struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (r *recorder) Translate(_ context.Context, text, _, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, text)
	if r.err != nil {
		return "", r.err
	}
	return "[" + strings.TrimSpace(text[:min(len(text), 3)]) + "]", nil
}

// ─── Chunked ───────────────────────────────────────────────────────────

func TestChunkedPassThrough(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c := NewChunked(rec, 10, logging.NewNop())

	out, err := c.Translate(context.Background(), "abc", "auto", "en")
	require.NoError(t, err)
	assert.Equal(t, "abc", out)

	english := "The Client shall pay every invoice within thirty days."
	out, err = c.Translate(context.Background(), english, "auto", "en")
	require.NoError(t, err)
	assert.Equal(t, english, out)
	assert.Empty(t, rec.inputs)
}

func TestChunkedSplitsLongText(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c := NewChunked(rec, 12, logging.NewNop())
	text := "ग्राहक भुगतान करेगा और कंपनी सेवा देगी"
	out, err := c.Translate(context.Background(), text, "hi", "en")
	require.NoError(t, err)
	require.Greater(t, len(rec.inputs), 1)
	for _, in := range rec.inputs {
		assert.LessOrEqual(t, utf8.RuneCountInString(in), 12)
	}
	assert.Equal(t, len(rec.inputs), strings.Count(out, "["))
}

func TestChunkedPropagatesServiceErrors(t *testing.T) {
	t.Parallel()
	rec := &recorder{err: &model.ServiceError{Service: "x", Err: model.ErrServiceUnavailable}}
	c := NewChunked(rec, 0, logging.NewNop())
	_, err := c.Translate(context.Background(), "ग्राहक क्षतिपूर्ति करेगा", "hi", "en")
	assert.True(t, model.IsServiceError(err))
	assert.ErrorIs(t, err, model.ErrServiceUnavailable)
}

func TestChunk(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"short"}, Chunk("short", 4500))
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, Chunk("aaaa bbbb cccc", 10))
	// No whitespace: hard cut on rune boundaries.
	got := Chunk(strings.Repeat("क", 25), 10)
	require.Len(t, got, 3)
	assert.Equal(t, 10, utf8.RuneCountInString(got[0]))
	assert.Equal(t, 5, utf8.RuneCountInString(got[2]))
	assert.Equal(t, strings.Repeat("क", 25), strings.Join(got, ""))
}

// ─── Libre ─────────────────────────────────────────────────────────────

func TestLibreTranslate(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		var req libreReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi", req.Source)
		assert.Equal(t, "en", req.Target)
		assert.Equal(t, "secret", req.APIKey)
		_ = json.NewEncoder(w).Encode(libreResp{TranslatedText: "compensation"})
	}))
	defer srv.Close()

	l := NewLibre(LibreOptions{Endpoint: srv.URL + "/", APIKey: "secret"})
	out, err := l.Translate(context.Background(), "मुआवजा", "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "compensation", out)
}

func TestLibreErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusTooManyRequests, `{"error":"slow down"}`, model.ErrRateLimited},
		{http.StatusBadRequest, `{"error":"bad language"}`, model.ErrServiceUnavailable},
		{http.StatusOK, `garbage`, model.ErrMalformedResponse},
		{http.StatusOK, `{"translatedText":""}`, model.ErrMalformedResponse},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := NewLibre(LibreOptions{Endpoint: srv.URL}).Translate(context.Background(), "text", "", "en")
		srv.Close()
		assert.ErrorIs(t, err, tc.want, tc.body)
		assert.True(t, model.IsServiceError(err))
	}
}

// ─── LLM ───────────────────────────────────────────────────────────────

type fakeLLM struct{ last llm.Request }

func (f *fakeLLM) Name() string { return "fake:model" }
func (f *fakeLLM) Generate(_ context.Context, req llm.Request) (string, error) {
	f.last = req
	return "  The client will indemnify.  ", nil
}

func TestLLMTranslate(t *testing.T) {
	t.Parallel()
	f := &fakeLLM{}
	out, err := NewLLM(f).Translate(context.Background(), "ग्राहक क्षतिपूर्ति करेगा", "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "The client will indemnify.", out)
	assert.Contains(t, f.last.User, "from Hindi")
	assert.Contains(t, f.last.User, "to English")
	assert.Greater(t, f.last.MaxTokens, 64)
}

// ─── Factory ───────────────────────────────────────────────────────────

func TestNewFactory(t *testing.T) {
	t.Parallel()
	cfg := config.Default().Translation

	cfg.Provider = "none"
	assert.Nil(t, New(cfg, nil, logging.NewNop()))

	cfg.Provider = "llm"
	assert.Nil(t, New(cfg, nil, logging.NewNop()))
	assert.NotNil(t, New(cfg, &fakeLLM{}, logging.NewNop()))

	cfg.Provider = "libre"
	cfg.Endpoint = "http://localhost:5000"
	assert.NotNil(t, New(cfg, nil, logging.NewNop()))
}

func TestNoop(t *testing.T) {
	t.Parallel()
	out, err := Noop{}.Translate(context.Background(), "x", "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}
