// Package translate wraps external translation services behind a small
// interface. Clauseguard never translates on its own.
package translate

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raysh454/clauseguard/internal/config"
	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/llm"
	"github.com/raysh454/clauseguard/internal/logging"
)

// Translator converts text between language tags ("en", "hi"). src may be
// "auto". Failures are *model.ServiceError values.
type Translator interface {
	Translate(ctx context.Context, text, src, dst string) (string, error)
}

// DefaultChunkSize keeps requests under common 5000 character limits.
const DefaultChunkSize = 4500

const minTranslatableRunes = 5

// Chunked applies the pass-through rules and splits long input before
// delegating each piece to the backend.
type Chunked struct {
	backend   Translator
	chunkSize int
	logger    logging.Logger
}

func NewChunked(backend Translator, chunkSize int, logger logging.Logger) *Chunked {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunked{backend: backend, chunkSize: chunkSize, logger: logging.Component(logger, "translate")}
}

// Translate returns text unchanged when it is shorter than five runes or
// already in dst. Longer text is sent in chunks whose translations are
// joined with a space.
func (c *Chunked) Translate(ctx context.Context, text, src, dst string) (string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTranslatableRunes {
		return text, nil
	}
	if language.Detect(text) == dst {
		return text, nil
	}

	chunks := Chunk(text, c.chunkSize)
	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		translated, err := c.backend.Translate(ctx, chunk, src, dst)
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, strings.TrimSpace(translated))
	}
	c.logger.Debug("text translated",
		logging.Field{Key: "chunks", Value: len(chunks)},
		logging.Field{Key: "target", Value: dst})
	return strings.Join(out, " "), nil
}

// Chunk splits text into pieces of at most size runes, preferring to cut
// at whitespace.
func Chunk(text string, size int) []string {
	if size <= 0 || utf8.RuneCountInString(text) <= size {
		return []string{text}
	}
	var out []string
	for len(text) > 0 {
		if utf8.RuneCountInString(text) <= size {
			out = append(out, text)
			break
		}
		// Byte offset of the rune just past the size limit.
		cut, n := len(text), 0
		for i := range text {
			if n == size {
				cut = i
				break
			}
			n++
		}
		if ws := strings.LastIndexFunc(text[:cut], unicode.IsSpace); ws > 0 {
			cut = ws
		}
		out = append(out, text[:cut])
		text = strings.TrimLeftFunc(text[cut:], unicode.IsSpace)
	}
	return out
}

// Noop returns text unchanged.
type Noop struct{}

func (Noop) Translate(_ context.Context, text, _, _ string) (string, error) { return text, nil }

// New builds the configured translator. It returns nil when translation is
// disabled or the llm provider is selected without an llm client.
func New(cfg config.TranslationConfig, client llm.Client, logger logging.Logger) Translator {
	var backend Translator
	switch cfg.Provider {
	case "libre":
		backend = NewLibre(LibreOptions{Endpoint: cfg.Endpoint, APIKey: cfg.APIKey, Timeout: cfg.Timeout})
	case "llm":
		if client == nil {
			return nil
		}
		backend = NewLLM(client)
	default:
		return nil
	}
	return NewChunked(backend, cfg.ChunkSize, logger)
}
