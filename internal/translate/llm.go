package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/llm"
)

// LLM translates with a chat model.
type LLM struct {
	client llm.Client
}

func NewLLM(client llm.Client) *LLM { return &LLM{client: client} }

const translateSystem = "You are a precise legal translator. Preserve meaning, numbers and party names. Reply with the translation only."

func (t *LLM) Translate(ctx context.Context, text, src, dst string) (string, error) {
	from := "the source language"
	if src != "" && src != "auto" {
		from = language.DisplayName(src)
	}
	prompt := fmt.Sprintf("Translate the following contract text from %s to %s.\n\n%s", from, language.DisplayName(dst), text)

	out, err := t.client.Generate(ctx, llm.Request{
		System:      translateSystem,
		User:        prompt,
		Temperature: 0.1,
		// Devanagari tokenizes densely; leave headroom over the input.
		MaxTokens: 2*len([]rune(text)) + 64,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
