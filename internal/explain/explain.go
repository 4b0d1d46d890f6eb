// Package explain turns clause matches into plain-language explanations
// using a language model, with a persistent cache and template fallback.
package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/clauseguard/internal/catalog"
	"github.com/raysh454/clauseguard/internal/language"
	"github.com/raysh454/clauseguard/internal/llm"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
)

type Config struct {
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() Config {
	return Config{Temperature: 0.3, MaxTokens: 600}
}

// multiTokenBonus is added to MaxTokens for clauses with several risks.
const multiTokenBonus = 100

// Service explains clauses. A Service with a nil client always fails with
// an unavailable ServiceError so callers fall back to templates.
type Service struct {
	client llm.Client
	cache  Cache
	cfg    Config
	logger logging.Logger
}

// New builds a Service. client and cache may be nil.
func New(client llm.Client, cache Cache, cfg Config, logger logging.Logger) *Service {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Service{client: client, cache: cache, cfg: cfg, logger: logging.Component(logger, "explain")}
}

// Available reports whether a language model is configured.
func (s *Service) Available() bool { return s.client != nil }

// Explain explains clause as an instance of category in lang ("en", "hi"
// or "both").
func (s *Service) Explain(ctx context.Context, clause string, category model.RiskCategory, lang string) (*model.Explanation, error) {
	return s.ExplainMulti(ctx, clause, []model.RiskCategory{category}, lang)
}

// ExplainMulti explains a clause that matched several categories with a
// single request.
func (s *Service) ExplainMulti(ctx context.Context, clause string, categories []model.RiskCategory, lang string) (*model.Explanation, error) {
	if lang == "" {
		lang = language.English
	}
	if !language.ValidExplanationLanguage(lang) {
		return nil, model.NewInputError("explain", fmt.Errorf("%w: explanation language %q", model.ErrInvalidInput, lang))
	}
	if len(categories) == 0 {
		return nil, model.NewInputError("explain", fmt.Errorf("%w: no categories", model.ErrInvalidInput))
	}
	if s.client == nil {
		return nil, &model.ServiceError{Service: "explain", Op: "explain", Err: model.ErrServiceUnavailable}
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	key := CacheKey(s.client.Name(), lang, ids, clause)
	if cached := s.lookup(ctx, key); cached != nil {
		return cached, nil
	}

	req := llm.Request{
		System:      systemPrompt,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		JSON:        true,
	}
	if len(categories) == 1 {
		req.User = singlePrompt(clause, categories[0], lang)
	} else {
		req.User = multiPrompt(clause, categories, lang)
		req.MaxTokens += multiTokenBonus
	}

	raw, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	e, err := parseReply(raw)
	if err != nil {
		return nil, &model.ServiceError{
			Service: s.client.Name(),
			Op:      "explain",
			Err:     errors.Join(model.ErrMalformedResponse, err),
		}
	}
	e.Source = model.SourceAI
	e.Language = lang

	s.store(ctx, key, CacheEntry{Model: s.client.Name(), Language: lang, Categories: ids, Explanation: e})
	return e, nil
}

func (s *Service) lookup(ctx context.Context, key string) *model.Explanation {
	if s.cache == nil {
		return nil
	}
	e, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("explanation cache read failed", logging.Field{Key: "error", Value: err})
		return nil
	}
	if !ok {
		return nil
	}
	s.logger.Debug("explanation cache hit", logging.Field{Key: "key", Value: key[:12]})
	return e
}

func (s *Service) store(ctx context.Context, key string, entry CacheEntry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, entry); err != nil {
		s.logger.Warn("explanation cache write failed", logging.Field{Key: "error", Value: err})
	}
}

// Fallback returns the template explanation for categories in lang. Only
// the first two categories contribute. notice is attached verbatim.
func Fallback(categories []model.RiskCategory, lang, notice string) *model.Explanation {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	if lang == "" {
		lang = language.English
	}
	e := catalog.MergedExplanation(ids, lang)
	e.Notice = notice
	return e
}

// Notice describes why err led to a template explanation.
func Notice(err error) string {
	var se *model.ServiceError
	switch {
	case errors.Is(err, model.ErrRateLimited):
		return "AI explanation rate limited; showing the standard explanation for this risk."
	case errors.Is(err, model.ErrMalformedResponse):
		return "AI explanation could not be read; showing the standard explanation for this risk."
	case errors.As(err, &se) && se.Service == "explain":
		return "AI explanations are not configured; showing the standard explanation for this risk."
	default:
		return "AI explanation unavailable; showing the standard explanation for this risk."
	}
}
