package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/clauseguard/internal/assessment"
	"github.com/raysh454/clauseguard/internal/config"
	"github.com/raysh454/clauseguard/internal/explain"
	"github.com/raysh454/clauseguard/internal/extract"
	"github.com/raysh454/clauseguard/internal/llm"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/matcher"
	"github.com/raysh454/clauseguard/internal/report"
	"github.com/raysh454/clauseguard/internal/scoring"
	"github.com/raysh454/clauseguard/internal/translate"
)

// Application is the runtime state shared by the CLI and the HTTP server:
// config, logger, the orchestrator and the resources it owns.
type Application struct {
	Config *config.Config
	Logger logging.Logger
	Orch   *Orchestrator

	// LLM is nil when explanations are not configured.
	LLM   llm.Client
	cache *explain.SQLiteCache
}

// NewApplication wires every pipeline component from cfg.
func NewApplication(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	if client == nil {
		logger.Info("no llm configured, using standard explanations",
			logging.Field{Key: "provider", Value: cfg.LLM.Provider})
	}

	var (
		cache    explain.Cache
		sqlCache *explain.SQLiteCache
	)
	// Without a client every explanation is a template, so there is
	// nothing worth persisting.
	if cfg.Cache.Enabled && client != nil {
		sqlCache, err = explain.OpenCache(cfg.Cache.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening explanation cache: %w", err)
		}
		pruneCache(ctx, sqlCache, cfg.Cache.MaxAge, logger)
		cache = sqlCache
	}

	scorer, err := scoring.New(scoring.Config{
		MassPenalty:       cfg.Scoring.MassPenalty,
		DensityPenaltyMax: cfg.Scoring.DensityPenaltyMax,
		DensityCeiling:    cfg.Scoring.DensityCeiling,
	})
	if err != nil {
		if sqlCache != nil {
			_ = sqlCache.Close()
		}
		return nil, err
	}

	analyzer := assessment.NewAnalyzer(assessment.Deps{
		Extractor: extract.New(extract.Config{MaxBytes: cfg.Extract.MaxBytes, MaxPages: cfg.Extract.MaxPages}, logger),
		Matcher: matcher.New(matcher.Config{
			PreviewChars: cfg.Report.PreviewChars,
			Target:       cfg.Translation.Target,
		}, translate.New(cfg.Translation, client, logger), logger),
		Explainer: explain.New(client, cache, explain.Config{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}, logger),
		Scorer: scorer,
	}, logger)

	orch := NewOrchestrator(&Config{
		JobRetentionTime: cfg.Server.JobRetention,
		EventBuffer:      DefaultConfig().EventBuffer,
		Report: report.Options{
			PreviewChars: cfg.Report.PreviewChars,
			ChromePath:   cfg.Report.ChromePath,
			PDFTimeout:   cfg.Report.PDFTimeout,
		},
	}, analyzer, logger)

	return &Application{
		Config: cfg,
		Logger: logger,
		Orch:   orch,
		LLM:    client,
		cache:  sqlCache,
	}, nil
}

// pruneCache drops entries unused for longer than maxAge. Failures only
// cost cache hits, so they are logged.
func pruneCache(ctx context.Context, c *explain.SQLiteCache, maxAge time.Duration, logger logging.Logger) {
	if maxAge <= 0 {
		return
	}
	n, err := c.Prune(ctx, time.Now().Add(-maxAge))
	if err != nil {
		logger.Warn("explanation cache prune failed", logging.Field{Key: "error", Value: err})
		return
	}
	if n > 0 {
		logger.Info("pruned explanation cache",
			logging.Field{Key: "removed", Value: n},
			logging.Field{Key: "max_age", Value: maxAge.String()})
	}
}

// Shutdown stops the orchestrator and closes the explanation cache.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	done := make(chan struct{})
	go func() {
		a.Orch.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for jobs: %w", ctx.Err())
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			return fmt.Errorf("closing explanation cache: %w", err)
		}
	}
	return nil
}
