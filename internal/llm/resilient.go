package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/raysh454/clauseguard/internal/logging"
)

// ResilientConfig bounds retries and request rate.
type ResilientConfig struct {
	// RequestsPerMinute is the sustained call rate; 0 disables limiting.
	RequestsPerMinute int
	// MaxRetries is the number of extra attempts after the first.
	MaxRetries int
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// MaxElapsed caps the total time spent retrying.
	MaxElapsed time.Duration
}

// Resilient wraps a Client with a token bucket and exponential backoff.
// Only rate limits, timeouts and 5xx failures are retried.
type Resilient struct {
	next    Client
	limiter *rate.Limiter
	cfg     ResilientConfig
	logger  logging.Logger
}

func NewResilient(next Client, cfg ResilientConfig, logger logging.Logger) *Resilient {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 45 * time.Second
	}
	var lim *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &Resilient{
		next:    next,
		limiter: lim,
		cfg:     cfg,
		logger:  logging.Component(logger, "llm"),
	}
}

func (r *Resilient) Name() string { return r.next.Name() }

func (r *Resilient) Generate(ctx context.Context, req Request) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxElapsedTime = r.cfg.MaxElapsed

	var (
		out     string
		attempt int
	)
	op := func() error {
		attempt++
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		text, err := r.next.Generate(ctx, req)
		if err == nil {
			out = text
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		r.logger.Warn("llm call failed, retrying",
			logging.Field{Key: "client", Value: r.next.Name()},
			logging.Field{Key: "attempt", Value: attempt},
			logging.Field{Key: "error", Value: err})
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return out, nil
}
