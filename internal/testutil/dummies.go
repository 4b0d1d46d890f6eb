// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without network access.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/clauseguard/internal/llm"
	"github.com/raysh454/clauseguard/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount is safe to call while the logger is in use.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── LLM ───────────────────────────────────────────────────────────────

// DummyLLM implements llm.Client.
// By default it answers every request with Reply. When Err is set every
// call fails with it. Respond, if non-nil, takes precedence over both.
type DummyLLM struct {
	Reply         string
	Err           error
	Respond       func(req llm.Request) (string, error)
	ResponseDelay time.Duration

	mu       sync.Mutex
	Requests []llm.Request
}

func (d *DummyLLM) Name() string { return "dummy:test" }

func (d *DummyLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	switch {
	case d.Respond != nil:
		return d.Respond(req)
	case d.Err != nil:
		return "", d.Err
	}
	return d.Reply, nil
}

// Calls returns how many requests reached the client.
func (d *DummyLLM) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ExplanationJSON renders the four-section reply an explanation prompt
// expects.
func ExplanationJSON(meaning, risk, beneficiary, recommendation string) string {
	return fmt.Sprintf(`{"meaning":%q,"risk":%q,"beneficiary":%q,"recommendation":%q}`,
		meaning, risk, beneficiary, recommendation)
}

// ─── Translator ────────────────────────────────────────────────────────

// DummyTranslator implements translate.Translator with a fixed dictionary.
// Unknown input is returned upper-cased so tests can see it went through.
type DummyTranslator struct {
	Dict map[string]string
	Err  error

	mu    sync.Mutex
	Calls int
}

func (d *DummyTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	d.mu.Lock()
	d.Calls++
	d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	if out, ok := d.Dict[text]; ok {
		return out, nil
	}
	return strings.ToUpper(text), nil
}
