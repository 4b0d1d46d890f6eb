package app

import (
	"time"

	"github.com/raysh454/clauseguard/internal/report"
)

// Config tunes the orchestrator. Results live only as long as their job;
// nothing here is persisted.
type Config struct {
	// JobRetentionTime is how long a finished job and its result stay
	// queryable. Zero keeps jobs until Close.
	JobRetentionTime time.Duration

	// JanitorInterval is how often expired jobs are evicted. Defaults to
	// a quarter of JobRetentionTime, at least one second.
	JanitorInterval time.Duration

	// EventBuffer sizes each job's event channel. Events beyond it are
	// dropped rather than blocking the analysis.
	EventBuffer int

	// Report options for rendered job results.
	Report report.Options
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		JobRetentionTime: 30 * time.Minute,
		EventBuffer:      32,
		Report:           report.Options{PreviewChars: 200},
	}
}

func (c *Config) janitorInterval() time.Duration {
	if c.JanitorInterval > 0 {
		return c.JanitorInterval
	}
	return max(c.JobRetentionTime/4, time.Second)
}
