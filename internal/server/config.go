package server

import (
	"time"

	"github.com/raysh454/clauseguard/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string

	ReadTimeout time.Duration

	// MaxUploadBytes caps request bodies. Larger uploads get 413.
	MaxUploadBytes int64

	// Version is reported by /health.
	Version string

	Logger logging.Logger
}

// DefaultConfig mirrors the server section of the default configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		AllowedOrigins: []string{"*"},
		ReadTimeout:    15 * time.Second,
		MaxUploadBytes: 20 << 20,
		Version:        "dev",
	}
}
