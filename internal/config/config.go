// Package config loads clauseguard settings from an optional YAML file and
// CLAUSEGUARD_* environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/raysh454/clauseguard/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. CLAUSEGUARD_LLM_MODEL.
const EnvPrefix = "CLAUSEGUARD"

type Config struct {
	Logger      logging.Config    `mapstructure:"logger" yaml:"logger"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Extract     ExtractConfig     `mapstructure:"extract" yaml:"extract"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Translation TranslationConfig `mapstructure:"translation" yaml:"translation"`
	Scoring     ScoringConfig     `mapstructure:"scoring" yaml:"scoring"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Report      ReportConfig      `mapstructure:"report" yaml:"report"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	JobRetention   time.Duration `mapstructure:"job_retention" yaml:"job_retention"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

type ExtractConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
	MaxPages int   `mapstructure:"max_pages" yaml:"max_pages"`
}

type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint, Groq by
	// default), "gemini" or "none".
	Provider    string        `mapstructure:"provider" yaml:"provider"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKeyEnv   string        `mapstructure:"api_key_env" yaml:"api_key_env"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RequestsPerMinute caps outbound calls; 0 disables the limiter.
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries"`
	MaxElapsed        time.Duration `mapstructure:"max_elapsed" yaml:"max_elapsed"`

	// APIKey is resolved from the environment at load time and never read
	// from the config file.
	APIKey string `mapstructure:"-" yaml:"-"`
}

type TranslationConfig struct {
	// Provider is "llm", "libre" or "none".
	Provider  string        `mapstructure:"provider" yaml:"provider"`
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKeyEnv string        `mapstructure:"api_key_env" yaml:"api_key_env"`
	Target    string        `mapstructure:"target" yaml:"target"`
	ChunkSize int           `mapstructure:"chunk_size" yaml:"chunk_size"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`

	APIKey string `mapstructure:"-" yaml:"-"`
}

type ScoringConfig struct {
	MassPenalty       float64 `mapstructure:"mass_penalty" yaml:"mass_penalty"`
	DensityPenaltyMax float64 `mapstructure:"density_penalty_max" yaml:"density_penalty_max"`
	DensityCeiling    float64 `mapstructure:"density_ceiling" yaml:"density_ceiling"`
}

// CacheConfig controls the explanation cache. It is only opened when an
// LLM client is configured.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
	// MaxAge drops entries unused for longer at startup; 0 keeps everything.
	MaxAge time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

type ReportConfig struct {
	PreviewChars int           `mapstructure:"preview_chars" yaml:"preview_chars"`
	ChromePath   string        `mapstructure:"chrome_path" yaml:"chrome_path"`
	PDFTimeout   time.Duration `mapstructure:"pdf_timeout" yaml:"pdf_timeout"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	l := logging.DefaultConfig()
	v.SetDefault("logger.level", l.Level)
	v.SetDefault("logger.format", l.Format)
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", l.ServiceName)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", l.MaxSize)
	v.SetDefault("logger.max_backups", l.MaxBackups)
	v.SetDefault("logger.max_age", l.MaxAge)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", l.Colors.Debug)
	v.SetDefault("logger.colors.info", l.Colors.Info)
	v.SetDefault("logger.colors.warn", l.Colors.Warn)
	v.SetDefault("logger.colors.error", l.Colors.Error)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.job_retention", "30m")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.max_upload_bytes", 20<<20)

	v.SetDefault("extract.max_bytes", 20<<20)
	v.SetDefault("extract.max_pages", 200)

	v.SetDefault("llm.provider", "openai")
	// Empty base_url and model select the provider's own defaults.
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key_env", "GROQ_API_KEY")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 600)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.requests_per_minute", 30)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.max_elapsed", "45s")

	v.SetDefault("translation.provider", "llm")
	v.SetDefault("translation.endpoint", "")
	v.SetDefault("translation.api_key_env", "LIBRETRANSLATE_API_KEY")
	v.SetDefault("translation.target", "en")
	v.SetDefault("translation.chunk_size", 4500)
	v.SetDefault("translation.timeout", "30s")

	v.SetDefault("scoring.mass_penalty", 2.5)
	v.SetDefault("scoring.density_penalty_max", 25.0)
	v.SetDefault("scoring.density_ceiling", 20.0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "clauseguard-cache.db")
	v.SetDefault("cache.max_age", "720h")

	v.SetDefault("report.preview_chars", 200)
	v.SetDefault("report.chrome_path", "")
	v.SetDefault("report.pdf_timeout", "30s")
}

// NewViper returns a viper instance with defaults, the env prefix and the
// key replacer installed. When file is non-empty it is read; a missing
// default config file is not an error.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("clauseguard")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals v, resolves API keys from the environment and validates
// the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.resolveSecrets(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration with secrets resolved from the
// environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.resolveSecrets(os.Getenv)
	return &cfg
}

func (c *Config) resolveSecrets(getenv func(string) string) {
	if c.LLM.APIKeyEnv != "" {
		c.LLM.APIKey = cleanKey(getenv(c.LLM.APIKeyEnv))
	}
	if c.Translation.APIKeyEnv != "" {
		c.Translation.APIKey = cleanKey(getenv(c.Translation.APIKeyEnv))
	}
}

// cleanKey strips whitespace and quotes that commonly sneak into .env files.
func cleanKey(k string) string {
	return strings.Trim(strings.TrimSpace(k), `"'`)
}

// Validate checks for unusable values.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini", "none":
	default:
		return fmt.Errorf("llm.provider must be openai, gemini or none, got %q", c.LLM.Provider)
	}
	switch c.Translation.Provider {
	case "llm", "libre", "none":
	default:
		return fmt.Errorf("translation.provider must be llm, libre or none, got %q", c.Translation.Provider)
	}
	if c.Translation.Provider == "libre" && c.Translation.Endpoint == "" {
		return errors.New("translation.endpoint is required for the libre provider")
	}
	if c.Translation.ChunkSize <= 0 {
		return errors.New("translation.chunk_size must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	if c.LLM.RequestsPerMinute < 0 || c.LLM.MaxRetries < 0 {
		return errors.New("llm.requests_per_minute and llm.max_retries must not be negative")
	}
	if c.Scoring.MassPenalty < 0 || c.Scoring.DensityPenaltyMax < 0 {
		return errors.New("scoring penalties must not be negative")
	}
	if c.Scoring.DensityCeiling <= 0 {
		return errors.New("scoring.density_ceiling must be positive")
	}
	if c.Extract.MaxBytes <= 0 || c.Server.MaxUploadBytes <= 0 {
		return errors.New("extract.max_bytes and server.max_upload_bytes must be positive")
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return errors.New("cache.path is required when the cache is enabled")
	}
	if c.Cache.MaxAge < 0 {
		return errors.New("cache.max_age must not be negative")
	}
	return nil
}

// ExplanationsEnabled reports whether an LLM provider is configured with a
// usable key.
func (c *Config) ExplanationsEnabled() bool {
	return c.LLM.Provider != "none" && c.LLM.APIKey != ""
}
