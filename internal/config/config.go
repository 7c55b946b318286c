package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	minAuthSecretLen = 32
)

type Config struct {
	Host           string `env:"HOST"             envDefault:"0.0.0.0"`
	Port           string `env:"PORT"             envDefault:"8080"`
	DBPath         string `env:"DB_PATH"          envDefault:"db.sqlite"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	CompletionProvider string        `env:"COMPLETION_PROVIDER" envDefault:"openai"`
	CompletionTimeout  time.Duration `env:"COMPLETION_TIMEOUT"  envDefault:"60s"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL"    envDefault:"gpt-4o-mini"`

	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL"    envDefault:"claude-sonnet-4-5-20250929"`

	SummaryCacheSize int           `env:"SUMMARY_CACHE_SIZE" envDefault:"256"`
	SummaryCacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL"  envDefault:"24h"`

	AuthSecret   string        `env:"AUTH_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"720h"`
	CookieSecure bool          `env:"COOKIE_SECURE"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	HistoryRetention time.Duration `env:"HISTORY_RETENTION" envDefault:"0s"`

	// PDFFontPath points to a TrueType font for PDF exports, for scripts the
	// built-in fonts do not cover.
	PDFFontPath string `env:"PDF_FONT_PATH"`

	TelegramToken        string  `env:"TELEGRAM_TOKEN"`
	TelegramAllowedUsers []int64 `env:"TELEGRAM_ALLOWED_USERS"`
}

// Error reports an invalid configuration value.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) normalize() {
	c.CompletionProvider = strings.ToLower(strings.TrimSpace(c.CompletionProvider))
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.AnthropicAPIKey = strings.TrimSpace(c.AnthropicAPIKey)
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.GoogleClientID = strings.TrimSpace(c.GoogleClientID)
	c.GoogleClientSecret = strings.TrimSpace(c.GoogleClientSecret)
}

func (c *Config) validate() error {
	switch c.CompletionProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return &Error{Field: "OPENAI_API_KEY", Message: "required when COMPLETION_PROVIDER is openai"}
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return &Error{Field: "ANTHROPIC_API_KEY", Message: "required when COMPLETION_PROVIDER is anthropic"}
		}
	default:
		return &Error{Field: "COMPLETION_PROVIDER", Message: "must be openai or anthropic"}
	}

	if c.MaxUploadBytes <= 0 {
		return &Error{Field: "MAX_UPLOAD_BYTES", Message: "must be positive"}
	}

	if c.AuthSecret != "" && len(c.AuthSecret) < minAuthSecretLen {
		return &Error{Field: "AUTH_SECRET", Message: fmt.Sprintf("must be at least %d bytes", minAuthSecretLen)}
	}

	if c.SessionTTL <= 0 {
		return &Error{Field: "SESSION_TTL", Message: "must be positive"}
	}

	if c.HistoryRetention < 0 {
		return &Error{Field: "HISTORY_RETENTION", Message: "must not be negative"}
	}

	if c.GoogleEnabled() && c.GoogleRedirectURL == "" {
		return &Error{Field: "GOOGLE_REDIRECT_URL", Message: "required when Google sign-in is configured"}
	}

	return nil
}
