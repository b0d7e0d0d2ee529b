package authgate

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the explicit configuration injected into [Service] and the
// session registry. Required fields are validated once at startup; nothing
// reads the process environment at call time.
type Config struct {
	ListenAddr string `env:"APP_ADDR" envDefault:":8080"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// SessionSecret signs every token; it has no default on purpose.
	SessionSecret    string        `env:"SESSION_SECRET"`
	SessionTTL       time.Duration `env:"SESSION_EXPIRY"   envDefault:"1h"`
	RefreshTTL       time.Duration `env:"REFRESH_EXPIRY"   envDefault:"24h"`
	RefreshThreshold time.Duration `env:"REFRESH_THRESHOLD" envDefault:"5m"`

	// APIKey guards the key-based middleware on the users surface.
	APIKey string `env:"API_KEY"`

	// MaxSessions is the concurrent-session ceiling enforced before local
	// sign-in. The count check and the session write are not atomic; see
	// Service.CheckSessionLimit.
	MaxSessions int `env:"MAX_SESSIONS" envDefault:"2"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	AuditBufferSize int `env:"AUDIT_BUFFER" envDefault:"256"`
}

// ConfigFromEnv loads configuration from environment variables and
// validates it.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the token/session subsystem depends on.
func (c Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session TTL must be positive")
	}
	if c.RefreshTTL <= 0 {
		return errors.New("config: refresh TTL must be positive")
	}
	if c.RefreshThreshold <= 0 || c.RefreshThreshold >= c.SessionTTL {
		return errors.New("config: refresh threshold must be positive and below the session TTL")
	}
	if c.MaxSessions <= 0 {
		return errors.New("config: max sessions must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: bcrypt cost out of range")
	}
	return nil
}
