// Package appconfig loads process configuration for the demo server from
// the environment, after an optional .env file.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParsingConfig = errors.New("appconfig: parse environment")
	ErrInvalidConfig = errors.New("appconfig: invalid value")
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the demo process configuration.
type Config struct {
	HTTPAddr        string        `env:"GOGATE_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"GOGATE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Store       string `env:"GOGATE_STORE" envDefault:"memory"`
	StoreFile   string `env:"GOGATE_STORE_FILE" envDefault:"gogate-session.json"`
	RedisAddr   string `env:"GOGATE_REDIS_ADDR"`
	RedisPrefix string `env:"GOGATE_REDIS_PREFIX" envDefault:"gogate:"`

	PolicyFile string `env:"GOGATE_POLICY_FILE"`

	LogLevel  string `env:"GOGATE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"GOGATE_LOG_FORMAT" envDefault:"console"`

	TokenSecret string        `env:"GOGATE_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"GOGATE_TOKEN_TTL" envDefault:"1h"`
	LoginDelay  time.Duration `env:"GOGATE_LOGIN_DELAY" envDefault:"1s"`

	// Failed-login throttling needs the redis store.
	LoginMaxAttempts int           `env:"GOGATE_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"GOGATE_LOGIN_WINDOW" envDefault:"15m"`

	Metrics bool `env:"GOGATE_METRICS" envDefault:"true"`
	Audit   bool `env:"GOGATE_AUDIT" envDefault:"true"`
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, path := range dotenv {
		// A missing file is the common case.
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap parses cfg from environ alone, ignoring the process environment.
func FromMap(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalizes enum fields and checks their values.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	switch c.Store {
	case StoreMemory, StoreRedis:
	case StoreFile:
		if strings.TrimSpace(c.StoreFile) == "" {
			return fmt.Errorf("%w: GOGATE_STORE_FILE required for file store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: GOGATE_STORE=%q", ErrInvalidConfig, c.Store)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%w: GOGATE_LOG_FORMAT=%q", ErrInvalidConfig, c.LogFormat)
	}

	if c.LoginDelay < 0 {
		return fmt.Errorf("%w: GOGATE_LOGIN_DELAY must not be negative", ErrInvalidConfig)
	}
	if c.TokenSecret != "" && len(c.TokenSecret) < 16 {
		return fmt.Errorf("%w: GOGATE_TOKEN_SECRET must be at least 16 bytes", ErrInvalidConfig)
	}
	if c.LoginMaxAttempts <= 0 || c.LoginWindow <= 0 {
		return fmt.Errorf("%w: GOGATE_LOGIN_MAX_ATTEMPTS and GOGATE_LOGIN_WINDOW must be positive", ErrInvalidConfig)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: GOGATE_TOKEN_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}
