package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"POSTBOARD_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"POSTBOARD_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"POSTBOARD_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"POSTBOARD_IDLE_TIMEOUT"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"POSTBOARD_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"POSTBOARD_API_TIMEOUT"`
	// FetchTimeout bounds a fetch started from a page view.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"POSTBOARD_FETCH_TIMEOUT"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"POSTBOARD_DB_DSN"`
}

type SessionConfig struct {
	MaxAge          time.Duration `yaml:"max_age" env:"POSTBOARD_SESSION_MAX_AGE"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"POSTBOARD_SESSION_CLEANUP"`
	CookieSecure    bool          `yaml:"cookie_secure" env:"POSTBOARD_COOKIE_SECURE"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"rps" env:"POSTBOARD_RATE_RPS"`
	Burst             int     `yaml:"burst" env:"POSTBOARD_RATE_BURST"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"POSTBOARD_LOG_LEVEL"`
	Format string `yaml:"format" env:"POSTBOARD_LOG_FORMAT"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		API: APIConfig{
			BaseURL:      "http://localhost:3000/fakeApi",
			Timeout:      10 * time.Second,
			FetchTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{DSN: "file:sessions?mode=memory&cache=shared"},
		Session: SessionConfig{
			MaxAge:          24 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory, and POSTBOARD_* variables, in
// increasing order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("decode environment: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server address is empty", ErrInvalid)
	case c.API.BaseURL == "":
		return fmt.Errorf("%w: api base url is empty", ErrInvalid)
	case c.Database.DSN == "":
		return fmt.Errorf("%w: database dsn is empty", ErrInvalid)
	case c.Session.MaxAge <= 0:
		return fmt.Errorf("%w: session max age must be positive", ErrInvalid)
	case c.Session.CleanupInterval <= 0:
		return fmt.Errorf("%w: session cleanup interval must be positive", ErrInvalid)
	case c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0:
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
