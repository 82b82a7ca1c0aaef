// Package config loads service settings from the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings.
type Config struct {
	// Auth
	SecretKey      string
	AccessTokenTTL time.Duration
	ClockSkew      time.Duration
	BcryptCost     int

	// Storage
	UsersDBPath   string
	HistoryDBPath string
	DatabaseURL   string
	StoreTimeout  time.Duration

	// Text generation
	ModelToken        string
	ModelID           string
	ModelEndpoint     string
	ModelMaxNewTokens int
	ModelTimeout      time.Duration
	Workers           int
	QueueSize         int

	// HTTP
	HTTPAddr         string
	CORSAllowOrigins string
	RequireAuthForQA bool

	ShutdownTimeout time.Duration
}

// Load reads a .env file from the working directory when one exists and then
// builds the configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
// A missing signing key or model credential is an error.
func FromEnv() (Config, error) {
	p := parser{}

	cfg := Config{
		SecretKey:      os.Getenv("JWT_SECRET_KEY"),
		AccessTokenTTL: p.duration("JWT_ACCESS_TOKEN_TTL", 30*time.Minute),
		ClockSkew:      p.duration("JWT_CLOCK_SKEW", 0),
		BcryptCost:     p.integer("BCRYPT_COST", 12),

		UsersDBPath:   getEnv("USERS_DB_PATH", "users.db"),
		HistoryDBPath: getEnv("HISTORY_DB_PATH", "questions.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StoreTimeout:  p.duration("STORE_TIMEOUT", 5*time.Second),

		ModelToken:        os.Getenv("HF_TOKEN"),
		ModelID:           getEnv("MODEL_ID", "facebook/opt-1.3b"),
		ModelEndpoint:     strings.TrimRight(getEnv("MODEL_ENDPOINT", "https://api-inference.huggingface.co/models"), "/"),
		ModelMaxNewTokens: p.integer("MODEL_MAX_NEW_TOKENS", 50),
		ModelTimeout:      p.duration("MODEL_TIMEOUT", 60*time.Second),
		Workers:           p.integer("QA_WORKERS", 2),
		QueueSize:         p.integer("QA_QUEUE_SIZE", 16),

		HTTPAddr:         getEnv("HTTP_ADDR", ":8000"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		RequireAuthForQA: p.boolean("REQUIRE_AUTH_FOR_QA", false),

		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if cfg.ModelToken == "" {
		cfg.ModelToken = os.Getenv("Token")
	}

	if err := p.err(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.ModelToken == "" {
		errs = append(errs, errors.New("model access token is required (set HF_TOKEN)"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_TTL must be positive"))
	}
	if c.ClockSkew < 0 {
		errs = append(errs, errors.New("JWT_CLOCK_SKEW must not be negative"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.ModelTimeout <= 0 {
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}
	if c.ModelMaxNewTokens <= 0 {
		errs = append(errs, errors.New("MODEL_MAX_NEW_TOKENS must be positive"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("QA_WORKERS must be positive"))
	}
	if c.QueueSize < 0 {
		errs = append(errs, errors.New("QA_QUEUE_SIZE must not be negative"))
	}

	return errors.Join(errs...)
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser collects conversion errors so every malformed variable is reported at once.
type parser struct {
	errs []error
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return b
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}
