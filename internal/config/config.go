// internal/config/config.go
//
// Server configuration from the environment (optionally seeded from .env).
// Every setting has a development default; Validate reports all problems at once.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const devSecret = "dev_secret_change_me"

type Config struct {
	Port         string
	DBPath       string
	DatabaseURL  string // when set, Postgres backs the dictionary, puzzles and results
	LogLevel     string
	DailySalt    string
	TicketSecret string
	ClientOrigin string
	Production   bool

	MaxTurns         int  // 0 = uncapped
	StrictWordLookup bool // surface dictionary outages as lookup_unavailable
	WordsFile        string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		Port:         getEnv("PORT", "5175"),
		DBPath:       getEnv("DB_PATH", "./data/app.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		TicketSecret: getEnv("TICKET_SECRET", devSecret),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production" || os.Getenv("APP_ENV") == "production",
		WordsFile:    os.Getenv("WORDS_FILE"),
	}

	var errs []error
	var err error
	if c.MaxTurns, err = getInt("MAX_TURNS", 0); err != nil {
		errs = append(errs, err)
	}
	if c.StrictWordLookup, err = getBool("STRICT_WORD_LOOKUP", false); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 5); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 10); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}
	return c, c.Validate()
}

// Validate checks ranges and production requirements.
func (c Config) Validate() error {
	var errs []error
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.MaxTurns < 0 {
		errs = append(errs, errors.New("MAX_TURNS must be >= 0"))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be > 0"))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be >= 1"))
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH or DATABASE_URL is required"))
	}
	if c.Production && c.TicketSecret == devSecret {
		errs = append(errs, errors.New("TICKET_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
