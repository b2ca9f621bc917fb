// internal/config/config.go
//
// Environment-driven configuration for the server.
//
// Values are read from the process environment; main loads a `.env` file
// first (godotenv) so local development can keep settings in one place.
// Unparseable numbers and durations fall back to their defaults with a
// warning. Settings that would make the game unplayable are errors.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const devSecret = "dev_secret_change_me"

// Config holds every tunable of the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" | "console"

	GridSize      int
	DefaultLength int
	MaxLength     int
	DisplayTime   time.Duration
	RoundTTL      time.Duration
	DailySalt     string

	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	ClientOrigin  string
	Production    bool
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Port:          "5175",
		LogLevel:      "info",
		LogFormat:     "json",
		GridSize:      12,
		DefaultLength: 8,
		MaxLength:     64,
		DisplayTime:   2 * time.Second,
		RoundTTL:      30 * time.Minute,
		DailySalt:     "local_dev_salt",
		SessionSecret: devSecret,
		SessionTTL:    30 * 24 * time.Hour,
		CookieName:    "pathrecall_player",
		ClientOrigin:  "http://localhost:5173",
	}
}

// Load reads the environment on top of Default and validates the result.
func Load() (Config, error) {
	d := Default()
	c := Config{
		Port:          envStr("PORT", d.Port),
		LogLevel:      envStr("LOG_LEVEL", d.LogLevel),
		LogFormat:     strings.ToLower(envStr("LOG_FORMAT", d.LogFormat)),
		GridSize:      envInt("GRID_SIZE", d.GridSize),
		DefaultLength: envInt("DEFAULT_LENGTH", d.DefaultLength),
		MaxLength:     envInt("MAX_LENGTH", d.MaxLength),
		DisplayTime:   envDuration("DISPLAY_TIME", d.DisplayTime),
		RoundTTL:      envDuration("ROUND_TTL", d.RoundTTL),
		DailySalt:     envStr("DAILY_SALT", d.DailySalt),
		SessionSecret: envStr("SESSION_SECRET", d.SessionSecret),
		SessionTTL:    time.Duration(envInt("SESSION_DAYS", 30)) * 24 * time.Hour,
		CookieName:    envStr("COOKIE_NAME", d.CookieName),
		ClientOrigin:  envStr("CLIENT_ORIGIN", d.ClientOrigin),
		Production:    os.Getenv("APP_ENV") == "production",
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the game cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.GridSize < 2 {
		errs = append(errs, fmt.Errorf("GRID_SIZE must be at least 2, got %d", c.GridSize))
	}
	if c.MaxLength < 1 {
		errs = append(errs, fmt.Errorf("MAX_LENGTH must be positive, got %d", c.MaxLength))
	}
	if c.DefaultLength < 1 || c.DefaultLength > c.MaxLength {
		errs = append(errs, fmt.Errorf("DEFAULT_LENGTH must be within 1..%d, got %d", c.MaxLength, c.DefaultLength))
	}
	if c.DisplayTime < 0 {
		errs = append(errs, fmt.Errorf("DISPLAY_TIME must not be negative, got %s", c.DisplayTime))
	}
	if c.Production && (c.SessionSecret == "" || c.SessionSecret == devSecret) {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// envStr returns the value of k or def if unset/empty.
func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid integer, using default")
		return def
	}
	return n
}

// envDuration accepts Go durations ("2s", "1m30s") or bare milliseconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
		return def
	}
	return d
}
