// Package config loads gridiron settings from the environment.
//
// Environment Variables:
//
//   - DISCOVERYLAB_API_KEY: primary provider subscription key (required)
//   - SPORTSDB_API_KEY: secondary provider key (optional; enrichment is disabled without it)
//   - PORT: REST port (default: 5000)
//   - WS_PORT: websocket feed port, "off" disables the feed (default: 5001)
//   - SEASON: season identifier (default: 2025REG)
//   - ENRICH_CONCURRENCY: enrichment workers (default: 8)
//   - ENRICH_LIMIT: max players enriched per roster build, 0 disables (default: 3000)
//   - SPORTSDATA_BASE_URL, SPORTSDB_BASE_URL: provider base URLs
//   - SPORTSDB_RATE_LIMIT: secondary provider requests per second (default: 10)
//   - CORS_ORIGINS: comma separated allowed origins (default: http://localhost:3000)
//   - REDIS_URL: roster event stream (optional)
//   - ATLAS_DSN: Postgres DSN for the lookup audit table (optional)
//   - WARM_SCHEDULE: cron spec for roster cache warm-up (optional)
//   - LOG_LEVEL, LOG_FORMAT: logging
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultPort              = "5000"
	DefaultWSPort            = "5001"
	DefaultSeason            = "2025REG"
	DefaultEnrichConcurrency = 8
	DefaultEnrichLimit       = 3000
	DefaultSportsDataBaseURL = "https://api.sportsdata.io"
	DefaultSportsDBBaseURL   = "https://www.thesportsdb.com/api/v1/json"
	DefaultSportsDBRateLimit = 10.0
	DefaultCORSOrigins       = "http://localhost:3000"
)

// ConfigError reports a missing or malformed setting. It is fatal at startup.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// Config holds all process settings.
type Config struct {
	Port   string
	WSPort string
	Season string

	DiscoveryLabAPIKey string
	SportsDBAPIKey     string

	SportsDataBaseURL string
	SportsDBBaseURL   string
	SportsDBRateLimit float64

	EnrichConcurrency int
	EnrichLimit       int

	CORSOrigins  []string
	RedisURL     string
	AtlasDSN     string
	WarmSchedule string

	LogLevel  string
	LogFormat string
}

// EnrichmentEnabled reports whether a secondary provider key is configured.
func (c Config) EnrichmentEnabled() bool {
	return c.SportsDBAPIKey != ""
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration using the given lookup function.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, defaultValue string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return defaultValue
	}

	cfg := Config{
		Port:               env("PORT", DefaultPort),
		WSPort:             env("WS_PORT", DefaultWSPort),
		Season:             env("SEASON", DefaultSeason),
		DiscoveryLabAPIKey: env("DISCOVERYLAB_API_KEY", ""),
		SportsDBAPIKey:     env("SPORTSDB_API_KEY", ""),
		SportsDataBaseURL:  strings.TrimRight(env("SPORTSDATA_BASE_URL", DefaultSportsDataBaseURL), "/"),
		SportsDBBaseURL:    strings.TrimRight(env("SPORTSDB_BASE_URL", DefaultSportsDBBaseURL), "/"),
		CORSOrigins:        splitList(env("CORS_ORIGINS", DefaultCORSOrigins)),
		RedisURL:           env("REDIS_URL", ""),
		AtlasDSN:           env("ATLAS_DSN", ""),
		WarmSchedule:       env("WARM_SCHEDULE", ""),
		LogLevel:           env("LOG_LEVEL", "info"),
		LogFormat:          env("LOG_FORMAT", "json"),
	}

	if strings.EqualFold(cfg.WSPort, "off") {
		cfg.WSPort = ""
	}

	if cfg.DiscoveryLabAPIKey == "" {
		return Config{}, &ConfigError{Key: "DISCOVERYLAB_API_KEY", Reason: "required"}
	}

	var err error
	if cfg.EnrichConcurrency, err = intEnv(env, "ENRICH_CONCURRENCY", DefaultEnrichConcurrency); err != nil {
		return Config{}, err
	}
	if cfg.EnrichConcurrency == 0 {
		cfg.EnrichConcurrency = DefaultEnrichConcurrency
	}
	if cfg.EnrichLimit, err = intEnv(env, "ENRICH_LIMIT", DefaultEnrichLimit); err != nil {
		return Config{}, err
	}

	rate := env("SPORTSDB_RATE_LIMIT", "")
	cfg.SportsDBRateLimit = DefaultSportsDBRateLimit
	if rate != "" {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil || v < 0 {
			return Config{}, &ConfigError{Key: "SPORTSDB_RATE_LIMIT", Reason: fmt.Sprintf("invalid value %q", rate)}
		}
		cfg.SportsDBRateLimit = v
	}

	return cfg, nil
}

func intEnv(env func(string, string) string, key string, defaultValue int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &ConfigError{Key: key, Reason: fmt.Sprintf("invalid value %q", raw)}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
