package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DISCOVERYLAB_API_KEY": "dl-key",
	}))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultWSPort, cfg.WSPort)
	assert.Equal(t, DefaultSeason, cfg.Season)
	assert.Equal(t, DefaultEnrichConcurrency, cfg.EnrichConcurrency)
	assert.Equal(t, DefaultEnrichLimit, cfg.EnrichLimit)
	assert.Equal(t, DefaultSportsDBRateLimit, cfg.SportsDBRateLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.EnrichmentEnabled())
}

func TestLoadFrom_MissingPrimaryKey(t *testing.T) {
	_, err := LoadFrom(envMap(map[string]string{
		"SPORTSDB_API_KEY": "3",
	}))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "DISCOVERYLAB_API_KEY", cfgErr.Key)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DISCOVERYLAB_API_KEY": "dl-key",
		"SPORTSDB_API_KEY":     "123",
		"PORT":                 "9000",
		"WS_PORT":              "off",
		"SEASON":               "2024REG",
		"ENRICH_CONCURRENCY":   "16",
		"ENRICH_LIMIT":         "0",
		"SPORTSDB_BASE_URL":    "http://sportsdb.local/api/",
		"SPORTSDB_RATE_LIMIT":  "2.5",
		"CORS_ORIGINS":         "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Empty(t, cfg.WSPort)
	assert.Equal(t, "2024REG", cfg.Season)
	assert.Equal(t, 16, cfg.EnrichConcurrency)
	assert.Equal(t, 0, cfg.EnrichLimit)
	assert.Equal(t, "http://sportsdb.local/api", cfg.SportsDBBaseURL)
	assert.Equal(t, 2.5, cfg.SportsDBRateLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.EnrichmentEnabled())
}

func TestLoadFrom_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric concurrency", "ENRICH_CONCURRENCY", "lots"},
		{"negative limit", "ENRICH_LIMIT", "-1"},
		{"bad rate", "SPORTSDB_RATE_LIMIT", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(map[string]string{
				"DISCOVERYLAB_API_KEY": "dl-key",
				tt.key:                 tt.val,
			}))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}
