package sportsdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	BaseURL        = "https://api.sportsdata.io"
	DefaultTimeout = 20 * time.Second

	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
	seasonStatsPath       = "/api/nfl/fantasy/json/PlayerSeasonStats/"
)

// Config configures the primary provider client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Breaker    ingest.BreakerConfig
}

// Client fetches season stats from the primary provider and memoizes
// successful responses in the stats cache.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	cache      *cache.Expiring[[]StatRow]
	breaker    *gobreaker.CircuitBreaker
	log        logrus.FieldLogger
}

// New creates a primary provider client. stats must not be nil.
func New(cfg Config, stats *cache.Expiring[[]StatRow], log logrus.FieldLogger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "sportsdata")

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		cache:      stats,
		breaker:    ingest.NewBreaker("sportsdata", cfg.Breaker, log),
		log:        log,
	}
}

// CacheKey is the stats cache key for a season.
func CacheKey(season string) string {
	return "player_season_stats_" + season
}

// FetchSeasonStats returns every player season-stat row for season, from the
// cache when fresh. Failures are returned as *StatsFetchError and never cached.
func (c *Client) FetchSeasonStats(ctx context.Context, season string) ([]StatRow, error) {
	if rows, ok := c.cache.Get(CacheKey(season)); ok {
		return rows, nil
	}
	return c.load(ctx, season)
}

// RefreshSeasonStats fetches season from the provider regardless of the
// cache. The cached rows are replaced only on success.
func (c *Client) RefreshSeasonStats(ctx context.Context, season string) ([]StatRow, error) {
	return c.load(ctx, season)
}

func (c *Client) load(ctx context.Context, season string) ([]StatRow, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, season)
	})
	if err != nil {
		if !IsStatsFetchError(err) {
			err = &StatsFetchError{Season: season, Err: err}
		}
		return nil, err
	}

	rows := result.([]StatRow)
	c.cache.Set(CacheKey(season), rows, cache.SeasonStatsTTL)

	c.log.WithFields(logrus.Fields{
		"season": season,
		"rows":   len(rows),
	}).Info("Fetched season stats")

	return rows, nil
}

func (c *Client) fetch(ctx context.Context, season string) ([]StatRow, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + seasonStatsPath + url.PathEscape(season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &StatsFetchError{Season: season, Err: err}
	}
	req.Header.Set(subscriptionKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &StatsFetchError{Season: season, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatsFetchError{
			Season:     season,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StatsFetchError{Season: season, Err: fmt.Errorf("reading body: %w", err)}
	}

	return decodeRows(body, c.log), nil
}

// decodeRows turns a provider payload into rows. Anything that is not a JSON
// array decodes to an empty set; non-object elements are dropped.
func decodeRows(body []byte, log logrus.FieldLogger) []StatRow {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		log.WithError(err).Warn("Season stats payload is not valid JSON, treating as empty")
		return []StatRow{}
	}

	items, ok := payload.([]interface{})
	if !ok {
		log.Warn("Season stats payload is not an array, treating as empty")
		return []StatRow{}
	}

	rows := make([]StatRow, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			rows = append(rows, StatRow(obj))
		}
	}
	return rows
}
