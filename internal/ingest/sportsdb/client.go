package sportsdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	BaseURL        = "https://www.thesportsdb.com/api/v1/json"
	DefaultTimeout = 10 * time.Second
)

// ErrThrottled is returned when the local rate limiter cannot admit a
// request before the context deadline. No request reaches the provider.
var ErrThrottled = errors.New("sportsdb: request throttled")

// Config configures the secondary provider client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSecond caps outbound searches; 0 means unlimited.
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Breaker           ingest.BreakerConfig
}

// Client searches TheSportsDB for players by name. It applies a rate limit
// and a circuit breaker to every request; caching is the caller's concern.
type Client struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	log         logrus.FieldLogger
}

// New creates a secondary provider client.
func New(cfg Config, log logrus.FieldLogger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 8
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "sportsdb")

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		timeout:     cfg.Timeout,
		httpClient:  cfg.HTTPClient,
		rateLimiter: rate.NewLimiter(limit, cfg.Burst),
		breaker:     ingest.NewBreaker("thesportsdb", cfg.Breaker, log),
		log:         log,
	}
}

// SearchPlayers returns the provider's candidates for name. A response with
// no "player" field (or null) yields a nil slice and no error.
func (c *Client) SearchPlayers(ctx context.Context, name string) ([]Player, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThrottled, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.search(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	return result.([]Player), nil
}

func (c *Client) search(ctx context.Context, name string) ([]Player, error) {
	endpoint := fmt.Sprintf("%s/%s/searchplayers.php?p=%s",
		c.baseURL, url.PathEscape(c.apiKey), url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"name":       name,
		"candidates": len(payload.Player),
	}).Debug("Player search complete")

	return payload.Player, nil
}
