package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/enrichment"
	"github.com/fortuna/gridiron/internal/ingest/sportsdata"
	"github.com/fortuna/gridiron/internal/roster"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultBuildTimeout bounds one roster build, including enrichment, when
// no rate-derived timeout is configured.
const DefaultBuildTimeout = 5 * time.Minute

// buildTimeoutBase covers the primary fetch and the tail of enrichment.
const buildTimeoutBase = 2 * time.Minute

// BuildTimeoutFor sizes the build deadline so that limit secondary lookups at
// rps requests per second fit twice over. A zero rps means unthrottled.
func BuildTimeoutFor(limit int, rps float64) time.Duration {
	if limit <= 0 || rps <= 0 {
		return DefaultBuildTimeout
	}
	paced := time.Duration(float64(limit) / rps * float64(time.Second))
	if d := buildTimeoutBase + 2*paced; d > DefaultBuildTimeout {
		return d
	}
	return DefaultBuildTimeout
}

// StatsSource fetches season stat rows from the primary provider.
type StatsSource interface {
	FetchSeasonStats(ctx context.Context, season string) ([]sportsdata.StatRow, error)
	// RefreshSeasonStats bypasses the cache and replaces it only on success.
	RefreshSeasonStats(ctx context.Context, season string) ([]sportsdata.StatRow, error)
}

// Enricher fills missing roster fields in place.
type Enricher interface {
	Enrich(ctx context.Context, players []roster.Player, concurrency int) enrichment.Summary
}

// RosterEvent describes a completed roster build.
type RosterEvent struct {
	Season     string             `json:"season"`
	CacheKey   string             `json:"cache_key"`
	Players    int                `json:"players"`
	Enriched   bool               `json:"enriched"`
	Enrichment enrichment.Summary `json:"enrichment"`
	BuiltAt    time.Time          `json:"built_at"`
}

// Notifier is told about every roster build.
type Notifier interface {
	NotifyRosterBuilt(ctx context.Context, event RosterEvent) error
}

// OutcomeRecorder persists the enrichment misses and failures of a build.
type OutcomeRecorder interface {
	RecordLookupOutcomes(ctx context.Context, event RosterEvent) error
}

// RosterConfig configures the roster service.
type RosterConfig struct {
	Season       string
	EnrichLimit  int
	Concurrency  int
	BuildTimeout time.Duration
}

// RosterService serves season stats and the enriched roster.
type RosterService struct {
	stats    StatsSource
	enricher Enricher
	rosters  *cache.Expiring[[]roster.Player]

	season       string
	limit        int
	concurrency  int
	buildTimeout time.Duration

	notifiers []Notifier
	recorder  OutcomeRecorder

	group singleflight.Group
	log   logrus.FieldLogger
}

// RosterOption configures optional collaborators.
type RosterOption func(*RosterService)

// WithNotifiers adds roster build notifiers.
func WithNotifiers(notifiers ...Notifier) RosterOption {
	return func(s *RosterService) {
		for _, n := range notifiers {
			if n != nil {
				s.notifiers = append(s.notifiers, n)
			}
		}
	}
}

// WithOutcomeRecorder sets the lookup outcome recorder.
func WithOutcomeRecorder(recorder OutcomeRecorder) RosterOption {
	return func(s *RosterService) {
		s.recorder = recorder
	}
}

// NewRosterService creates a roster service. enricher may be nil when
// enrichment is disabled.
func NewRosterService(cfg RosterConfig, stats StatsSource, enricher Enricher, rosters *cache.Expiring[[]roster.Player], log logrus.FieldLogger, opts ...RosterOption) *RosterService {
	if cfg.EnrichLimit < 0 {
		cfg.EnrichLimit = 0
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	if rosters == nil {
		rosters = cache.New[[]roster.Player]()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &RosterService{
		stats:        stats,
		enricher:     enricher,
		rosters:      rosters,
		season:       cfg.Season,
		limit:        cfg.EnrichLimit,
		concurrency:  cfg.Concurrency,
		buildTimeout: cfg.BuildTimeout,
		log:          log.WithField("component", "roster_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Season returns the configured season identifier.
func (s *RosterService) Season() string {
	return s.season
}

// CacheKey is the roster cache key for the configured season and limit.
func (s *RosterService) CacheKey() string {
	return fmt.Sprintf("players_from_stats_%s_limit_%d", s.season, s.limit)
}

// SeasonStats returns the raw stat rows for the configured season.
func (s *RosterService) SeasonStats(ctx context.Context) ([]sportsdata.StatRow, error) {
	return s.stats.FetchSeasonStats(ctx, s.season)
}

// Roster returns the deduplicated, enriched roster, building it on a cache
// miss. Concurrent misses share one build.
func (s *RosterService) Roster(ctx context.Context) ([]roster.Player, error) {
	key := s.CacheKey()
	if players, ok := s.rosters.Get(key); ok {
		return players, nil
	}

	return s.await(ctx, s.group.DoChan(key, func() (interface{}, error) {
		if players, ok := s.rosters.Get(key); ok {
			return players, nil
		}
		return s.build(key, false)
	}))
}

// Refresh rebuilds the roster from freshly fetched stats. The cached roster
// keeps serving readers until the rebuild succeeds and is left in place if
// it fails.
func (s *RosterService) Refresh(ctx context.Context) ([]roster.Player, error) {
	key := s.CacheKey()
	return s.await(ctx, s.group.DoChan("refresh:"+key, func() (interface{}, error) {
		return s.build(key, true)
	}))
}

func (s *RosterService) await(ctx context.Context, ch <-chan singleflight.Result) ([]roster.Player, error) {
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]roster.Player), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// build runs detached from any single caller so one disconnect does not
// cancel a build other callers are waiting on. The roster cache is written
// only once the new roster is complete.
func (s *RosterService) build(key string, fresh bool) ([]roster.Player, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.buildTimeout)
	defer cancel()

	fetch := s.stats.FetchSeasonStats
	if fresh {
		fetch = s.stats.RefreshSeasonStats
	}

	start := time.Now()
	rows, err := fetch(ctx, s.season)
	if err != nil {
		return nil, err
	}

	players := roster.Build(rows)
	event := RosterEvent{
		Season:   s.season,
		CacheKey: key,
		Players:  len(players),
	}

	if s.limit > 0 && s.enricher != nil {
		n := len(players)
		if n > s.limit {
			n = s.limit
		}
		event.Enrichment = s.enricher.Enrich(ctx, players[:n], s.concurrency)
		event.Enriched = true
	}

	s.rosters.Set(key, players, cache.RosterTTL)
	event.BuiltAt = time.Now().UTC()

	s.log.WithFields(logrus.Fields{
		"season":      s.season,
		"rows":        len(rows),
		"players":     len(players),
		"enriched":    event.Enriched,
		"refresh":     fresh,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Roster built")

	s.publish(ctx, event)
	return players, nil
}

func (s *RosterService) publish(ctx context.Context, event RosterEvent) {
	for _, n := range s.notifiers {
		if err := n.NotifyRosterBuilt(ctx, event); err != nil {
			s.log.WithError(err).Warn("Roster notifier failed")
		}
	}

	if s.recorder == nil || !event.Enriched {
		return
	}
	if len(event.Enrichment.Misses) == 0 && len(event.Enrichment.Failures) == 0 {
		return
	}
	if err := s.recorder.RecordLookupOutcomes(ctx, event); err != nil {
		s.log.WithError(err).Warn("Recording lookup outcomes failed")
	}
}
