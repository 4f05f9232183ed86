// Package reconciliation matches roster players against secondary provider
// records.
package reconciliation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/ingest/sportsdb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultSearchTimeout bounds one shared lookup, including rate limiter wait.
const DefaultSearchTimeout = 30 * time.Second

// Searcher queries the secondary provider by player name.
type Searcher interface {
	SearchPlayers(ctx context.Context, name string) ([]sportsdb.Player, error)
}

// Outcome classifies a resolution.
type Outcome int

const (
	// NoCandidates means the lookup succeeded but nothing survived filtering.
	NoCandidates Outcome = iota
	// Matched means a candidate was selected.
	Matched
	// LookupFailed means the provider call failed (now or within the
	// negative-cache window).
	LookupFailed
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case LookupFailed:
		return "lookup_failed"
	default:
		return "no_candidates"
	}
}

// Resolution is the result of ResolveByName. Candidate is set only when
// Outcome is Matched.
type Resolution struct {
	Candidate *sportsdb.Player
	Outcome   Outcome
}

// LookupResult is what the lookup cache stores per name. A failed lookup is
// a negative entry with no players.
type LookupResult struct {
	Players []sportsdb.Player
	Failed  bool
}

// Metrics tracks resolver activity.
type Metrics struct {
	Lookups   int64 `json:"lookups"`
	CacheHits int64 `json:"cache_hits"`
	Failures  int64 `json:"failures"`
	Matches   int64 `json:"matches"`
}

// Resolver resolves a player name to the best secondary candidate. Lookups
// are cached per lowercase name: successes for cache.PlayerLookupTTL and
// failures for cache.FailedLookupTTL. The resolver never returns an error.
type Resolver struct {
	searcher Searcher
	matcher  *Matcher
	lookups  *cache.Expiring[LookupResult]
	group    singleflight.Group
	timeout  time.Duration
	log      logrus.FieldLogger

	lookupCount  atomic.Int64
	cacheHits    atomic.Int64
	failureCount atomic.Int64
	matchCount   atomic.Int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSearchTimeout bounds each shared provider lookup.
func WithSearchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewResolver creates a resolver. A nil searcher disables the resolver:
// every call returns NoCandidates without I/O.
func NewResolver(searcher Searcher, matcher *Matcher, lookups *cache.Expiring[LookupResult], log logrus.FieldLogger, opts ...ResolverOption) *Resolver {
	if matcher == nil {
		matcher = NewMatcher(NFL)
	}
	if lookups == nil {
		lookups = cache.New[LookupResult]()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &Resolver{
		searcher: searcher,
		matcher:  matcher,
		lookups:  lookups,
		timeout:  DefaultSearchTimeout,
		log:      log.WithField("component", "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether the resolver has a secondary provider.
func (r *Resolver) Enabled() bool {
	return r.searcher != nil
}

// LookupKey is the cache key for a player name.
func LookupKey(fullName string) string {
	return "sportsdb_player_" + strings.ToLower(fullName)
}

// ResolveByName looks fullName up (through the cache) and selects the best
// candidate.
func (r *Resolver) ResolveByName(ctx context.Context, fullName string) Resolution {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" || !r.Enabled() {
		return Resolution{Outcome: NoCandidates}
	}

	result := r.lookup(ctx, fullName)
	if result.Failed {
		return Resolution{Outcome: LookupFailed}
	}

	candidate, ok := r.matcher.SelectBest(result.Players, fullName)
	if !ok {
		return Resolution{Outcome: NoCandidates}
	}

	r.matchCount.Add(1)
	return Resolution{Candidate: candidate, Outcome: Matched}
}

// Metrics returns a snapshot of the counters.
func (r *Resolver) Metrics() Metrics {
	return Metrics{
		Lookups:   r.lookupCount.Load(),
		CacheHits: r.cacheHits.Load(),
		Failures:  r.failureCount.Load(),
		Matches:   r.matchCount.Load(),
	}
}

// lookup returns the cached result for fullName or searches the provider.
// The search runs detached from ctx so a departing caller neither cancels it
// for the other waiters nor poisons the cache. Failures that originate
// locally (our own deadline or throttling) are returned but not cached.
func (r *Resolver) lookup(ctx context.Context, fullName string) LookupResult {
	key := LookupKey(fullName)
	if cached, ok := r.lookups.Get(key); ok {
		r.cacheHits.Add(1)
		return cached
	}
	if ctx.Err() != nil {
		return LookupResult{Failed: true}
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		if cached, ok := r.lookups.Get(key); ok {
			r.cacheHits.Add(1)
			return cached, nil
		}

		searchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		r.lookupCount.Add(1)
		players, err := r.searcher.SearchPlayers(searchCtx, fullName)
		if err != nil {
			r.failureCount.Add(1)
			result := LookupResult{Failed: true}
			entry := r.log.WithError(err).WithField("name", fullName)

			if searchCtx.Err() != nil || errors.Is(err, sportsdb.ErrThrottled) {
				entry.Warn("Player lookup interrupted locally, not caching")
				return result, nil
			}

			entry.Warn("Player lookup failed, caching negative result")
			r.lookups.Set(key, result, cache.FailedLookupTTL)
			return result, nil
		}

		result := LookupResult{Players: players}
		r.lookups.Set(key, result, cache.PlayerLookupTTL)
		return result, nil
	})

	select {
	case res := <-ch:
		return res.Val.(LookupResult)
	case <-ctx.Done():
		return LookupResult{Failed: true}
	}
}
