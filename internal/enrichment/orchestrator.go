// Package enrichment fills missing roster fields from the secondary provider
// with a bounded pool of workers.
package enrichment

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/roster"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Enrich is called with concurrency <= 0.
const DefaultConcurrency = 8

// Resolver resolves a player name to a secondary candidate.
type Resolver interface {
	ResolveByName(ctx context.Context, fullName string) reconciliation.Resolution
}

// Summary reports what an enrichment pass did.
type Summary struct {
	Claimed      int           `json:"claimed"`
	Skipped      int           `json:"skipped"`
	Matched      int           `json:"matched"`
	NoCandidates int           `json:"no_candidates"`
	Failed       int           `json:"failed"`
	Duration     time.Duration `json:"duration"`
	Misses       []string      `json:"misses,omitempty"`
	Failures     []string      `json:"failures,omitempty"`
}

// Orchestrator runs enrichment passes.
type Orchestrator struct {
	resolver Resolver
	log      logrus.FieldLogger
}

// NewOrchestrator creates an orchestrator backed by resolver.
func NewOrchestrator(resolver Resolver, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		resolver: resolver,
		log:      log.WithField("component", "enrichment"),
	}
}

// tally is shared by the workers of one pass.
type tally struct {
	claimed      atomic.Int64
	skipped      atomic.Int64
	matched      atomic.Int64
	noCandidates atomic.Int64
	failed       atomic.Int64

	mu       sync.Mutex
	misses   []string
	failures []string
}

// Enrich fills empty BirthDate and PhotoURL fields of players in place.
// Workers claim indices from a shared cursor so each element is written by
// exactly one worker. Enrich returns after every worker has exited.
func (o *Orchestrator) Enrich(ctx context.Context, players []roster.Player, concurrency int) Summary {
	start := time.Now()
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(players) {
		concurrency = len(players)
	}

	var (
		cursor atomic.Int64
		t      tally
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				i := int(cursor.Add(1) - 1)
				if i >= len(players) {
					return nil
				}
				t.claimed.Add(1)
				o.enrichOne(gctx, &players[i], &t)
			}
		})
	}
	_ = g.Wait()

	summary := Summary{
		Claimed:      int(t.claimed.Load()),
		Skipped:      int(t.skipped.Load()),
		Matched:      int(t.matched.Load()),
		NoCandidates: int(t.noCandidates.Load()),
		Failed:       int(t.failed.Load()),
		Duration:     time.Since(start),
		Misses:       t.misses,
		Failures:     t.failures,
	}

	o.log.WithFields(logrus.Fields{
		"players":       len(players),
		"workers":       concurrency,
		"matched":       summary.Matched,
		"no_candidates": summary.NoCandidates,
		"failed":        summary.Failed,
		"skipped":       summary.Skipped,
		"duration_ms":   summary.Duration.Milliseconds(),
	}).Info("Enrichment pass complete")

	return summary
}

func (o *Orchestrator) enrichOne(ctx context.Context, p *roster.Player, t *tally) {
	if !p.NeedsEnrichment() {
		t.skipped.Add(1)
		return
	}

	name := p.FullName()
	if name == "" {
		t.skipped.Add(1)
		return
	}

	res := o.resolver.ResolveByName(ctx, name)
	switch res.Outcome {
	case reconciliation.Matched:
		t.matched.Add(1)
		if p.BirthDate == "" {
			p.BirthDate = res.Candidate.DateBorn
		}
		if p.PhotoURL == "" {
			p.PhotoURL = res.Candidate.PhotoURL()
		}
	case reconciliation.LookupFailed:
		t.failed.Add(1)
		t.mu.Lock()
		t.failures = append(t.failures, name)
		t.mu.Unlock()
	default:
		t.noCandidates.Add(1)
		t.mu.Lock()
		t.misses = append(t.misses, name)
		t.mu.Unlock()
	}
}
