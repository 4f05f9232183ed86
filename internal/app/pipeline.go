// Package app wires the roster pipeline from configuration.
package app

import (
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/enrichment"
	"github.com/fortuna/gridiron/internal/ingest/sportsdata"
	"github.com/fortuna/gridiron/internal/ingest/sportsdb"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/roster"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/sirupsen/logrus"
)

// Pipeline holds the wired roster components.
type Pipeline struct {
	Stats    *sportsdata.Client
	Resolver *reconciliation.Resolver
	Enricher *enrichment.Orchestrator
	Rosters  *service.RosterService
}

// NewPipeline builds the stats client, resolver, orchestrator and roster
// service for cfg. Without a secondary key the resolver is disabled and
// rosters are served unenriched.
func NewPipeline(cfg config.Config, log logrus.FieldLogger, opts ...service.RosterOption) *Pipeline {
	stats := sportsdata.New(sportsdata.Config{
		BaseURL: cfg.SportsDataBaseURL,
		APIKey:  cfg.DiscoveryLabAPIKey,
	}, cache.New[[]sportsdata.StatRow](), log)

	var searcher reconciliation.Searcher
	if cfg.EnrichmentEnabled() {
		searcher = sportsdb.New(sportsdb.Config{
			BaseURL:           cfg.SportsDBBaseURL,
			APIKey:            cfg.SportsDBAPIKey,
			RequestsPerSecond: cfg.SportsDBRateLimit,
		}, log)
	} else {
		log.Warn("SPORTSDB_API_KEY not set, roster enrichment disabled")
	}

	resolver := reconciliation.NewResolver(searcher, reconciliation.NewMatcher(reconciliation.NFL),
		cache.New[reconciliation.LookupResult](), log)

	p := &Pipeline{
		Stats:    stats,
		Resolver: resolver,
	}

	var enricher service.Enricher
	if resolver.Enabled() {
		p.Enricher = enrichment.NewOrchestrator(resolver, log)
		enricher = p.Enricher
	}

	p.Rosters = service.NewRosterService(service.RosterConfig{
		Season:       cfg.Season,
		EnrichLimit:  cfg.EnrichLimit,
		Concurrency:  cfg.EnrichConcurrency,
		BuildTimeout: service.BuildTimeoutFor(cfg.EnrichLimit, cfg.SportsDBRateLimit),
	}, stats, enricher, cache.New[[]roster.Player](), log, opts...)

	return p
}

// Status reports pipeline state for health endpoints.
func (p *Pipeline) Status() map[string]interface{} {
	return map[string]interface{}{
		"enrichment": p.Resolver.Enabled(),
		"resolver":   p.Resolver.Metrics(),
	}
}
