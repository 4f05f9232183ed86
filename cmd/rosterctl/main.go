package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fortuna/gridiron/internal/app"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	appName    = "rosterctl"
	appVersion = "1.0.0"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	var (
		season      = flag.String("season", cfg.Season, "Season identifier (e.g., 2025REG)")
		limit       = flag.Int("limit", cfg.EnrichLimit, "Max players to enrich (0 disables enrichment)")
		concurrency = flag.Int("concurrency", cfg.EnrichConcurrency, "Enrichment workers")
		out         = flag.String("out", "", "Write the roster JSON to this file instead of stdout")
		misses      = flag.Int("misses", 0, "Print the N most recent unenriched players from Atlas and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	log := logging.NewWithOutput(level, "text", os.Stderr)
	log.Infof("=== %s v%s ===", appName, appVersion)

	cfg.Season = *season
	cfg.EnrichLimit = *limit
	cfg.EnrichConcurrency = *concurrency

	if *misses > 0 {
		if err := printMisses(cfg, *misses, log); err != nil {
			log.WithError(err).Fatal("Listing misses failed")
		}
		return
	}

	reporter := &consoleReporter{log: log}
	pipeline := app.NewPipeline(cfg, log, service.WithNotifiers(reporter))

	players, err := pipeline.Rosters.Roster(context.Background())
	if err != nil {
		log.WithError(err).Fatal("Roster build failed")
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.WithError(err).Fatal("Opening output file failed")
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(players); err != nil {
		log.WithError(err).Fatal("Writing roster failed")
	}

	log.Infof("Wrote %d players", len(players))
}

func printMisses(cfg config.Config, n int, log logrus.FieldLogger) error {
	if cfg.AtlasDSN == "" {
		return fmt.Errorf("ATLAS_DSN is not set")
	}

	db, err := store.NewDatabase(cfg.AtlasDSN, log)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcomes, err := repository.NewLookupRepository(db).Recent(ctx, cfg.Season, n)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		fmt.Printf("%s\t%-14s\t%s\n", o.BuiltAt.Format(time.RFC3339), o.Outcome, o.PlayerName)
	}
	return nil
}

type consoleReporter struct {
	log logrus.FieldLogger
}

func (c *consoleReporter) NotifyRosterBuilt(ctx context.Context, event service.RosterEvent) error {
	c.log.Infof("Built %d players for %s", event.Players, event.Season)
	if !event.Enriched {
		c.log.Info("Enrichment skipped")
		return nil
	}

	s := event.Enrichment
	c.log.Infof("Enrichment: %d matched, %d no candidates, %d failed, %d skipped in %s",
		s.Matched, s.NoCandidates, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond))
	for _, name := range s.Failures {
		c.log.Debugf("  lookup failed: %s", name)
	}
	return nil
}
