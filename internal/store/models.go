package store

import "time"

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_create_lookup_outcomes",
		sql: `
			CREATE TABLE IF NOT EXISTS lookup_outcomes (
				id BIGSERIAL PRIMARY KEY,
				season VARCHAR(32) NOT NULL,
				player_name TEXT NOT NULL,
				outcome VARCHAR(32) NOT NULL,
				built_at TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "002_index_lookup_outcomes_season",
		sql:     `CREATE INDEX IF NOT EXISTS idx_lookup_outcomes_season_built ON lookup_outcomes (season, built_at DESC)`,
	},
}

// Outcome values stored in lookup_outcomes.outcome.
const (
	OutcomeNoCandidates = "no_candidates"
	OutcomeLookupFailed = "lookup_failed"
)

// LookupOutcome is one unenriched player from a roster build.
type LookupOutcome struct {
	ID         int64     `json:"id"`
	Season     string    `json:"season"`
	PlayerName string    `json:"player_name"`
	Outcome    string    `json:"outcome"`
	BuiltAt    time.Time `json:"built_at"`
	CreatedAt  time.Time `json:"created_at"`
}
