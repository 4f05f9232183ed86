package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// LookupRepository records players the enrichment pass could not fill
type LookupRepository struct {
	db *store.Database
}

// NewLookupRepository creates a new lookup repository
func NewLookupRepository(db *store.Database) *LookupRepository {
	return &LookupRepository{db: db}
}

// RecordLookupOutcomes inserts one row per miss and failure of a build
func (r *LookupRepository) RecordLookupOutcomes(ctx context.Context, event service.RosterEvent) error {
	builtAt := event.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now().UTC()
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lookup_outcomes (season, player_name, outcome, built_at)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	insert := func(names []string, outcome string) error {
		for _, name := range names {
			if _, err := stmt.ExecContext(ctx, event.Season, name, outcome, builtAt); err != nil {
				return fmt.Errorf("inserting lookup outcome: %w", err)
			}
		}
		return nil
	}

	if err := insert(event.Enrichment.Misses, store.OutcomeNoCandidates); err != nil {
		return err
	}
	if err := insert(event.Enrichment.Failures, store.OutcomeLookupFailed); err != nil {
		return err
	}

	return tx.Commit()
}

// Recent returns the newest outcomes for season, newest first
func (r *LookupRepository) Recent(ctx context.Context, season string, limit int) ([]*store.LookupOutcome, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, season, player_name, outcome, built_at, created_at
		FROM lookup_outcomes
		WHERE season = $1
		ORDER BY built_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, limit)
	if err != nil {
		return nil, fmt.Errorf("querying lookup outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*store.LookupOutcome
	for rows.Next() {
		o := &store.LookupOutcome{}
		if err := rows.Scan(&o.ID, &o.Season, &o.PlayerName, &o.Outcome, &o.BuiltAt, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning lookup outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}
