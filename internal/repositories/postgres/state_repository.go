// Package postgres implements the repositories on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	pgclient "github.com/ArowuTest/prizedraw-backend/pkg/postgres"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS draw_state (
	key        TEXT PRIMARY KEY,
	names      TEXT[],
	winners    JSONB,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS draw_records (
	id          TEXT PRIMARY KEY,
	round       INTEGER NOT NULL,
	tier        TEXT NOT NULL,
	tier_label  TEXT NOT NULL,
	names       TEXT[] NOT NULL,
	pool_before INTEGER NOT NULL,
	drawn_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS draw_records_drawn_at_idx ON draw_records (drawn_at DESC);
`

const (
	upsertNamesSQL = `INSERT INTO draw_state (key, names, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET names = EXCLUDED.names, updated_at = EXCLUDED.updated_at`
	upsertWinnersSQL = `INSERT INTO draw_state (key, winners, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET winners = EXCLUDED.winners, updated_at = EXCLUDED.updated_at`
	selectStateSQL = `SELECT key, names, winners, updated_at FROM draw_state`
)

// EnsureSchema creates the tables used by this package
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return pgclient.Transact(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
}

// StateRepository implements the repositories.StateRepository interface
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *sql.DB) repositories.StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) SaveRoster(ctx context.Context, roster []string) error {
	return r.saveNames(ctx, "roster", roster)
}

func (r *StateRepository) SavePool(ctx context.Context, pool []string) error {
	return r.saveNames(ctx, "pool", pool)
}

func (r *StateRepository) SaveWinners(ctx context.Context, winners map[string][]string) error {
	if winners == nil {
		winners = map[string][]string{}
	}
	payload, err := json.Marshal(winners)
	if err != nil {
		return fmt.Errorf("failed to encode winners: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertWinnersSQL, "winners", payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert draw state %q: %w", "winners", err)
	}
	return nil
}

func (r *StateRepository) saveNames(ctx context.Context, key string, names []string) error {
	if names == nil {
		names = []string{}
	}
	if _, err := r.db.ExecContext(ctx, upsertNamesSQL, key, pq.Array(names), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert draw state %q: %w", key, err)
	}
	return nil
}

// Load reads all state rows. Returns repositories.ErrNotFound if none exist.
func (r *StateRepository) Load(ctx context.Context) (*models.PersistedState, error) {
	rows, err := r.db.QueryContext(ctx, selectStateSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw state: %w", err)
	}
	defer rows.Close()

	state := &models.PersistedState{Winners: map[string][]string{}}
	found := false
	for rows.Next() {
		var (
			key       string
			names     pq.StringArray
			winners   []byte
			updatedAt time.Time
		)
		if err := rows.Scan(&key, &names, &winners, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw state: %w", err)
		}
		found = true

		switch key {
		case "roster":
			state.Roster = []string(names)
		case "pool":
			state.Pool = []string(names)
		case "winners":
			if len(winners) > 0 {
				if err := json.Unmarshal(winners, &state.Winners); err != nil {
					return nil, fmt.Errorf("failed to decode winners: %w", err)
				}
			}
		}
		if updatedAt.After(state.UpdatedAt) {
			state.UpdatedAt = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read draw state: %w", err)
	}
	if !found {
		return nil, repositories.ErrNotFound
	}
	return state, nil
}
