package repository

import (
	"context"
	"fmt"

	"fantasytennis/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// SyncStateRepository persists the singleton resume cursor. The table
// holds at most one row; writing creates it on first use and updates it
// in place afterwards.
type SyncStateRepository struct {
	db *Database
}

// Get reads the cursor. A missing row returns nil, not an error.
func (r *SyncStateRepository) Get(ctx context.Context) (*models.SyncState, error) {
	query := `SELECT last_competition_id, updated_at FROM sync_state WHERE id = 1`

	var state models.SyncState
	err := r.db.Pool.QueryRow(ctx, query).Scan(&state.LastCompetitionID, &state.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}

	return &state, nil
}

// Set writes the cursor, creating the singleton row if needed
func (r *SyncStateRepository) Set(ctx context.Context, lastCompetitionID string) error {
	query := `
		INSERT INTO sync_state (id, last_competition_id, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			last_competition_id = EXCLUDED.last_competition_id,
			updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, lastCompetitionID); err != nil {
		return fmt.Errorf("failed to write sync state: %w", err)
	}

	log.Debug().Str("last_competition_id", lastCompetitionID).Msg("Sync cursor advanced")
	return nil
}

// Clear removes the cursor so the next sync starts from the beginning
func (r *SyncStateRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM sync_state WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear sync state: %w", err)
	}
	return nil
}
