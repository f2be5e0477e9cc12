package repository

import (
	"context"
	"fmt"

	"fantasytennis/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

const matchColumns = `id, external_id, tournament_id, round, player1_id, player2_id,
	       scheduled_at, status, winner_id, score, surface, best_of, created_at, updated_at`

// Upsert inserts or updates a match keyed by its provider event ID
func (r *MatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			external_id, tournament_id, round, player1_id, player2_id,
			scheduled_at, status, winner_id, score, surface, best_of
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (external_id) DO UPDATE SET
			tournament_id = EXCLUDED.tournament_id,
			round = EXCLUDED.round,
			player1_id = EXCLUDED.player1_id,
			player2_id = EXCLUDED.player2_id,
			scheduled_at = EXCLUDED.scheduled_at,
			status = EXCLUDED.status,
			winner_id = EXCLUDED.winner_id,
			score = EXCLUDED.score,
			surface = EXCLUDED.surface,
			best_of = EXCLUDED.best_of,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		match.ExternalID, match.TournamentID, match.Round,
		match.Player1ID, match.Player2ID, match.ScheduledAt,
		match.Status, match.WinnerID, match.Score, match.Surface, match.BestOf,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a match by its provider event ID
func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE external_id = $1`

	var match models.Match
	err := r.db.Pool.QueryRow(ctx, query, externalID).Scan(
		&match.ID, &match.ExternalID, &match.TournamentID, &match.Round,
		&match.Player1ID, &match.Player2ID, &match.ScheduledAt, &match.Status,
		&match.WinnerID, &match.Score, &match.Surface, &match.BestOf,
		&match.CreatedAt, &match.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return &match, nil
}

// ListByTournament retrieves all matches of one tournament
func (r *MatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY scheduled_at NULLS LAST`

	rows, err := r.db.Pool.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var match models.Match
		err := rows.Scan(
			&match.ID, &match.ExternalID, &match.TournamentID, &match.Round,
			&match.Player1ID, &match.Player2ID, &match.ScheduledAt, &match.Status,
			&match.WinnerID, &match.Score, &match.Surface, &match.BestOf,
			&match.CreatedAt, &match.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// Count returns the total number of matches
func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return count, nil
}
