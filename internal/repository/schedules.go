package repository

import (
	"context"
	"fmt"

	"fantasytennis/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// ScheduleRepository handles player participation records
type ScheduleRepository struct {
	db *Database
}

const scheduleColumns = `id, player_id, tournament_id, status, entry_type, seed, round_reached, created_at, updated_at`

// Upsert inserts or updates a participation record keyed by the
// (player, tournament) pair; at most one row exists per pair.
func (r *ScheduleRepository) Upsert(ctx context.Context, schedule *models.PlayerSchedule) error {
	query := `
		INSERT INTO player_schedules (
			player_id, tournament_id, status, entry_type, seed, round_reached
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, tournament_id) DO UPDATE SET
			status = EXCLUDED.status,
			entry_type = EXCLUDED.entry_type,
			seed = EXCLUDED.seed,
			round_reached = EXCLUDED.round_reached,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		schedule.PlayerID, schedule.TournamentID, schedule.Status,
		schedule.EntryType, schedule.Seed, schedule.RoundReached,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player schedule: %w", err)
	}

	return nil
}

// Get retrieves the participation record for one (player, tournament) pair
func (r *ScheduleRepository) Get(ctx context.Context, playerID, tournamentID int) (*models.PlayerSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM player_schedules WHERE player_id = $1 AND tournament_id = $2`

	var schedule models.PlayerSchedule
	err := r.db.Pool.QueryRow(ctx, query, playerID, tournamentID).Scan(
		&schedule.ID, &schedule.PlayerID, &schedule.TournamentID,
		&schedule.Status, &schedule.EntryType, &schedule.Seed,
		&schedule.RoundReached, &schedule.CreatedAt, &schedule.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player schedule: %w", err)
	}

	return &schedule, nil
}

// ListByTournament retrieves all participation records of one tournament
func (r *ScheduleRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PlayerSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM player_schedules WHERE tournament_id = $1 ORDER BY seed NULLS LAST, id`

	rows, err := r.db.Pool.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.PlayerSchedule
	for rows.Next() {
		var schedule models.PlayerSchedule
		err := rows.Scan(
			&schedule.ID, &schedule.PlayerID, &schedule.TournamentID,
			&schedule.Status, &schedule.EntryType, &schedule.Seed,
			&schedule.RoundReached, &schedule.CreatedAt, &schedule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player schedule: %w", err)
		}
		schedules = append(schedules, &schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player schedules: %w", err)
	}

	return schedules, nil
}
