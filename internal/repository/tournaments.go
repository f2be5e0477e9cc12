package repository

import (
	"context"
	"fmt"
	"time"

	"fantasytennis/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// TournamentRepository handles tournament database operations
type TournamentRepository struct {
	db *Database
}

const tournamentColumns = `id, season_id, competition_id, name, category, surface, location,
	       start_date, end_date, prize_money, status, best_of, created_at, updated_at`

// Upsert inserts or updates a tournament keyed by its provider season ID.
// Status is recomputed from the dates on every write.
func (r *TournamentRepository) Upsert(ctx context.Context, tournament *models.Tournament) error {
	tournament.Status = tournament.CurrentStatus(time.Now().UTC())

	query := `
		INSERT INTO tournaments (
			season_id, competition_id, name, category, surface, location,
			start_date, end_date, prize_money, status, best_of
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (season_id) DO UPDATE SET
			competition_id = EXCLUDED.competition_id,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			surface = EXCLUDED.surface,
			location = EXCLUDED.location,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			prize_money = EXCLUDED.prize_money,
			status = EXCLUDED.status,
			best_of = EXCLUDED.best_of,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		tournament.SeasonID, tournament.CompetitionID, tournament.Name,
		tournament.Category, tournament.Surface, tournament.Location,
		tournament.StartDate, tournament.EndDate, tournament.PrizeMoney,
		tournament.Status, tournament.BestOf,
	).Scan(&tournament.ID, &tournament.CreatedAt, &tournament.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert tournament: %w", err)
	}

	return nil
}

// GetByID retrieves a tournament by its database ID
func (r *TournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetBySeasonID retrieves a tournament by its provider season ID
func (r *TournamentRepository) GetBySeasonID(ctx context.Context, seasonID string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE season_id = $1`
	return r.scanOne(ctx, query, seasonID)
}

func (r *TournamentRepository) scanOne(ctx context.Context, query string, arg interface{}) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.SeasonID, &t.CompetitionID, &t.Name, &t.Category, &t.Surface,
		&t.Location, &t.StartDate, &t.EndDate, &t.PrizeMoney, &t.Status, &t.BestOf,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	return &t, nil
}

// List retrieves all tournaments ordered by start date. Lifecycle status
// is derived from the dates for every returned row; RefreshStatuses
// should run first so stored rows match what listings report.
func (r *TournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_date`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		err := rows.Scan(
			&t.ID, &t.SeasonID, &t.CompetitionID, &t.Name, &t.Category, &t.Surface,
			&t.Location, &t.StartDate, &t.EndDate, &t.PrizeMoney, &t.Status, &t.BestOf,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		t.Status = t.CurrentStatus(now)
		tournaments = append(tournaments, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournaments: %w", err)
	}

	return tournaments, nil
}

// RefreshStatuses recomputes stored lifecycle statuses from the event
// dates. Listings call this first so stale stored values never leak out.
func (r *TournamentRepository) RefreshStatuses(ctx context.Context) (int64, error) {
	query := `
		UPDATE tournaments SET
			status = CASE
				WHEN CURRENT_DATE < start_date THEN 'upcoming'
				WHEN CURRENT_DATE > end_date THEN 'completed'
				ELSE 'ongoing'
			END,
			updated_at = NOW()
		WHERE status IS DISTINCT FROM CASE
			WHEN CURRENT_DATE < start_date THEN 'upcoming'
			WHEN CURRENT_DATE > end_date THEN 'completed'
			ELSE 'ongoing'
		END
	`

	result, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh tournament statuses: %w", err)
	}

	return result.RowsAffected(), nil
}

// Count returns the total number of tournaments
func (r *TournamentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}

	return count, nil
}
