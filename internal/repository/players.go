package repository

import (
	"context"
	"fmt"

	"fantasytennis/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

const playerColumns = `id, external_id, name, country_code, ranking, live_ranking, points, price, created_at, updated_at`

// Upsert inserts or updates a player keyed by its provider competitor ID.
// Players without an external ID go through UpsertByName instead.
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (
			external_id, name, country_code, ranking, live_ranking, points, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			country_code = EXCLUDED.country_code,
			ranking = EXCLUDED.ranking,
			live_ranking = EXCLUDED.live_ranking,
			points = EXCLUDED.points,
			price = EXCLUDED.price,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.ExternalID, player.Name, player.CountryCode,
		player.Ranking, player.LiveRanking, player.Points, player.Price,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// UpsertByName inserts or updates a player keyed by display name. Used
// as the fallback when the provider exposes no competitor ID.
func (r *PlayerRepository) UpsertByName(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (
			external_id, name, country_code, ranking, live_ranking, points, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			country_code = EXCLUDED.country_code,
			ranking = EXCLUDED.ranking,
			live_ranking = EXCLUDED.live_ranking,
			points = EXCLUDED.points,
			price = EXCLUDED.price,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.ExternalID, player.Name, player.CountryCode,
		player.Ranking, player.LiveRanking, player.Points, player.Price,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player by name: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a player by its provider competitor ID
func (r *PlayerRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE external_id = $1`

	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, externalID).Scan(
		&player.ID, &player.ExternalID, &player.Name, &player.CountryCode,
		&player.Ranking, &player.LiveRanking, &player.Points, &player.Price,
		&player.CreatedAt, &player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &player, nil
}

// GetByName retrieves a player by display name
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = $1`

	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(
		&player.ID, &player.ExternalID, &player.Name, &player.CountryCode,
		&player.Ranking, &player.LiveRanking, &player.Points, &player.Price,
		&player.CreatedAt, &player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}

	return &player, nil
}

// List retrieves all players ordered by ranking
func (r *PlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY ranking NULLS LAST, name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.ID, &player.ExternalID, &player.Name, &player.CountryCode,
			&player.Ranking, &player.LiveRanking, &player.Points, &player.Price,
			&player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// Count returns the total number of players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}

	return count, nil
}

// Delete removes a player. The sync pipeline never calls this; it exists
// for manual admin cleanup only.
func (r *PlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("player not found: id=%d", id)
	}

	log.Debug().Int("id", id).Msg("Player deleted")
	return nil
}
