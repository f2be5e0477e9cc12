package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"fantasytennis/ingestion/internal/metrics"
	"fantasytennis/ingestion/internal/models"
	"fantasytennis/ingestion/internal/normalize"
	"fantasytennis/ingestion/internal/pricing"
)

// SyncRankings pulls the current ATP rankings and upserts every ranked
// player. Price is always derived from the ranking here, never taken
// from the provider, and the live ranking tracks the official one until
// a live recalculation source diverges.
func (s *Syncer) SyncRankings(ctx context.Context) (*Summary, error) {
	start := time.Now()
	log.Info().Msg("Starting rankings sync")

	body, err := s.provider.FetchRankings(ctx)
	if err != nil {
		metrics.RecordSync("rankings", "error", time.Since(start).Seconds())
		return nil, err
	}

	records, filtered, err := normalize.Rankings(body)
	if err != nil {
		metrics.RecordSync("rankings", "error", time.Since(start).Seconds())
		return nil, err
	}

	summary := &Summary{Filtered: filtered}
	for _, record := range records {
		if err := s.upsertRankedPlayer(ctx, record, summary); err != nil {
			label := record.ExternalID
			if label == "" {
				label = record.Name
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("player %s: %v", label, err))
			metrics.RecordError("rankings_sync", "upsert")
		}
	}

	if summary.changes() {
		s.invalidateListings(ctx)
	}

	metrics.RecordSync("rankings", "success", time.Since(start).Seconds())
	log.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("filtered", summary.Filtered).
		Int("errors", len(summary.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Rankings sync complete")

	return summary, nil
}

// upsertRankedPlayer writes one ranking row. Rows carrying a competitor
// ID key on it; rows without one fall back to name-keyed matching, and
// the name-keyed write never clears a competitor ID stored earlier.
func (s *Syncer) upsertRankedPlayer(ctx context.Context, record models.PlayerRecord, summary *Summary) error {
	candidate := &models.Player{
		ExternalID:  nullString(record.ExternalID),
		Name:        record.Name,
		CountryCode: nullString(record.CountryCode),
		Ranking:     sql.NullInt32{Int32: int32(record.Ranking), Valid: true},
		LiveRanking: sql.NullInt32{Int32: int32(record.Ranking), Valid: true},
		Points:      sql.NullInt32{Int32: int32(record.Points), Valid: true},
		Price:       pricing.Price(record.Ranking),
	}

	var existing *models.Player
	var err error
	if record.ExternalID != "" {
		existing, err = s.players.GetByExternalID(ctx, record.ExternalID)
	} else {
		existing, err = s.players.GetByName(ctx, record.Name)
	}
	if err != nil {
		return err
	}
	if record.ExternalID == "" && existing != nil {
		candidate.ExternalID = existing.ExternalID
	}

	if existing != nil && candidate.Equivalent(existing) {
		summary.Skipped++
		metrics.RecordUpsert("players", "skipped")
		return nil
	}

	upsert := s.players.Upsert
	if record.ExternalID == "" {
		upsert = s.players.UpsertByName
	}
	if err := upsert(ctx, candidate); err != nil {
		return err
	}

	if existing == nil {
		summary.Inserted++
		metrics.RecordUpsert("players", "inserted")
	} else {
		summary.Updated++
		metrics.RecordUpsert("players", "updated")
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt32(v int) sql.NullInt32 {
	if v == 0 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(v), Valid: true}
}
