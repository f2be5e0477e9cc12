package sync

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"fantasytennis/ingestion/internal/metrics"
	"fantasytennis/ingestion/internal/models"
	"fantasytennis/ingestion/internal/normalize"
)

// SyncEntryList scrapes the tournament's published entry list and upserts
// one participation row per known player. Entries are matched to players
// by provider ID first, then by display name. Entries for players the
// rankings sync has never seen are counted as filtered: the entry list is
// not a source of player records.
func (s *Syncer) SyncEntryList(ctx context.Context, tournamentID int) (*Summary, error) {
	start := time.Now()
	log.Info().Int("tournament_id", tournamentID).Msg("Starting entry list sync")

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		metrics.RecordSync("entry_list", "error", time.Since(start).Seconds())
		return nil, err
	}
	if tournament == nil || !tournament.SeasonID.Valid {
		metrics.RecordSync("entry_list", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: id %d", ErrTournamentNotFound, tournamentID)
	}

	body, err := s.provider.FetchEntryList(ctx, tournament.SeasonID.String)
	if err != nil {
		metrics.RecordSync("entry_list", "error", time.Since(start).Seconds())
		return nil, err
	}

	entries, filtered, err := normalize.EntryList(bytes.NewReader(body))
	if err != nil {
		metrics.RecordSync("entry_list", "error", time.Since(start).Seconds())
		return nil, err
	}

	summary := &Summary{Filtered: filtered}
	for _, entry := range entries {
		if err := s.upsertEntry(ctx, tournament.ID, entry, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("entry %s: %v", entryLabel(entry), err))
			metrics.RecordError("entry_list_sync", "upsert")
		}
	}

	if summary.changes() {
		s.invalidateListings(ctx)
	}

	metrics.RecordSync("entry_list", "success", time.Since(start).Seconds())
	log.Info().
		Int("tournament_id", tournamentID).
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("filtered", summary.Filtered).
		Int("errors", len(summary.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Entry list sync complete")

	return summary, nil
}

func (s *Syncer) upsertEntry(ctx context.Context, tournamentID int, entry models.EntryRecord, summary *Summary) error {
	player, err := s.resolveEntry(ctx, entry)
	if err != nil {
		return err
	}
	if player == nil {
		summary.Filtered++
		return nil
	}

	candidate := &models.PlayerSchedule{
		PlayerID:     player.ID,
		TournamentID: tournamentID,
		Status:       entry.Status,
		EntryType:    entry.EntryType,
		Seed:         nullInt32(entry.Seed),
	}

	existing, err := s.schedules.Get(ctx, player.ID, tournamentID)
	if err != nil {
		return err
	}
	if existing != nil {
		// Progression written by the draw sync outlives entry-list refreshes.
		candidate.RoundReached = existing.RoundReached
		if existing.Status == models.ParticipationEliminated || existing.Status == models.ParticipationChampion {
			candidate.Status = existing.Status
		}
	}

	if existing != nil && candidate.Equivalent(existing) {
		summary.Skipped++
		metrics.RecordUpsert("player_schedules", "skipped")
		return nil
	}

	if err := s.schedules.Upsert(ctx, candidate); err != nil {
		return err
	}

	if existing == nil {
		summary.Inserted++
		metrics.RecordUpsert("player_schedules", "inserted")
	} else {
		summary.Updated++
		metrics.RecordUpsert("player_schedules", "updated")
	}
	return nil
}

func (s *Syncer) resolveEntry(ctx context.Context, entry models.EntryRecord) (*models.Player, error) {
	if entry.CompetitorID != "" {
		player, err := s.players.GetByExternalID(ctx, entry.CompetitorID)
		if err != nil || player != nil {
			return player, err
		}
	}
	if entry.Name == "" {
		return nil, nil
	}
	return s.players.GetByName(ctx, entry.Name)
}

func entryLabel(entry models.EntryRecord) string {
	if entry.CompetitorID != "" {
		return entry.CompetitorID
	}
	return entry.Name
}
