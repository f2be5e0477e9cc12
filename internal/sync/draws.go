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
)

// SyncDraw pulls the full match list for one tournament's season and
// upserts every match. Competitor references are resolved against the
// player table; an unknown competitor leaves that slot null rather than
// dropping the match. Completed matches also advance the participation
// rows: the loser is marked eliminated with the round reached and the
// winner of the final is marked champion.
func (s *Syncer) SyncDraw(ctx context.Context, tournamentID int) (*Summary, error) {
	start := time.Now()
	log.Info().Int("tournament_id", tournamentID).Msg("Starting draw sync")

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		metrics.RecordSync("draw", "error", time.Since(start).Seconds())
		return nil, err
	}
	if tournament == nil || !tournament.SeasonID.Valid {
		metrics.RecordSync("draw", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: id %d", ErrTournamentNotFound, tournamentID)
	}

	body, err := s.provider.FetchSeasonSummaries(ctx, tournament.SeasonID.String)
	if err != nil {
		metrics.RecordSync("draw", "error", time.Since(start).Seconds())
		return nil, err
	}

	records, filtered, err := normalize.Matches(body)
	if err != nil {
		metrics.RecordSync("draw", "error", time.Since(start).Seconds())
		return nil, err
	}

	summary := &Summary{Filtered: filtered}
	for _, record := range records {
		if err := s.upsertMatch(ctx, tournament, record, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("match %s: %v", record.ExternalID, err))
			metrics.RecordError("draw_sync", "upsert")
		}
	}

	if summary.changes() {
		s.invalidateListings(ctx)
	}

	metrics.RecordSync("draw", "success", time.Since(start).Seconds())
	log.Info().
		Int("tournament_id", tournamentID).
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("filtered", summary.Filtered).
		Int("errors", len(summary.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Draw sync complete")

	return summary, nil
}

// SyncResults refreshes matches that played on the given day using the
// daily summaries feed. Only matches already known from a draw sync are
// touched; fixtures from tournaments that were never ingested are
// counted as filtered.
func (s *Syncer) SyncResults(ctx context.Context, day time.Time) (*Summary, error) {
	start := time.Now()
	log.Info().Str("day", day.Format("2006-01-02")).Msg("Starting results sync")

	body, err := s.provider.FetchDailySummaries(ctx, day)
	if err != nil {
		metrics.RecordSync("results", "error", time.Since(start).Seconds())
		return nil, err
	}

	records, filtered, err := normalize.Matches(body)
	if err != nil {
		metrics.RecordSync("results", "error", time.Since(start).Seconds())
		return nil, err
	}

	summary := &Summary{Filtered: filtered}
	for _, record := range records {
		existing, err := s.matches.GetByExternalID(ctx, record.ExternalID)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("match %s: %v", record.ExternalID, err))
			metrics.RecordError("results_sync", "lookup")
			continue
		}
		if existing == nil {
			summary.Filtered++
			continue
		}

		tournament, err := s.tournaments.GetByID(ctx, existing.TournamentID)
		if err != nil || tournament == nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("match %s: tournament %d unavailable", record.ExternalID, existing.TournamentID))
			metrics.RecordError("results_sync", "lookup")
			continue
		}

		if err := s.upsertMatch(ctx, tournament, record, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("match %s: %v", record.ExternalID, err))
			metrics.RecordError("results_sync", "upsert")
		}
	}

	if summary.changes() {
		s.invalidateListings(ctx)
	}

	metrics.RecordSync("results", "success", time.Since(start).Seconds())
	log.Info().
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("filtered", summary.Filtered).
		Int("errors", len(summary.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Results sync complete")

	return summary, nil
}

func (s *Syncer) upsertMatch(ctx context.Context, tournament *models.Tournament, record models.MatchRecord, summary *Summary) error {
	player1, err := s.resolveCompetitor(ctx, record.Competitor1ID)
	if err != nil {
		return err
	}
	player2, err := s.resolveCompetitor(ctx, record.Competitor2ID)
	if err != nil {
		return err
	}
	winner, err := s.resolveCompetitor(ctx, record.WinnerExtID)
	if err != nil {
		return err
	}

	candidate := &models.Match{
		ExternalID:   record.ExternalID,
		TournamentID: tournament.ID,
		Round:        nullString(record.Round),
		Player1ID:    playerRef(player1),
		Player2ID:    playerRef(player2),
		Status:       record.Status,
		WinnerID:     playerRef(winner),
		Score:        nullString(record.Score),
		Surface:      tournament.Surface,
		BestOf:       tournament.BestOf,
	}
	if !record.ScheduledAt.IsZero() {
		candidate.ScheduledAt = sql.NullTime{Time: record.ScheduledAt, Valid: true}
	}

	existing, err := s.matches.GetByExternalID(ctx, record.ExternalID)
	if err != nil {
		return err
	}

	if existing != nil && candidate.Equivalent(existing) {
		summary.Skipped++
		metrics.RecordUpsert("matches", "skipped")
	} else {
		if err := s.matches.Upsert(ctx, candidate); err != nil {
			return err
		}
		if existing == nil {
			summary.Inserted++
			metrics.RecordUpsert("matches", "inserted")
		} else {
			summary.Updated++
			metrics.RecordUpsert("matches", "updated")
		}
	}

	// Progression runs even when the match row is unchanged: participation
	// rows may have appeared after the result was first synced, and
	// markProgress is a no-op once they are up to date.
	if candidate.Status == models.MatchCompleted && winner != nil {
		s.recordProgression(ctx, tournament.ID, candidate, player1, player2, winner, summary)
	}
	return nil
}

// recordProgression updates participation rows for a decided match. Failures
// here do not fail the match upsert; they are reported alongside it.
func (s *Syncer) recordProgression(ctx context.Context, tournamentID int, match *models.Match, player1, player2, winner *models.Player, summary *Summary) {
	loser := player1
	if player1 != nil && winner.ID == player1.ID {
		loser = player2
	}

	if loser != nil {
		if err := s.markProgress(ctx, loser.ID, tournamentID, models.ParticipationEliminated, match.Round); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("match %s: eliminate player %d: %v", match.ExternalID, loser.ID, err))
		}
	}
	if isFinal(match.Round) {
		if err := s.markProgress(ctx, winner.ID, tournamentID, models.ParticipationChampion, match.Round); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("match %s: crown player %d: %v", match.ExternalID, winner.ID, err))
		}
	}
}

func (s *Syncer) markProgress(ctx context.Context, playerID, tournamentID int, status models.ParticipationStatus, round sql.NullString) error {
	existing, err := s.schedules.Get(ctx, playerID, tournamentID)
	if err != nil {
		return err
	}
	if existing == nil {
		// Player never appeared on the entry list; nothing to advance.
		return nil
	}
	if existing.Status == status && existing.RoundReached == round {
		return nil
	}
	existing.Status = status
	existing.RoundReached = round
	return s.schedules.Upsert(ctx, existing)
}

func (s *Syncer) resolveCompetitor(ctx context.Context, externalID string) (*models.Player, error) {
	if externalID == "" {
		return nil, nil
	}
	return s.players.GetByExternalID(ctx, externalID)
}

func playerRef(p *models.Player) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(p.ID), Valid: true}
}

func isFinal(round sql.NullString) bool {
	return round.Valid && round.String == "final"
}
