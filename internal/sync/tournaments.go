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

// TournamentOptions tunes one tournament-sync invocation.
type TournamentOptions struct {
	// BatchSize caps the competitions processed per batch; zero means
	// the syncer default.
	BatchSize int
	// MaxBatches runs that many consecutive batches in one invocation;
	// zero or negative means one.
	MaxBatches int
	// Offset skips that many calendar entries, overriding the stored
	// cursor. An explicit ResumeFrom wins over Offset.
	Offset int
	// ResumeFrom overrides the stored cursor when set.
	ResumeFrom string
	// Year filters seasons, e.g. "2025". Empty keeps the most recent
	// season of each competition.
	Year string
}

// SyncTournaments walks the provider's competition calendar, resolving
// each competition's target season into a tournament row. The walk is
// resumable: a capped batch is processed per invocation and the cursor
// records the last competition handled, so repeated calls cover the
// calendar exactly once without reprocessing.
//
// A rate-limit failure on the top-level competitions call has no
// fallback and is surfaced to the caller; per-competition failures are
// recorded and the walk continues.
func (s *Syncer) SyncTournaments(ctx context.Context, opts TournamentOptions) (*Summary, error) {
	start := time.Now()
	batch := opts.BatchSize
	if batch <= 0 {
		batch = s.batchSize
	}
	log.Info().Int("batch_size", batch).Str("year", opts.Year).Msg("Starting tournament sync")

	body, err := s.provider.FetchCompetitions(ctx)
	if err != nil {
		metrics.RecordSync("tournaments", "error", time.Since(start).Seconds())
		return nil, err
	}

	competitions, filtered, err := normalize.Competitions(body)
	if err != nil {
		metrics.RecordSync("tournaments", "error", time.Since(start).Seconds())
		return nil, err
	}

	summary := &Summary{Filtered: filtered}

	from := opts.ResumeFrom
	if from == "" && opts.Offset <= 0 {
		state, err := s.cursor.Get(ctx)
		if err != nil {
			metrics.RecordSync("tournaments", "error", time.Since(start).Seconds())
			return nil, err
		}
		if state != nil {
			from = state.LastCompetitionID
		}
	}

	startIdx := 0
	switch {
	case from != "":
		for i, c := range competitions {
			if c.ID == from {
				startIdx = i + 1
				break
			}
		}
	case opts.Offset > 0:
		startIdx = opts.Offset
		if startIdx > len(competitions) {
			startIdx = len(competitions)
		}
	}

	batches := opts.MaxBatches
	if batches <= 0 {
		batches = 1
	}
	endIdx := startIdx + batch*batches
	if endIdx > len(competitions) {
		endIdx = len(competitions)
	}

	lastProcessed := from
	for _, competition := range competitions[startIdx:endIdx] {
		if err := s.syncCompetition(ctx, competition, opts.Year, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("competition %s: %v", competition.ID, err))
			metrics.RecordError("tournament_sync", "competition")
		}
		lastProcessed = competition.ID
	}

	remaining := len(competitions) - endIdx
	if remaining > 0 {
		if err := s.cursor.Set(ctx, lastProcessed); err != nil {
			metrics.RecordSync("tournaments", "error", time.Since(start).Seconds())
			return nil, err
		}
		summary.NextCursor = lastProcessed
		summary.Remaining = remaining
	} else if err := s.cursor.Clear(ctx); err != nil {
		metrics.RecordSync("tournaments", "error", time.Since(start).Seconds())
		return nil, err
	}

	if summary.changes() {
		s.invalidateListings(ctx)
	}

	metrics.RecordSync("tournaments", "success", time.Since(start).Seconds())
	log.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("remaining", summary.Remaining).
		Int("errors", len(summary.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Tournament sync complete")

	return summary, nil
}

// syncCompetition resolves one competition into a tournament row via its
// target season. Competitions without a usable season count as filtered.
func (s *Syncer) syncCompetition(ctx context.Context, competition normalize.Competition, year string, summary *Summary) error {
	body, err := s.provider.FetchCompetitionSeasons(ctx, competition.ID)
	if err != nil {
		return err
	}

	seasons, _, err := normalize.Seasons(body)
	if err != nil {
		return err
	}

	season, ok := pickSeason(seasons, year)
	if !ok {
		summary.Filtered++
		return nil
	}

	infoBody, err := s.provider.FetchSeasonInfo(ctx, season.ID)
	if err != nil {
		return err
	}

	record, err := normalize.SeasonInfo(infoBody, competition.ID)
	if err != nil {
		return err
	}
	if record.Name == "" {
		record.Name = competition.Name
	}

	candidate := &models.Tournament{
		SeasonID:      sql.NullString{String: record.SeasonID, Valid: true},
		CompetitionID: nullString(record.CompetitionID),
		Name:          record.Name,
		Category:      record.Category,
		Surface:       record.Surface,
		Location:      nullString(record.Location),
		StartDate:     record.StartDate,
		EndDate:       record.EndDate,
		PrizeMoney:    nullInt64(record.PrizeMoney),
		BestOf:        record.BestOf,
	}

	existing, err := s.tournaments.GetBySeasonID(ctx, record.SeasonID)
	if err != nil {
		return err
	}

	if existing != nil && candidate.Equivalent(existing) {
		summary.Skipped++
		metrics.RecordUpsert("tournaments", "skipped")
		return nil
	}

	if err := s.tournaments.Upsert(ctx, candidate); err != nil {
		return err
	}

	if existing == nil {
		summary.Inserted++
		metrics.RecordUpsert("tournaments", "inserted")
	} else {
		summary.Updated++
		metrics.RecordUpsert("tournaments", "updated")
	}
	return nil
}

// pickSeason selects the season matching year, or the last listed season
// when no year filter is given.
func pickSeason(seasons []normalize.Season, year string) (normalize.Season, bool) {
	if len(seasons) == 0 {
		return normalize.Season{}, false
	}
	if year == "" {
		return seasons[len(seasons)-1], true
	}
	for i := len(seasons) - 1; i >= 0; i-- {
		if seasons[i].Year == year {
			return seasons[i], true
		}
	}
	return normalize.Season{}, false
}

func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
