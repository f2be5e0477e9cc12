// Package sync holds the ingestion orchestrators: each one sequences
// fetch -> normalize -> diff -> upsert and reports a summary. Fetches run
// strictly sequentially; the provider rate limit is respected by pacing
// one request stream, not by racing workers against it.
package sync

import (
	"context"
	"errors"
	"time"

	"fantasytennis/ingestion/internal/cache"
	"fantasytennis/ingestion/internal/models"
	"fantasytennis/ingestion/internal/repository"
)

// ErrTournamentNotFound is returned when a draw or entry-list sync
// references an unknown tournament. Handlers map it to a 400.
var ErrTournamentNotFound = errors.New("tournament not found")

// DefaultBatchSize caps how many competitions one tournament-sync
// invocation processes, keeping wall-clock time inside a request budget.
const DefaultBatchSize = 20

// Provider is the slice of the API client the orchestrators consume.
type Provider interface {
	FetchRankings(ctx context.Context) ([]byte, error)
	FetchCompetitions(ctx context.Context) ([]byte, error)
	FetchCompetitionSeasons(ctx context.Context, competitionID string) ([]byte, error)
	FetchSeasonInfo(ctx context.Context, seasonID string) ([]byte, error)
	FetchSeasonSummaries(ctx context.Context, seasonID string) ([]byte, error)
	FetchDailySummaries(ctx context.Context, day time.Time) ([]byte, error)
	FetchEntryList(ctx context.Context, seasonID string) ([]byte, error)
}

// PlayerStore is the player persistence surface the orchestrators need.
type PlayerStore interface {
	Upsert(ctx context.Context, player *models.Player) error
	UpsertByName(ctx context.Context, player *models.Player) error
	GetByExternalID(ctx context.Context, externalID string) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
}

// TournamentStore is the tournament persistence surface.
type TournamentStore interface {
	Upsert(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetBySeasonID(ctx context.Context, seasonID string) (*models.Tournament, error)
}

// MatchStore is the match persistence surface.
type MatchStore interface {
	Upsert(ctx context.Context, match *models.Match) error
	GetByExternalID(ctx context.Context, externalID string) (*models.Match, error)
}

// ScheduleStore is the participation persistence surface.
type ScheduleStore interface {
	Upsert(ctx context.Context, schedule *models.PlayerSchedule) error
	Get(ctx context.Context, playerID, tournamentID int) (*models.PlayerSchedule, error)
}

// CursorStore is the singleton resume-cursor surface.
type CursorStore interface {
	Get(ctx context.Context) (*models.SyncState, error)
	Set(ctx context.Context, lastCompetitionID string) error
	Clear(ctx context.Context) error
}

// ListingCache invalidates browse listings after successful writes.
type ListingCache interface {
	InvalidateListings(ctx context.Context)
}

// Summary is the JSON result of one orchestrator invocation.
type Summary struct {
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Filtered   int      `json:"filtered"`
	Errors     []string `json:"errors,omitempty"`
	NextCursor string   `json:"next_cursor,omitempty"`
	Remaining  int      `json:"remaining,omitempty"`
}

// changes reports whether the invocation wrote anything.
func (s *Summary) changes() bool {
	return s.Inserted > 0 || s.Updated > 0
}

// Syncer runs the ingestion orchestrators against one provider and one
// set of stores.
type Syncer struct {
	provider    Provider
	players     PlayerStore
	tournaments TournamentStore
	matches     MatchStore
	schedules   ScheduleStore
	cursor      CursorStore
	cache       ListingCache
	batchSize   int
}

// NewSyncer wires a Syncer from the concrete service dependencies.
// listings may be nil when Redis is unavailable.
func NewSyncer(provider Provider, db *repository.Database, listings *cache.Cache, batchSize int) *Syncer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	s := &Syncer{
		provider:    provider,
		players:     db.Players,
		tournaments: db.Tournaments,
		matches:     db.Matches,
		schedules:   db.Schedules,
		cursor:      db.SyncState,
		batchSize:   batchSize,
	}
	if listings != nil {
		s.cache = listings
	}
	return s
}

func (s *Syncer) invalidateListings(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateListings(ctx)
	}
}
