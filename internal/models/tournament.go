package models

import (
	"database/sql"
	"time"
)

// TournamentCategory is the closed set of tour levels the game recognizes.
type TournamentCategory string

const (
	CategoryGrandSlam  TournamentCategory = "grand_slam"
	CategoryATP1000    TournamentCategory = "atp_1000"
	CategoryATP500     TournamentCategory = "atp_500"
	CategoryATP250     TournamentCategory = "atp_250"
	CategoryFinals     TournamentCategory = "finals"
	CategoryChallenger TournamentCategory = "challenger"
)

// Surface is the court surface a tournament is played on.
type Surface string

const (
	SurfaceHard   Surface = "hard"
	SurfaceClay   Surface = "clay"
	SurfaceGrass  Surface = "grass"
	SurfaceCarpet Surface = "carpet"
)

// TournamentStatus is the lifecycle state derived from the event dates.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
)

// Tournament represents one edition of an ATP event. SeasonID is the
// provider's season identifier; one season maps to at most one row.
type Tournament struct {
	ID            int                `db:"id"`
	SeasonID      sql.NullString     `db:"season_id"`
	CompetitionID sql.NullString     `db:"competition_id"`
	Name          string             `db:"name"`
	Category      TournamentCategory `db:"category"`
	Surface       Surface            `db:"surface"`
	Location      sql.NullString     `db:"location"`
	StartDate     time.Time          `db:"start_date"`
	EndDate       time.Time          `db:"end_date"`
	PrizeMoney    sql.NullInt64      `db:"prize_money"`
	Status        TournamentStatus   `db:"status"`
	BestOf        int                `db:"best_of"`
	CreatedAt     time.Time          `db:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at"`
}

// CurrentStatus derives the lifecycle status from the event dates.
// Stored status values are never trusted; callers recompute on every
// read and on every sync write.
func (t *Tournament) CurrentStatus(now time.Time) TournamentStatus {
	day := now.Truncate(24 * time.Hour)
	switch {
	case day.Before(t.StartDate):
		return TournamentUpcoming
	case day.After(t.EndDate):
		return TournamentCompleted
	default:
		return TournamentOngoing
	}
}

// Equivalent reports whether two tournaments carry the same synced fields.
// Status is excluded because it is derived, not synced.
func (t *Tournament) Equivalent(other *Tournament) bool {
	if other == nil {
		return false
	}
	return t.SeasonID == other.SeasonID &&
		t.CompetitionID == other.CompetitionID &&
		t.Name == other.Name &&
		t.Category == other.Category &&
		t.Surface == other.Surface &&
		t.Location == other.Location &&
		t.StartDate.Equal(other.StartDate) &&
		t.EndDate.Equal(other.EndDate) &&
		t.PrizeMoney == other.PrizeMoney &&
		t.BestOf == other.BestOf
}

// TournamentRecord is the canonical shape produced by the season-info
// normalizer, before database identifiers are resolved.
type TournamentRecord struct {
	SeasonID      string
	CompetitionID string
	Name          string
	Category      TournamentCategory
	Surface       Surface
	Location      string
	StartDate     time.Time
	EndDate       time.Time
	PrizeMoney    int64
	BestOf        int
}
