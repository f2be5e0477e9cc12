package models

import (
	"database/sql"
	"time"
)

// MatchStatus is the closed set of match states. Provider vocabularies are
// larger; the normalizer maps them down and defaults to scheduled.
type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
)

// Match represents a draw match. Competitor references are nullable because
// a draw entry may be only partially seeded when first published.
type Match struct {
	ID           int            `db:"id"`
	ExternalID   string         `db:"external_id"`
	TournamentID int            `db:"tournament_id"`
	Round        sql.NullString `db:"round"`
	Player1ID    sql.NullInt32  `db:"player1_id"`
	Player2ID    sql.NullInt32  `db:"player2_id"`
	ScheduledAt  sql.NullTime   `db:"scheduled_at"`
	Status       MatchStatus    `db:"status"`
	WinnerID     sql.NullInt32  `db:"winner_id"`
	Score        sql.NullString `db:"score"`
	Surface      Surface        `db:"surface"`
	BestOf       int            `db:"best_of"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Equivalent reports whether two matches carry the same synced fields.
func (m *Match) Equivalent(other *Match) bool {
	if other == nil {
		return false
	}
	if m.ScheduledAt.Valid != other.ScheduledAt.Valid {
		return false
	}
	if m.ScheduledAt.Valid && !m.ScheduledAt.Time.Equal(other.ScheduledAt.Time) {
		return false
	}
	return m.ExternalID == other.ExternalID &&
		m.TournamentID == other.TournamentID &&
		m.Round == other.Round &&
		m.Player1ID == other.Player1ID &&
		m.Player2ID == other.Player2ID &&
		m.Status == other.Status &&
		m.WinnerID == other.WinnerID &&
		m.Score == other.Score &&
		m.Surface == other.Surface &&
		m.BestOf == other.BestOf
}

// MatchRecord is the canonical shape produced by the draw and daily
// schedule normalizers. Competitors are referenced by provider ID; an
// empty competitor slot stays empty rather than dropping the match.
type MatchRecord struct {
	ExternalID    string
	Round         string
	Competitor1ID string
	Competitor2ID string
	ScheduledAt   time.Time
	Status        MatchStatus
	WinnerExtID   string
	Score         string
}
