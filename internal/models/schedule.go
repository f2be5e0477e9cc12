package models

import (
	"database/sql"
	"time"
)

// ParticipationStatus is a player's state within one tournament.
type ParticipationStatus string

const (
	ParticipationConfirmed  ParticipationStatus = "confirmed"
	ParticipationQualifying ParticipationStatus = "qualifying"
	ParticipationAlternate  ParticipationStatus = "alternate"
	ParticipationWithdrawn  ParticipationStatus = "withdrawn"
	ParticipationEliminated ParticipationStatus = "eliminated"
	ParticipationChampion   ParticipationStatus = "champion"
)

// EntryType describes how a player entered the draw.
type EntryType string

const (
	EntryMainDraw         EntryType = "main_draw"
	EntryQualifier        EntryType = "qualifier"
	EntryWildcard         EntryType = "wildcard"
	EntryLuckyLoser       EntryType = "lucky_loser"
	EntryProtectedRanking EntryType = "protected_ranking"
)

// PlayerSchedule is the join between a player and a tournament. Uniqueness
// is (player_id, tournament_id): later syncs upsert onto the pair.
type PlayerSchedule struct {
	ID           int                 `db:"id"`
	PlayerID     int                 `db:"player_id"`
	TournamentID int                 `db:"tournament_id"`
	Status       ParticipationStatus `db:"status"`
	EntryType    EntryType           `db:"entry_type"`
	Seed         sql.NullInt32       `db:"seed"`
	RoundReached sql.NullString      `db:"round_reached"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

// Equivalent reports whether two schedule rows carry the same synced fields.
func (s *PlayerSchedule) Equivalent(other *PlayerSchedule) bool {
	if other == nil {
		return false
	}
	return s.PlayerID == other.PlayerID &&
		s.TournamentID == other.TournamentID &&
		s.Status == other.Status &&
		s.EntryType == other.EntryType &&
		s.Seed == other.Seed &&
		s.RoundReached == other.RoundReached
}

// EntryRecord is the canonical shape produced by the entry-list normalizer.
// Players are referenced by provider ID when the page exposes one, with the
// display name as the fallback matching key.
type EntryRecord struct {
	CompetitorID string
	Name         string
	CountryCode  string
	Seed         int
	EntryType    EntryType
	Status       ParticipationStatus
}
