package models

import (
	"database/sql"
	"time"
)

// Player represents an ATP competitor tracked by the fantasy game.
type Player struct {
	ID          int            `db:"id"`
	ExternalID  sql.NullString `db:"external_id"`
	Name        string         `db:"name"`
	CountryCode sql.NullString `db:"country_code"`
	Ranking     sql.NullInt32  `db:"ranking"`
	LiveRanking sql.NullInt32  `db:"live_ranking"`
	Points      sql.NullInt32  `db:"points"`
	Price       int            `db:"price"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Equivalent reports whether two players carry the same synced fields.
// Identity and timestamp columns are ignored so a sync can decide
// whether an upsert would actually change anything.
func (p *Player) Equivalent(other *Player) bool {
	if other == nil {
		return false
	}
	return p.ExternalID == other.ExternalID &&
		p.Name == other.Name &&
		p.CountryCode == other.CountryCode &&
		p.Ranking == other.Ranking &&
		p.LiveRanking == other.LiveRanking &&
		p.Points == other.Points &&
		p.Price == other.Price
}

// PlayerRecord is the canonical shape produced by the rankings normalizer.
// Price is intentionally absent: it is derived from the ranking at write
// time and never taken from the provider.
type PlayerRecord struct {
	ExternalID  string
	Name        string
	CountryCode string
	Ranking     int
	Points      int
}
