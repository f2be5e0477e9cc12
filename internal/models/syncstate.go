package models

import "time"

// SyncState is the singleton resume cursor for the tournament sync. It
// holds the last fully processed provider competition so a run capped by
// batch size can continue where the previous invocation stopped.
type SyncState struct {
	LastCompetitionID string    `db:"last_competition_id"`
	UpdatedAt         time.Time `db:"updated_at"`
}
