package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fantasytennis/ingestion/internal/models"
)

// ScheduleResponse mirrors both the daily summaries and the season
// summaries payloads; the provider uses the same shape for each.
type ScheduleResponse struct {
	Summaries []MatchSummary `json:"summaries"`
}

// MatchSummary is one sport event plus its live status block.
type MatchSummary struct {
	SportEvent       SportEvent  `json:"sport_event"`
	SportEventStatus EventStatus `json:"sport_event_status"`
}

// SportEvent describes the fixture itself.
type SportEvent struct {
	ID          string       `json:"id"`
	StartTime   string       `json:"start_time"`
	Competitors []Competitor `json:"competitors"`
	Context     EventContext `json:"sport_event_context"`
}

// EventContext carries round and season references.
type EventContext struct {
	Round struct {
		Name string `json:"name"`
	} `json:"round"`
	Season struct {
		ID string `json:"id"`
	} `json:"season"`
}

// EventStatus carries the provider's match state vocabulary.
type EventStatus struct {
	Status       string        `json:"status"`
	MatchStatus  string        `json:"match_status"`
	WinnerID     string        `json:"winner_id"`
	PeriodScores []PeriodScore `json:"period_scores"`
}

// PeriodScore is one set of the final score line.
type PeriodScore struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// matchStatusMap maps the provider's match vocabulary onto the closed
// internal set. Unlisted values map to scheduled: the mapping is total
// by design, never an error.
var matchStatusMap = map[string]models.MatchStatus{
	"not_started":          models.MatchScheduled,
	"match_about_to_start": models.MatchScheduled,
	"delayed":              models.MatchScheduled,
	"postponed":            models.MatchScheduled,
	"live":                 models.MatchInProgress,
	"started":              models.MatchInProgress,
	"in_progress":          models.MatchInProgress,
	"interrupted":          models.MatchInProgress,
	"suspended":            models.MatchInProgress,
	"ended":                models.MatchCompleted,
	"closed":               models.MatchCompleted,
	"complete":             models.MatchCompleted,
	"completed":            models.MatchCompleted,
	"retired":              models.MatchCompleted,
	"cancelled":            models.MatchCancelled,
	"canceled":             models.MatchCancelled,
	"abandoned":            models.MatchCancelled,
	"walkover":             models.MatchCancelled,
}

// MatchStatus maps one provider status string to the internal status.
func MatchStatus(raw string) models.MatchStatus {
	if status, ok := matchStatusMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return models.MatchScheduled
}

// Matches parses a summaries payload into canonical match records.
// Entries missing the sport event ID are filtered out; entries with an
// empty competitor slot are kept with that slot blank. The second return
// value is the number of filtered entries.
func Matches(raw []byte) ([]models.MatchRecord, int, error) {
	var resp ScheduleResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse summaries payload: %w", err)
	}

	var records []models.MatchRecord
	filtered := 0
	for _, summary := range resp.Summaries {
		event := summary.SportEvent
		if event.ID == "" {
			filtered++
			continue
		}

		record := models.MatchRecord{
			ExternalID:  event.ID,
			Round:       event.Context.Round.Name,
			Status:      MatchStatus(summary.SportEventStatus.MatchStatus),
			WinnerExtID: summary.SportEventStatus.WinnerID,
			Score:       formatScore(summary.SportEventStatus.PeriodScores),
		}
		if summary.SportEventStatus.MatchStatus == "" {
			record.Status = MatchStatus(summary.SportEventStatus.Status)
		}
		if len(event.Competitors) > 0 {
			record.Competitor1ID = event.Competitors[0].ID
		}
		if len(event.Competitors) > 1 {
			record.Competitor2ID = event.Competitors[1].ID
		}
		if ts, err := time.Parse(time.RFC3339, event.StartTime); err == nil {
			record.ScheduledAt = ts
		}
		records = append(records, record)
	}
	return records, filtered, nil
}

// formatScore renders period scores as a conventional set line, e.g.
// "6-4 3-6 7-6".
func formatScore(periods []PeriodScore) string {
	if len(periods) == 0 {
		return ""
	}
	parts := make([]string, 0, len(periods))
	for _, p := range periods {
		parts = append(parts, fmt.Sprintf("%d-%d", p.HomeScore, p.AwayScore))
	}
	return strings.Join(parts, " ")
}
