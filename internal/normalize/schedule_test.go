package normalize

import (
	"testing"

	"fantasytennis/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchStatus_MappingTable(t *testing.T) {
	cases := map[string]models.MatchStatus{
		"not_started":          models.MatchScheduled,
		"match_about_to_start": models.MatchScheduled,
		"delayed":              models.MatchScheduled,
		"postponed":            models.MatchScheduled,
		"live":                 models.MatchInProgress,
		"started":              models.MatchInProgress,
		"interrupted":          models.MatchInProgress,
		"suspended":            models.MatchInProgress,
		"ended":                models.MatchCompleted,
		"closed":               models.MatchCompleted,
		"complete":             models.MatchCompleted,
		"retired":              models.MatchCompleted,
		"cancelled":            models.MatchCancelled,
		"abandoned":            models.MatchCancelled,
		"walkover":             models.MatchCancelled,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MatchStatus(raw), "status %q", raw)
	}
}

func TestMatchStatus_UnrecognizedDefaultsToScheduled(t *testing.T) {
	for _, raw := range []string{"", "some_new_state", "TBD", "rain_delay_special"} {
		assert.Equal(t, models.MatchScheduled, MatchStatus(raw), "status %q", raw)
	}
}

func TestMatches_PartialSeedingAndMissingID(t *testing.T) {
	payload := []byte(`{
		"summaries": [
			{
				"sport_event": {
					"id": "sr:sport_event:1001",
					"start_time": "2025-06-18T12:30:00Z",
					"competitors": [{"id": "sr:competitor:407573", "name": "Sinner, Jannik"}],
					"sport_event_context": {"round": {"name": "quarterfinal"}}
				},
				"sport_event_status": {"status": "not_started", "match_status": "not_started"}
			},
			{
				"sport_event": {
					"start_time": "2025-06-18T14:00:00Z",
					"competitors": [{"id": "sr:competitor:1"}, {"id": "sr:competitor:2"}]
				},
				"sport_event_status": {"status": "not_started"}
			}
		]
	}`)

	records, filtered, err := Matches(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered, "entry without sport event id is dropped")
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "sr:sport_event:1001", got.ExternalID)
	assert.Equal(t, "quarterfinal", got.Round)
	assert.Equal(t, "sr:competitor:407573", got.Competitor1ID)
	assert.Empty(t, got.Competitor2ID, "partially seeded match keeps the empty slot")
	assert.Equal(t, models.MatchScheduled, got.Status)
	assert.Equal(t, "2025-06-18T12:30:00Z", got.ScheduledAt.Format("2006-01-02T15:04:05Z"))
}

func TestMatches_CompletedWithScore(t *testing.T) {
	payload := []byte(`{
		"summaries": [{
			"sport_event": {
				"id": "sr:sport_event:2002",
				"start_time": "2025-06-20T11:00:00Z",
				"competitors": [{"id": "sr:competitor:a"}, {"id": "sr:competitor:b"}],
				"sport_event_context": {"round": {"name": "final"}}
			},
			"sport_event_status": {
				"status": "closed",
				"match_status": "ended",
				"winner_id": "sr:competitor:a",
				"period_scores": [{"home_score": 6, "away_score": 4}, {"home_score": 3, "away_score": 6}, {"home_score": 7, "away_score": 6}]
			}
		}]
	}`)

	records, filtered, err := Matches(payload)
	require.NoError(t, err)
	assert.Zero(t, filtered)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, models.MatchCompleted, got.Status)
	assert.Equal(t, "sr:competitor:a", got.WinnerExtID)
	assert.Equal(t, "6-4 3-6 7-6", got.Score)
}
