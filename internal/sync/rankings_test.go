package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasytennis/ingestion/internal/pricing"
)

const rankingsPayload = `{
	"rankings": [
		{
			"type_id": 1,
			"name": "ATP",
			"gender": "men",
			"competitor_rankings": [
				{
					"rank": 1,
					"points": 11830,
					"competitor": {"id": "sr:competitor:225050", "name": "J. Sinner", "country_code": "ITA"}
				},
				{
					"rank": 5,
					"points": 4805,
					"competitor": {"id": "sr:competitor:122366", "name": "T. Fritz", "country_code": "USA"}
				},
				{
					"rank": 50,
					"points": 1023,
					"competitor": {"id": "sr:competitor:106755", "name": "R. Bautista Agut", "country_code": "ESP"}
				}
			]
		}
	]
}`

func TestSyncRankings_EndToEnd(t *testing.T) {
	provider := newFakeProvider()
	provider.rankings = []byte(rankingsPayload)
	players := newFakePlayers()
	syncer, listings := newTestSyncer(provider, players, newFakeTournaments(), newFakeMatches(), newFakeSchedules(), &fakeCursor{}, 0)

	summary, err := syncer.SyncRankings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, 1, listings.invalidations)

	cases := []struct {
		externalID string
		rank       int
	}{
		{"sr:competitor:225050", 1},
		{"sr:competitor:122366", 5},
		{"sr:competitor:106755", 50},
	}
	for _, tc := range cases {
		player, err := players.GetByExternalID(context.Background(), tc.externalID)
		require.NoError(t, err)
		require.NotNil(t, player, "player %s should exist", tc.externalID)

		assert.Equal(t, int32(tc.rank), player.Ranking.Int32)
		assert.Equal(t, player.Ranking, player.LiveRanking, "live ranking starts equal to the official ranking")
		assert.Equal(t, pricing.Price(tc.rank), player.Price)
	}
}

func TestSyncRankings_SecondRunIsNoOp(t *testing.T) {
	provider := newFakeProvider()
	provider.rankings = []byte(rankingsPayload)
	players := newFakePlayers()
	syncer, listings := newTestSyncer(provider, players, newFakeTournaments(), newFakeMatches(), newFakeSchedules(), &fakeCursor{}, 0)

	_, err := syncer.SyncRankings(context.Background())
	require.NoError(t, err)
	firstUpserts := players.upserts

	summary, err := syncer.SyncRankings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 3, summary.Skipped, "identical payload produces no writes")
	assert.Equal(t, firstUpserts, players.upserts, "no upsert issued when nothing changed")
	assert.Equal(t, 1, listings.invalidations, "listings not invalidated on a no-op run")
}

func TestSyncRankings_NameOnlyRowsFallBackToNameMatching(t *testing.T) {
	provider := newFakeProvider()
	provider.rankings = []byte(`{
		"rankings": [{"competitor_rankings": [
			{"rank": 1, "points": 100, "competitor": {"id": "sr:competitor:1", "name": "A"}},
			{"rank": 2, "points": 90, "competitor": {"name": "No ID"}},
			{"rank": 3, "points": 85, "competitor": {}},
			{"rank": 0, "points": 80, "competitor": {"id": "sr:competitor:3", "name": "Bad Rank"}}
		]}]
	}`)
	players := newFakePlayers()
	syncer, _ := newTestSyncer(provider, players, newFakeTournaments(), newFakeMatches(), newFakeSchedules(), &fakeCursor{}, 0)

	summary, err := syncer.SyncRankings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 2, summary.Filtered, "rows with no identity at all or a bad rank are dropped")

	nameOnly, err := players.GetByName(context.Background(), "No ID")
	require.NoError(t, err)
	require.NotNil(t, nameOnly, "row without a competitor id is written keyed by name")
	assert.False(t, nameOnly.ExternalID.Valid)
	assert.Equal(t, int32(2), nameOnly.Ranking.Int32)

	// Repeating the payload matches the name-keyed row again; no writes.
	second, err := syncer.SyncRankings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 2, second.Skipped)
}

func TestSyncRankings_NameMatchKeepsStoredCompetitorID(t *testing.T) {
	provider := newFakeProvider()
	provider.rankings = []byte(`{
		"rankings": [{"competitor_rankings": [
			{"rank": 7, "points": 3000, "competitor": {"name": "J. Sinner"}}
		]}]
	}`)
	players := newFakePlayers()
	seedPlayer(t, players, "sr:competitor:225050", "J. Sinner")
	syncer, _ := newTestSyncer(provider, players, newFakeTournaments(), newFakeMatches(), newFakeSchedules(), &fakeCursor{}, 0)

	summary, err := syncer.SyncRankings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	player, err := players.GetByExternalID(context.Background(), "sr:competitor:225050")
	require.NoError(t, err)
	require.NotNil(t, player, "stored competitor id survives the name-keyed write")
	assert.Equal(t, int32(7), player.Ranking.Int32)
}
