package sync

import (
	"context"
	"fmt"
	"time"

	"fantasytennis/ingestion/internal/models"
)

// fakeProvider serves canned payloads and counts calls per endpoint.
type fakeProvider struct {
	rankings        []byte
	competitions    []byte
	seasons         map[string][]byte
	seasonInfo      map[string][]byte
	summaries       map[string][]byte
	daily           map[string][]byte
	entryLists      map[string][]byte
	calls           map[string]int
	errCompetitions error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		seasons:    map[string][]byte{},
		seasonInfo: map[string][]byte{},
		summaries:  map[string][]byte{},
		daily:      map[string][]byte{},
		entryLists: map[string][]byte{},
		calls:      map[string]int{},
	}
}

func (f *fakeProvider) FetchRankings(context.Context) ([]byte, error) {
	f.calls["rankings"]++
	return f.rankings, nil
}

func (f *fakeProvider) FetchCompetitions(context.Context) ([]byte, error) {
	f.calls["competitions"]++
	if f.errCompetitions != nil {
		return nil, f.errCompetitions
	}
	return f.competitions, nil
}

func (f *fakeProvider) FetchCompetitionSeasons(_ context.Context, competitionID string) ([]byte, error) {
	f.calls["seasons:"+competitionID]++
	body, ok := f.seasons[competitionID]
	if !ok {
		return nil, fmt.Errorf("no seasons for %s", competitionID)
	}
	return body, nil
}

func (f *fakeProvider) FetchSeasonInfo(_ context.Context, seasonID string) ([]byte, error) {
	f.calls["info:"+seasonID]++
	body, ok := f.seasonInfo[seasonID]
	if !ok {
		return nil, fmt.Errorf("no season info for %s", seasonID)
	}
	return body, nil
}

func (f *fakeProvider) FetchSeasonSummaries(_ context.Context, seasonID string) ([]byte, error) {
	f.calls["summaries:"+seasonID]++
	body, ok := f.summaries[seasonID]
	if !ok {
		return nil, fmt.Errorf("no summaries for %s", seasonID)
	}
	return body, nil
}

func (f *fakeProvider) FetchDailySummaries(_ context.Context, day time.Time) ([]byte, error) {
	key := day.Format("2006-01-02")
	f.calls["daily:"+key]++
	body, ok := f.daily[key]
	if !ok {
		return nil, fmt.Errorf("no daily summaries for %s", key)
	}
	return body, nil
}

func (f *fakeProvider) FetchEntryList(_ context.Context, seasonID string) ([]byte, error) {
	f.calls["entry:"+seasonID]++
	body, ok := f.entryLists[seasonID]
	if !ok {
		return nil, fmt.Errorf("no entry list for %s", seasonID)
	}
	return body, nil
}

// fakePlayers is an in-memory player store supporting both conflict
// targets: external competitor ID and display name.
type fakePlayers struct {
	nextID  int
	players []*models.Player
	upserts int
}

func newFakePlayers() *fakePlayers {
	return &fakePlayers{nextID: 1}
}

func (f *fakePlayers) Upsert(_ context.Context, player *models.Player) error {
	f.upserts++
	for i, existing := range f.players {
		if existing.ExternalID == player.ExternalID {
			player.ID = existing.ID
			copied := *player
			f.players[i] = &copied
			return nil
		}
	}
	player.ID = f.nextID
	f.nextID++
	copied := *player
	f.players = append(f.players, &copied)
	return nil
}

func (f *fakePlayers) UpsertByName(_ context.Context, player *models.Player) error {
	f.upserts++
	for i, existing := range f.players {
		if existing.Name == player.Name {
			player.ID = existing.ID
			copied := *player
			// The name-keyed write leaves a stored competitor ID alone.
			copied.ExternalID = existing.ExternalID
			f.players[i] = &copied
			return nil
		}
	}
	player.ID = f.nextID
	f.nextID++
	copied := *player
	f.players = append(f.players, &copied)
	return nil
}

func (f *fakePlayers) GetByExternalID(_ context.Context, externalID string) (*models.Player, error) {
	for _, player := range f.players {
		if player.ExternalID.Valid && player.ExternalID.String == externalID {
			copied := *player
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePlayers) GetByName(_ context.Context, name string) (*models.Player, error) {
	for _, player := range f.players {
		if player.Name == name {
			copied := *player
			return &copied, nil
		}
	}
	return nil, nil
}

// fakeTournaments is an in-memory tournament store keyed by season ID.
type fakeTournaments struct {
	nextID      int
	tournaments map[string]*models.Tournament
	upserts     int
}

func newFakeTournaments() *fakeTournaments {
	return &fakeTournaments{nextID: 1, tournaments: map[string]*models.Tournament{}}
}

func (f *fakeTournaments) Upsert(_ context.Context, tournament *models.Tournament) error {
	f.upserts++
	if existing, ok := f.tournaments[tournament.SeasonID.String]; ok {
		tournament.ID = existing.ID
	} else {
		tournament.ID = f.nextID
		f.nextID++
	}
	copied := *tournament
	f.tournaments[tournament.SeasonID.String] = &copied
	return nil
}

func (f *fakeTournaments) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	for _, tournament := range f.tournaments {
		if tournament.ID == id {
			copied := *tournament
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTournaments) GetBySeasonID(_ context.Context, seasonID string) (*models.Tournament, error) {
	if tournament, ok := f.tournaments[seasonID]; ok {
		copied := *tournament
		return &copied, nil
	}
	return nil, nil
}

// fakeMatches is an in-memory match store keyed by external ID.
type fakeMatches struct {
	nextID  int
	matches map[string]*models.Match
	upserts int
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{nextID: 1, matches: map[string]*models.Match{}}
}

func (f *fakeMatches) Upsert(_ context.Context, match *models.Match) error {
	f.upserts++
	if existing, ok := f.matches[match.ExternalID]; ok {
		match.ID = existing.ID
	} else {
		match.ID = f.nextID
		f.nextID++
	}
	copied := *match
	f.matches[match.ExternalID] = &copied
	return nil
}

func (f *fakeMatches) GetByExternalID(_ context.Context, externalID string) (*models.Match, error) {
	if match, ok := f.matches[externalID]; ok {
		copied := *match
		return &copied, nil
	}
	return nil, nil
}

// fakeSchedules is an in-memory participation store keyed by the
// (player, tournament) pair.
type fakeSchedules struct {
	nextID    int
	schedules map[[2]int]*models.PlayerSchedule
	upserts   int
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{nextID: 1, schedules: map[[2]int]*models.PlayerSchedule{}}
}

func (f *fakeSchedules) Upsert(_ context.Context, schedule *models.PlayerSchedule) error {
	f.upserts++
	key := [2]int{schedule.PlayerID, schedule.TournamentID}
	if existing, ok := f.schedules[key]; ok {
		schedule.ID = existing.ID
	} else {
		schedule.ID = f.nextID
		f.nextID++
	}
	copied := *schedule
	f.schedules[key] = &copied
	return nil
}

func (f *fakeSchedules) Get(_ context.Context, playerID, tournamentID int) (*models.PlayerSchedule, error) {
	if schedule, ok := f.schedules[[2]int{playerID, tournamentID}]; ok {
		copied := *schedule
		return &copied, nil
	}
	return nil, nil
}

// fakeCursor is an in-memory singleton resume cursor.
type fakeCursor struct {
	state  *models.SyncState
	sets   int
	clears int
}

func (f *fakeCursor) Get(context.Context) (*models.SyncState, error) {
	if f.state == nil {
		return nil, nil
	}
	copied := *f.state
	return &copied, nil
}

func (f *fakeCursor) Set(_ context.Context, lastCompetitionID string) error {
	f.sets++
	f.state = &models.SyncState{LastCompetitionID: lastCompetitionID, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeCursor) Clear(context.Context) error {
	f.clears++
	f.state = nil
	return nil
}

type fakeListingCache struct {
	invalidations int
}

func (f *fakeListingCache) InvalidateListings(context.Context) {
	f.invalidations++
}

// newTestSyncer wires a Syncer straight from fakes, bypassing the
// concrete repository constructor.
func newTestSyncer(provider Provider, players *fakePlayers, tournaments *fakeTournaments, matches *fakeMatches, schedules *fakeSchedules, cursor *fakeCursor, batch int) (*Syncer, *fakeListingCache) {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	listings := &fakeListingCache{}
	return &Syncer{
		provider:    provider,
		players:     players,
		tournaments: tournaments,
		matches:     matches,
		schedules:   schedules,
		cursor:      cursor,
		cache:       listings,
		batchSize:   batch,
	}, listings
}
