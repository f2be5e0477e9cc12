package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasytennis/ingestion/internal/auth"
	"fantasytennis/ingestion/internal/client"
	"fantasytennis/ingestion/internal/config"
	"fantasytennis/ingestion/internal/models"
	"fantasytennis/ingestion/internal/sync"
)

type stubGate struct {
	err    error
	bearer string
	setup  string
}

func (s *stubGate) Authorize(_ context.Context, bearer, setupToken string) error {
	s.bearer = bearer
	s.setup = setupToken
	return s.err
}

type stubSyncs struct {
	summary *sync.Summary
	err     error
	calls   []string
}

func (s *stubSyncs) SyncRankings(context.Context) (*sync.Summary, error) {
	s.calls = append(s.calls, "rankings")
	return s.summary, s.err
}

func (s *stubSyncs) SyncTournaments(_ context.Context, opts sync.TournamentOptions) (*sync.Summary, error) {
	s.calls = append(s.calls, fmt.Sprintf("tournaments:batch=%d,max=%d,offset=%d,resume=%s,year=%s",
		opts.BatchSize, opts.MaxBatches, opts.Offset, opts.ResumeFrom, opts.Year))
	return s.summary, s.err
}

func (s *stubSyncs) SyncDraw(_ context.Context, tournamentID int) (*sync.Summary, error) {
	s.calls = append(s.calls, fmt.Sprintf("draw:%d", tournamentID))
	return s.summary, s.err
}

func (s *stubSyncs) SyncEntryList(_ context.Context, tournamentID int) (*sync.Summary, error) {
	s.calls = append(s.calls, fmt.Sprintf("entries:%d", tournamentID))
	return s.summary, s.err
}

func (s *stubSyncs) SyncResults(_ context.Context, day time.Time) (*sync.Summary, error) {
	s.calls = append(s.calls, "results:"+day.Format("2006-01-02"))
	return s.summary, s.err
}

type stubPlayers struct {
	players []*models.Player
	err     error
	lists   int
}

func (s *stubPlayers) List(context.Context) ([]*models.Player, error) {
	s.lists++
	return s.players, s.err
}

type stubTournaments struct {
	tournaments []*models.Tournament
	refreshes   int
	lists       int
}

func (s *stubTournaments) List(context.Context) ([]*models.Tournament, error) {
	s.lists++
	return s.tournaments, nil
}

func (s *stubTournaments) RefreshStatuses(context.Context) (int64, error) {
	s.refreshes++
	return 0, nil
}

type stubListings struct {
	players     []*models.Player
	tournaments []*models.Tournament
	setPlayers  int
}

func (s *stubListings) GetPlayers(context.Context) ([]*models.Player, bool) {
	return s.players, s.players != nil
}

func (s *stubListings) SetPlayers(_ context.Context, players []*models.Player) {
	s.setPlayers++
	s.players = players
}

func (s *stubListings) GetTournaments(context.Context) ([]*models.Tournament, bool) {
	return s.tournaments, s.tournaments != nil
}

func (s *stubListings) SetTournaments(_ context.Context, tournaments []*models.Tournament) {
	s.tournaments = tournaments
}

type stubHealth struct{ err error }

func (s *stubHealth) Health(context.Context) error { return s.err }

type serverStubs struct {
	gate        *stubGate
	syncs       *stubSyncs
	players     *stubPlayers
	tournaments *stubTournaments
	listings    *stubListings
}

func newTestServer(t *testing.T) (*Server, *serverStubs) {
	t.Helper()
	stubs := &serverStubs{
		gate:        &stubGate{},
		syncs:       &stubSyncs{summary: &sync.Summary{Inserted: 1}},
		players:     &stubPlayers{},
		tournaments: &stubTournaments{},
		listings:    &stubListings{},
	}
	cfg := &config.Config{AppEnv: "test", CORSAllowedOrigins: "*"}
	server := NewServer(cfg, stubs.gate, stubs.syncs, stubs.players, stubs.tournaments, stubs.listings, &stubHealth{})
	return server, stubs
}

func doRequest(server *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestSyncEndpoints_RequireAuthorization(t *testing.T) {
	server, stubs := newTestServer(t)
	stubs.gate.err = auth.ErrMissingToken

	w := doRequest(server, http.MethodPost, "/sync/rankings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, stubs.syncs.calls, "handler never runs without authorization")

	stubs.gate.err = auth.ErrNotAdmin
	w = doRequest(server, http.MethodPost, "/sync/rankings", "", map[string]string{"Authorization": "Bearer some-token"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSyncEndpoints_PassCredentialsToGate(t *testing.T) {
	server, stubs := newTestServer(t)

	w := doRequest(server, http.MethodPost, "/sync/rankings", "", map[string]string{
		"Authorization": "Bearer abc123",
		"X-Setup-Token": "bootstrap",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", stubs.gate.bearer)
	assert.Equal(t, "bootstrap", stubs.gate.setup)
}

func TestSyncRankings_ReturnsSummary(t *testing.T) {
	server, stubs := newTestServer(t)
	stubs.syncs.summary = &sync.Summary{Inserted: 10, Skipped: 5}

	w := doRequest(server, http.MethodPost, "/sync/rankings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary sync.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 10, summary.Inserted)
	assert.Equal(t, 5, summary.Skipped)
}

func TestSyncTournaments_BindsRequestBody(t *testing.T) {
	server, stubs := newTestServer(t)

	body := `{"batch_size": 5, "max_batches": 2, "offset": 3, "resumeFrom": "sr:competition:3", "year": "2025"}`
	w := doRequest(server, http.MethodPost, "/sync/tournaments", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stubs.syncs.calls, 1)
	assert.Equal(t, "tournaments:batch=5,max=2,offset=3,resume=sr:competition:3,year=2025", stubs.syncs.calls[0])

	// No body at all runs with defaults.
	w = doRequest(server, http.MethodPost, "/sync/tournaments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stubs.syncs.calls, 2)
	assert.Equal(t, "tournaments:batch=0,max=0,offset=0,resume=,year=", stubs.syncs.calls[1])

	w = doRequest(server, http.MethodPost, "/sync/tournaments", `{"batch_size": "zero"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-numeric batch_size")

	w = doRequest(server, http.MethodPost, "/sync/tournaments", `{"batch_size": -1}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "negative batch_size")
}

func TestSyncDraw_RequiresTournamentID(t *testing.T) {
	server, stubs := newTestServer(t)

	w := doRequest(server, http.MethodPost, "/sync/draws", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing body")

	w = doRequest(server, http.MethodPost, "/sync/draws", `{"tournament_id": 0}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "zero tournament_id")

	w = doRequest(server, http.MethodPost, "/sync/draws", `{"tournament_id": 42}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"draw:42"}, stubs.syncs.calls)
}

func TestSyncEntryList_RequiresTournamentID(t *testing.T) {
	server, stubs := newTestServer(t)

	w := doRequest(server, http.MethodPost, "/sync/entries", "not json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(server, http.MethodPost, "/sync/entries", `{"tournament_id": 7}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"entries:7"}, stubs.syncs.calls)
}

func TestSyncDraw_ErrorMapping(t *testing.T) {
	server, stubs := newTestServer(t)

	stubs.syncs.err = fmt.Errorf("%w: id 42", sync.ErrTournamentNotFound)
	w := doRequest(server, http.MethodPost, "/sync/draws", `{"tournament_id": 42}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stubs.syncs.err = fmt.Errorf("fetch rankings: %w", client.ErrRateLimited)
	w = doRequest(server, http.MethodPost, "/sync/draws", `{"tournament_id": 42}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	stubs.syncs.err = fmt.Errorf("connection refused")
	w = doRequest(server, http.MethodPost, "/sync/draws", `{"tournament_id": 42}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSyncResults_DateValidation(t *testing.T) {
	server, stubs := newTestServer(t)

	w := doRequest(server, http.MethodPost, "/sync/results", `{"date": "2025-05-18"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"results:2025-05-18"}, stubs.syncs.calls)

	w = doRequest(server, http.MethodPost, "/sync/results", `{"date": "18/05/2025"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing body defaults to today.
	w = doRequest(server, http.MethodPost, "/sync/results", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, stubs.syncs.calls, 2)
}

func TestListPlayers_CacheMissFillsCache(t *testing.T) {
	server, stubs := newTestServer(t)
	stubs.players.players = []*models.Player{{ID: 1, Name: "J. Sinner", Price: 20}}

	w := doRequest(server, http.MethodGet, "/players", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stubs.players.lists)
	assert.Equal(t, 1, stubs.listings.setPlayers)

	// Second read is served from the cache.
	w = doRequest(server, http.MethodGet, "/players", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stubs.players.lists)
}

func TestListTournaments_RefreshesStatusesFirst(t *testing.T) {
	server, stubs := newTestServer(t)
	stubs.tournaments.tournaments = []*models.Tournament{{ID: 1, Name: "Rome Masters"}}

	w := doRequest(server, http.MethodGet, "/tournaments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stubs.tournaments.refreshes)
	assert.Equal(t, 1, stubs.tournaments.lists)
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/sync/rankings", nil)
	req.Header.Set("Origin", "https://fantasy.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
