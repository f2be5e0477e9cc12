package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fantasytennis/ingestion/internal/sync"
)

type syncTournamentsRequest struct {
	BatchSize  int    `json:"batch_size"`
	MaxBatches int    `json:"max_batches"`
	Offset     int    `json:"offset"`
	ResumeFrom string `json:"resumeFrom"`
	Year       string `json:"year"`
}

type tournamentScopedRequest struct {
	TournamentID int `json:"tournament_id"`
}

type syncResultsRequest struct {
	Date string `json:"date"`
}

// bindOptionalJSON decodes an optional JSON body. A missing body is
// fine; a malformed one is a 400.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.health.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSyncRankings(c *gin.Context) {
	summary, err := s.syncs.SyncRankings(c.Request.Context())
	if err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSyncTournaments(c *gin.Context) {
	var req syncTournamentsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.BatchSize < 0 || req.MaxBatches < 0 || req.Offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size, max_batches and offset must not be negative"})
		return
	}

	opts := sync.TournamentOptions{
		BatchSize:  req.BatchSize,
		MaxBatches: req.MaxBatches,
		Offset:     req.Offset,
		ResumeFrom: req.ResumeFrom,
		Year:       req.Year,
	}

	summary, err := s.syncs.SyncTournaments(c.Request.Context(), opts)
	if err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSyncDraw(c *gin.Context) {
	var req tournamentScopedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TournamentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tournament_id is required"})
		return
	}

	summary, err := s.syncs.SyncDraw(c.Request.Context(), req.TournamentID)
	if err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSyncEntryList(c *gin.Context) {
	var req tournamentScopedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TournamentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tournament_id is required"})
		return
	}

	summary, err := s.syncs.SyncEntryList(c.Request.Context(), req.TournamentID)
	if err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSyncResults(c *gin.Context) {
	var req syncResultsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	day := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	summary, err := s.syncs.SyncResults(c.Request.Context(), day)
	if err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleListPlayers(c *gin.Context) {
	ctx := c.Request.Context()
	if s.listings != nil {
		if players, ok := s.listings.GetPlayers(ctx); ok {
			c.JSON(http.StatusOK, players)
			return
		}
	}

	players, err := s.players.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.listings != nil {
		s.listings.SetPlayers(ctx, players)
	}
	c.JSON(http.StatusOK, players)
}

func (s *Server) handleListTournaments(c *gin.Context) {
	ctx := c.Request.Context()
	if s.listings != nil {
		if tournaments, ok := s.listings.GetTournaments(ctx); ok {
			c.JSON(http.StatusOK, tournaments)
			return
		}
	}

	// Lifecycle states are derived from dates; refresh before listing so
	// a tournament that started overnight reads as ongoing.
	if _, err := s.tournaments.RefreshStatuses(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tournaments, err := s.tournaments.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.listings != nil {
		s.listings.SetTournaments(ctx, tournaments)
	}
	c.JSON(http.StatusOK, tournaments)
}
