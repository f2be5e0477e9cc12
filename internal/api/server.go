// Package api exposes the ingestion triggers and the read listings over
// HTTP. Sync endpoints are admin-gated; listings are public and served
// from cache when possible.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fantasytennis/ingestion/internal/auth"
	"fantasytennis/ingestion/internal/client"
	"fantasytennis/ingestion/internal/config"
	"fantasytennis/ingestion/internal/models"
	"fantasytennis/ingestion/internal/sync"
)

// SyncService is the orchestrator surface the handlers call.
type SyncService interface {
	SyncRankings(ctx context.Context) (*sync.Summary, error)
	SyncTournaments(ctx context.Context, opts sync.TournamentOptions) (*sync.Summary, error)
	SyncDraw(ctx context.Context, tournamentID int) (*sync.Summary, error)
	SyncEntryList(ctx context.Context, tournamentID int) (*sync.Summary, error)
	SyncResults(ctx context.Context, day time.Time) (*sync.Summary, error)
}

// Authorizer decides whether a caller may trigger syncs.
type Authorizer interface {
	Authorize(ctx context.Context, bearer, setupToken string) error
}

// PlayerLister serves the player listing.
type PlayerLister interface {
	List(ctx context.Context) ([]*models.Player, error)
}

// TournamentLister serves the tournament listing. Statuses are recomputed
// from dates before every listing so a stale stored status never leaks.
type TournamentLister interface {
	List(ctx context.Context) ([]*models.Tournament, error)
	RefreshStatuses(ctx context.Context) (int64, error)
}

// ListingCache fronts the listings; nil-safe via the noop implementation.
type ListingCache interface {
	GetPlayers(ctx context.Context) ([]*models.Player, bool)
	SetPlayers(ctx context.Context, players []*models.Player)
	GetTournaments(ctx context.Context) ([]*models.Tournament, bool)
	SetTournaments(ctx context.Context, tournaments []*models.Tournament)
}

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server holds the HTTP dependencies and builds the router.
type Server struct {
	cfg         *config.Config
	gate        Authorizer
	syncs       SyncService
	players     PlayerLister
	tournaments TournamentLister
	listings    ListingCache
	health      HealthChecker
}

// NewServer wires an API server. listings may be nil when Redis is down.
func NewServer(cfg *config.Config, gate Authorizer, syncs SyncService, players PlayerLister, tournaments TournamentLister, listings ListingCache, health HealthChecker) *Server {
	s := &Server{
		cfg:         cfg,
		gate:        gate,
		syncs:       syncs,
		players:     players,
		tournaments: tournaments,
		health:      health,
	}
	if listings != nil {
		s.listings = listings
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	origins := s.cfg.CORSOrigins()
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Setup-Token")
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.handleHealth)
	r.GET("/players", s.handleListPlayers)
	r.GET("/tournaments", s.handleListTournaments)

	syncs := r.Group("/sync")
	syncs.Use(s.requireAdmin())
	{
		syncs.POST("/rankings", s.handleSyncRankings)
		syncs.POST("/tournaments", s.handleSyncTournaments)
		syncs.POST("/draws", s.handleSyncDraw)
		syncs.POST("/entries", s.handleSyncEntryList)
		syncs.POST("/results", s.handleSyncResults)
	}

	return r
}

// requireAdmin authorizes the request before any sync handler runs.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c.GetHeader("Authorization"))
		setupToken := c.GetHeader("X-Setup-Token")

		if err := s.gate.Authorize(c.Request.Context(), bearer, setupToken); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
				status = http.StatusUnauthorized
			case errors.Is(err, auth.ErrNotAdmin):
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// syncError maps orchestrator failures onto HTTP statuses. Provider rate
// limiting surfaces as 429 so callers know to retry later.
func syncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sync.ErrTournamentNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, client.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
