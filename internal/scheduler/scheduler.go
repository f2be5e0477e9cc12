// Package scheduler runs the recurring ingestion jobs: a nightly refresh
// of rankings and tournament lifecycle states, and a periodic poll of the
// daily results feed while tournaments are running.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"fantasytennis/ingestion/internal/config"
	"fantasytennis/ingestion/internal/metrics"
	"fantasytennis/ingestion/internal/repository"
	"fantasytennis/ingestion/internal/sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages background ingestion tasks.
type Scheduler struct {
	cfg      *config.Config
	syncer   *sync.Syncer
	db       *repository.Database
	cron     *cron.Cron
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, syncer *sync.Syncer, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		syncer:   syncer,
		db:       db,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		if err := s.nightlyRefresh(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.ResultsPollCron, func() {
		if err := s.pollResults(ctx); err != nil {
			log.Error().Err(err).Msg("Results poll failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule results poll: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("nightly", s.cfg.NightlyRefreshCron).
		Str("results", s.cfg.ResultsPollCron).
		Msg("Ingestion jobs scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// nightlyRefresh re-syncs the rankings table and recomputes tournament
// lifecycle states from their dates. Rankings drive prices, so this runs
// during off-hours before lineups lock.
func (s *Scheduler) nightlyRefresh(ctx context.Context) error {
	start := time.Now()

	summary, err := s.syncer.SyncRankings(ctx)
	if err != nil {
		return fmt.Errorf("rankings refresh failed: %w", err)
	}
	log.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("Rankings refreshed")

	updated, err := s.db.Tournaments.RefreshStatuses(ctx)
	if err != nil {
		return fmt.Errorf("tournament status refresh failed: %w", err)
	}
	log.Info().Int64("updated", updated).Msg("Tournament statuses refreshed")

	playerCount, err := s.db.Players.Count(ctx)
	if err == nil {
		tournamentCount, terr := s.db.Tournaments.Count(ctx)
		if terr == nil {
			metrics.UpdateIngestionStats(int64(playerCount), int64(tournamentCount))
		}
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Nightly refresh complete")
	return nil
}

// pollResults ingests the daily summaries feed for today. Matches from
// tournaments that were never synced are ignored by the orchestrator, so
// the poll is cheap on quiet days.
func (s *Scheduler) pollResults(ctx context.Context) error {
	start := time.Now()

	summary, err := s.syncer.SyncResults(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	if summary.Updated > 0 || len(summary.Errors) > 0 {
		log.Info().
			Int("updated", summary.Updated).
			Int("skipped", summary.Skipped).
			Int("errors", len(summary.Errors)).
			Dur("duration", time.Since(start)).
			Msg("Results poll complete")
	}
	return nil
}
