// Command manualsync runs a full ingestion pass from the terminal: the
// rankings, the complete tournament calendar, and the entry list and draw
// of every tournament that is not yet finished. Summaries are printed as
// JSON so the output can be piped into tooling.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"fantasytennis/ingestion/internal/client"
	"fantasytennis/ingestion/internal/config"
	"fantasytennis/ingestion/internal/models"
	"fantasytennis/ingestion/internal/repository"
	"fantasytennis/ingestion/internal/sync"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 1. Validate database connectivity
	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	tennisClient := client.NewClient(client.Config{
		BaseURL:         cfg.TennisBaseURL,
		APIKey:          cfg.TennisAPIKey,
		Timeout:         cfg.TennisTimeout,
		RequestInterval: cfg.RequestInterval,
		MaxRetries:      cfg.MaxRetries,
		BackoffInitial:  cfg.BackoffInitial,
		BackoffMax:      cfg.BackoffMax,
	})

	syncer := sync.NewSyncer(tennisClient, db, nil, cfg.SyncBatchSize)

	// 2. Rankings first: players must exist before draws and entry lists
	// can resolve them.
	log.Info().Msg("Syncing rankings...")
	summary, err := syncer.SyncRankings(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Rankings sync failed")
	}
	printSummary("rankings", summary)

	// 3. Walk the complete tournament calendar, batch by batch.
	log.Info().Msg("Syncing tournament calendar...")
	for {
		summary, err = syncer.SyncTournaments(ctx, sync.TournamentOptions{})
		if err != nil {
			log.Fatal().Err(err).Msg("Tournament sync failed")
		}
		printSummary("tournaments", summary)
		if summary.Remaining == 0 {
			break
		}
		log.Info().Int("remaining", summary.Remaining).Msg("Resuming tournament walk...")
	}

	// 4. Entry lists and draws for everything still to be played.
	tournaments, err := db.Tournaments.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list tournaments")
	}

	synced := 0
	failed := 0
	for _, tournament := range tournaments {
		if tournament.Status == models.TournamentCompleted {
			continue
		}
		log.Info().Int("tournament_id", tournament.ID).Str("name", tournament.Name).Msg("Syncing tournament detail")

		if summary, err := syncer.SyncEntryList(ctx, tournament.ID); err != nil {
			log.Error().Err(err).Int("tournament_id", tournament.ID).Msg("Entry list sync failed. Skipping.")
			failed++
			continue
		} else {
			printSummary(fmt.Sprintf("entries:%d", tournament.ID), summary)
		}

		if summary, err := syncer.SyncDraw(ctx, tournament.ID); err != nil {
			log.Error().Err(err).Int("tournament_id", tournament.ID).Msg("Draw sync failed. Skipping.")
			failed++
			continue
		} else {
			printSummary(fmt.Sprintf("draw:%d", tournament.ID), summary)
		}
		synced++
	}

	log.Info().Int("successful", synced).Int("failed", failed).Msg("Manual sync complete.")
}

func printSummary(name string, summary *sync.Summary) {
	payload, err := json.Marshal(map[string]interface{}{"sync": name, "summary": summary})
	if err != nil {
		log.Warn().Err(err).Str("sync", name).Msg("Failed to render summary")
		return
	}
	fmt.Fprintln(os.Stdout, string(payload))
}
