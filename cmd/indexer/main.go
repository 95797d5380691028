package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawmate/dogwalk-marketplace/internal/adapters/database"
	"github.com/pawmate/dogwalk-marketplace/internal/adapters/search"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/typesense"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/observability"
	"github.com/pawmate/dogwalk-marketplace/pkg/config"
)

// Rebuilds the Typesense user index from the database. Run once after a
// bulk import, or on an interval to repair drift from missed index writes.
func main() {
	var intervalFlag string
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("dogwalk-indexer", os.Getenv("APP_ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	userRepo := database.NewUserAdapter(pgClient)
	users, err := userRepo.List(ctx, repositories.UserFilter{})
	if err != nil {
		return err
	}

	log.Info().Int("count", len(users)).Msg("indexing users")

	for _, user := range users {
		if user == nil {
			continue
		}
		if err := adapter.Index(ctx, user); err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to index user")
		}
	}

	log.Info().Msg("indexing complete")
	return nil
}
