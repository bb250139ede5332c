package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/medilink/backend/internal/adapters/database"
	"github.com/medilink/backend/internal/adapters/memory"
	"github.com/medilink/backend/internal/infrastructure/clients/postgres"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/internal/seed"
	"github.com/medilink/backend/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		file        string
		perCity     int
		migrateOnly bool
	)
	flag.StringVar(&file, "file", "", "JSON dataset to load; a generated demo dataset is used when empty")
	flag.IntVar(&perCity, "per-city", 5, "Facilities per city in the demo dataset")
	flag.BoolVar(&migrateOnly, "migrate-only", false, "Create the schema and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(observability.LoggerOptions{Service: "medilink-seed", Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgClient.Close()

	if err := database.Migrate(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}
	log.Info().Msg("Schema ready")
	if migrateOnly {
		return
	}

	ds := seed.Demo(perCity)
	if file != "" {
		if ds, err = memory.ReadDatasetFile(file); err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("Failed to read dataset")
		}
	}

	start := time.Now()
	sum, err := seed.Load(ctx, ds,
		database.NewFacilityAdapter(pgClient, nil),
		database.NewPractitionerAdapter(pgClient, nil),
	)
	if err != nil {
		log.Fatal().Err(err).Int("facilities", sum.Facilities).Int("practitioners", sum.Practitioners).Msg("Seeding failed")
	}

	log.Info().
		Int("facilities", sum.Facilities).
		Int("practitioners", sum.Practitioners).
		Dur("took", time.Since(start)).
		Msg("Seeding complete")
}
