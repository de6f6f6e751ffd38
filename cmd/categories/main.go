// Command categories rebuilds the derived category index from the current
// prompt and tool records. It is meant to run on a schedule, not per request.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"smartaitools/internal/database"
	"smartaitools/internal/repositories"
	"smartaitools/internal/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	db := database.New()
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}()

	categoryService := services.NewCategoryService(
		repositories.NewCategoryRepository(db),
		repositories.NewPromptRepository(db),
		repositories.NewToolRepository(db),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	categories, err := categoryService.Rebuild(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Category rebuild failed")
	}

	log.Info().
		Int("categories", len(categories)).
		Dur("took", time.Since(start)).
		Msg("Category rebuild complete")
}
