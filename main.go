package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-hub-backend/api"
	"github.com/rpupo63/project-hub-backend/auth"
	"github.com/rpupo63/project-hub-backend/config"
	"github.com/rpupo63/project-hub-backend/database"
	"github.com/rpupo63/project-hub-backend/models"
	"github.com/rpupo63/project-hub-backend/services"
	"github.com/rpupo63/project-hub-backend/storage"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := config.LoadSSMParameters(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("Error loading SSM parameters")
	}

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	if config.GetBool(c, "ROLLBACK_LAST_MIGRATION", false) {
		log.Warn().Msg("Rolling back the last migration...")
		if err := database.RollbackLast(db); err != nil {
			log.Fatal().Err(err).Msg("Error rolling back migration")
		}
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error running migrations")
	}
	currentDB := database.New(db)

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATE_MODELS_PATH", "./generated")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.PrintColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	if config.GetBool(c, "RESET_PROJECT_DATA", false) {
		log.Warn().Msg("Clearing all projects, media and tags...")
		if err := currentDB.ClearProjectData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error clearing project data")
		}
		return
	}

	store, err := storage.New(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing object storage")
	}

	tokens, err := auth.NewTokenManagerFromConfig(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing token manager")
	}

	projects := services.NewProjectService(currentDB, store, services.ProjectServiceOptions{
		KeyPrefix:         config.GetString(c, "STORAGE_KEY_PREFIX", services.DefaultKeyPrefix),
		UploadConcurrency: config.GetInt(c, "UPLOAD_CONCURRENCY", services.DefaultUploadConcurrency),
	})

	// room for both the server and the signal listener, so neither blocks after shutdown
	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, api.Dependencies{
		Database: currentDB,
		Projects: projects,
		Users:    services.NewUserService(currentDB, tokens),
		Tokens:   tokens,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// setupLogging applies LOG_LEVEL and switches to a console writer outside production.
func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !config.IsProduction(c) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
