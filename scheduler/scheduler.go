package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ittweb/pkg/config"
	"ittweb/pkg/database"
	"ittweb/pkg/logger"
	"ittweb/scheduler/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load the environment variables if not running on Docker.
	if os.Getenv("ENVIRONMENT") != "docker" {
		if err := godotenv.Load(); err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Couldn't initialize the configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database.URL)
	if err != nil {
		log.Fatal(err)
	}

	// Runs the migrations.
	if err := database.RunMigrations(db); err != nil {
		log.Fatal(err)
	}

	fileLogger, err := logger.CreateLogger(cfg.Bucket)
	if err != nil {
		log.Fatalf("Couldn't create the logger: %v", err)
	}

	log.Println("Starting scheduler.")

	// Create a new scheduler with options.
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Register the standings cache warming - every 30 minutes.
	_, err = s.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(
			jobs.WarmStandingsCache,
			cfg,
			fileLogger,
		),
		gocron.WithName("standings-cache-warming"),
		gocron.WithTags("standings"),
		gocron.JobOption(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Fatalf("Failed to create standings warming job: %v", err)
	}

	// Register the log shipping job - once per hour.
	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(
			jobs.ShipLogs,
			fileLogger,
		),
		gocron.WithName("log-shipping"),
		gocron.WithTags("logs"),
	)
	if err != nil {
		log.Fatalf("Failed to create log shipping job: %v", err)
	}

	// Start the scheduler.
	s.Start()

	defer func() {
		// Shutdown the scheduler when main() exits.
		err := s.Shutdown()
		if err != nil {
			log.Printf("Error shutting down scheduler: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for termination signal.
	<-sigChan
	log.Println("Shutting down scheduler...")
}
