package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"ittweb/api/cache"
	"ittweb/api/filters"
	standingsservice "ittweb/api/services/standings"
	"ittweb/pkg/config"
	"ittweb/pkg/database"
	"ittweb/pkg/docstore"
	"ittweb/pkg/logger"
	"ittweb/pkg/redis"
)

// WarmStandingsCache precomputes the first leaderboard page of every category
// into redis, so the reads after a cache expiry don't pay the query cost.
func WarmStandingsCache(cfg *config.Config, fileLogger *logger.Logger) error {
	log.Println("Starting standings cache warming.")

	db, err := database.NewConnection(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("couldn't get database connection: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return fmt.Errorf("couldn't get redis connection: %w", err)
	}
	defer redisClient.Close()

	memCache := cache.NewMemCache()
	defer memCache.Close()

	service := standingsservice.NewStandingsService(&standingsservice.StandingsServiceDeps{
		Store:    docstore.NewGormStore(db),
		MemCache: memCache,
		Redis:    redisClient,
		Logger:   fileLogger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	categories, err := service.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("couldn't list the categories: %w", err)
	}

	warmed := 0
	for _, category := range categories {
		filter := filters.NewStandingsFilter(filters.StandingsParams{Category: category})
		if _, err := service.GetStandings(ctx, filter); err != nil {
			log.Printf("Couldn't warm the standings of %s: %v", category, err)
			continue
		}
		warmed++
	}

	log.Printf("Standings cache warming completed, %d/%d categories.", warmed, len(categories))
	return nil
}
