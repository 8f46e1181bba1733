package database

import (
	"fmt"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"
	"log"

	"gorm.io/gorm"
)

// RunMigrations creates the documents table and the expression indexes the
// indexed standings path relies on.
func RunMigrations(db *gorm.DB) error {
	// Acquire an advisory lock to prevent concurrent migrations between services.
	var lockAcquired bool
	lockKey := "ittweb_migrations_lock"
	err := db.Raw("SELECT pg_try_advisory_lock(hashtext(?))", lockKey).Scan(&lockAcquired).Error
	if err != nil {
		return err
	}

	if !lockAcquired {
		log.Println("Another process is already running migrations, skipping...")
		return nil
	}

	defer func() {
		db.Exec("SELECT pg_advisory_unlock(hashtext(?))", lockKey)
	}()

	store := docstore.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	if err := store.EnsureIndexes(player.StandingsCollection, []docstore.IndexField{
		{Name: "category"},
		{Name: "games", Numeric: true},
		{Name: "score", Numeric: true},
	}); err != nil {
		return err
	}

	return store.EnsureIndexes(player.ProfileCollection, []docstore.IndexField{
		{Name: "id"},
	})
}
