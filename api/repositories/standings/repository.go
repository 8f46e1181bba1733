package repositories

import (
	"context"

	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"
)

// Public Interface.
type StandingsRepository interface {
	GetTopRecords(ctx context.Context, category string, minGames int, limit int) ([]player.StandingsRecord, error)
	CountEligible(ctx context.Context, category string, minGames int) (int, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Standings repository structure.
type standingsRepository struct {
	store docstore.Store
}

// Create a standings repository.
func NewStandingsRepository(store docstore.Store) StandingsRepository {
	return &standingsRepository{store: store}
}

// GetTopRecords fetches the highest scored records of a category.
// Depends on the category, games and score indexes being available.
func (sr *standingsRepository) GetTopRecords(ctx context.Context, category string, minGames int, limit int) ([]player.StandingsRecord, error) {
	var records []player.StandingsRecord

	query := docstore.Query{
		Filters: []docstore.Filter{
			{Field: "category", Op: docstore.OpEqual, Value: category},
			{Field: "games", Op: docstore.OpGreaterOrEqual, Value: minGames},
		},
		OrderBy:    "score",
		Descending: true,
		Limit:      limit,
	}

	if err := sr.store.Query(ctx, player.StandingsCollection, query, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// CountEligible counts every record of the category above the games threshold.
func (sr *standingsRepository) CountEligible(ctx context.Context, category string, minGames int) (int, error) {
	queryFilters := []docstore.Filter{
		{Field: "category", Op: docstore.OpEqual, Value: category},
		{Field: "games", Op: docstore.OpGreaterOrEqual, Value: minGames},
	}

	count, err := sr.store.Count(ctx, player.StandingsCollection, queryFilters)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// ListCategories scans the standings and returns each distinct category.
func (sr *standingsRepository) ListCategories(ctx context.Context) ([]string, error) {
	var records []player.StandingsRecord
	if err := sr.store.Query(ctx, player.StandingsCollection, docstore.Query{}, &records); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := []string{}
	for _, record := range records {
		if record.Category == "" || seen[record.Category] {
			continue
		}
		seen[record.Category] = true
		categories = append(categories, record.Category)
	}

	return categories, nil
}
