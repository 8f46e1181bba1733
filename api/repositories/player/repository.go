package repositories

import (
	"context"
	"errors"

	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"
)

// highSurrogate is appended on the search term to get a prefix range.
const highSurrogate = "\uf8ff"

// PlayerRepository is the public interface for accessing the player profiles.
type PlayerRepository interface {
	GetProfile(ctx context.Context, playerID string) (*player.Profile, error)
	GetAllProfiles(ctx context.Context) ([]player.Profile, error)
	SearchProfiles(ctx context.Context, term string, limit int) ([]player.Profile, error)
}

// playerRepository repository structure.
type playerRepository struct {
	store docstore.Store
}

// NewPlayerRepository creates a player repository.
func NewPlayerRepository(store docstore.Store) PlayerRepository {
	return &playerRepository{store: store}
}

// GetProfile fetches a single profile by the normalized name.
// Returns nil without error when the player was never seen.
func (pr *playerRepository) GetProfile(ctx context.Context, playerID string) (*player.Profile, error) {
	var profile player.Profile
	err := pr.store.Get(ctx, player.ProfileCollection, playerID, &profile)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetAllProfiles scans the full profile collection.
func (pr *playerRepository) GetAllProfiles(ctx context.Context) ([]player.Profile, error) {
	var profiles []player.Profile
	if err := pr.store.Query(ctx, player.ProfileCollection, docstore.Query{}, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SearchProfiles does a prefix search on the normalized player id.
// The id keeps the lowercase form, so display casing never hides a player
// from the range.
func (pr *playerRepository) SearchProfiles(ctx context.Context, term string, limit int) ([]player.Profile, error) {
	var profiles []player.Profile

	query := docstore.Query{
		Filters: []docstore.Filter{
			{Field: "id", Op: docstore.OpGreaterOrEqual, Value: term},
			{Field: "id", Op: docstore.OpLessOrEqual, Value: term + highSurrogate},
		},
		OrderBy: "id",
		Limit:   limit,
	}

	if err := pr.store.Query(ctx, player.ProfileCollection, query, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}
