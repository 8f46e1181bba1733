package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"
)

// How many times a profile read-modify-write gets retried before giving up.
const profileUpdateAttempts = 3

// PlayerRepository is the write side access to the player profiles.
type PlayerRepository interface {
	GetProfile(ctx context.Context, id string) (*player.Profile, error)
	MutateProfile(ctx context.Context, id string, mutate func(profile *player.Profile, exists bool) error) (*player.Profile, error)
}

// playerRepository is the repository instance.
type playerRepository struct {
	store docstore.Store
}

// NewPlayerRepository creates a new repository over the document store.
func NewPlayerRepository(store docstore.Store) PlayerRepository {
	return &playerRepository{store: store}
}

// GetProfile reads a profile by its normalized name.
// A missing profile is returned as nil without an error.
func (pr *playerRepository) GetProfile(ctx context.Context, id string) (*player.Profile, error) {
	var profile player.Profile
	err := pr.store.Get(ctx, player.ProfileCollection, id, &profile)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

// MutateProfile runs a read-modify-write cycle on a single profile document.
// The mutate callback receives a fresh profile when the document doesn't exist
// yet. Returns the profile that was persisted.
func (pr *playerRepository) MutateProfile(ctx context.Context, id string, mutate func(profile *player.Profile, exists bool) error) (*player.Profile, error) {
	var persisted *player.Profile

	err := pr.store.UpdateWithRetry(ctx, player.ProfileCollection, id, profileUpdateAttempts, func(raw []byte) (any, error) {
		profile := &player.Profile{
			ID:         id,
			Categories: make(map[string]player.CategoryStats),
		}

		exists := raw != nil
		if exists {
			if err := json.Unmarshal(raw, profile); err != nil {
				return nil, fmt.Errorf("couldn't unmarshal the profile %s: %w", id, err)
			}
			if profile.Categories == nil {
				profile.Categories = make(map[string]player.CategoryStats)
			}
		}

		if err := mutate(profile, exists); err != nil {
			return nil, err
		}

		persisted = profile
		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	return persisted, nil
}
