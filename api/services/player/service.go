package playerservice

import (
	"context"

	"ittweb/api/dto"
	playerrepo "ittweb/api/repositories/player"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"
)

const (
	// searchMinLength is the minimum term length for a search.
	searchMinLength = 2

	// searchLimit caps the search results.
	searchLimit = 20
)

// PlayerService serves the player profile lookups.
type PlayerService struct {
	PlayerRepository playerrepo.PlayerRepository
}

// PlayerServiceDeps is the dependency list for the player service.
type PlayerServiceDeps struct {
	Store docstore.Store
}

// NewPlayerService creates a service for handling player lookups.
func NewPlayerService(deps *PlayerServiceDeps) *PlayerService {
	return &PlayerService{
		PlayerRepository: playerrepo.NewPlayerRepository(deps.Store),
	}
}

// GetProfile fetches a profile by the player name.
// Returns nil without error when the player was never seen.
func (ps *PlayerService) GetProfile(ctx context.Context, name string) (*dto.PlayerProfile, error) {
	playerID := player.NormalizeName(name)
	if playerID == "" {
		return nil, nil
	}

	profile, err := ps.PlayerRepository.GetProfile(ctx, playerID)
	if err != nil || profile == nil {
		return nil, err
	}

	totalGames := profile.TotalGames
	if totalGames == 0 {
		totalGames = profile.SumCategoryGames()
	}

	return &dto.PlayerProfile{
		ID:          profile.ID,
		Name:        profile.Name,
		Categories:  profile.Categories,
		TotalGames:  totalGames,
		FirstPlayed: profile.FirstPlayed,
		LastPlayed:  profile.LastPlayed,
	}, nil
}

// SearchPlayers does a prefix search on the player names.
// Terms shorter than two characters return an empty result.
func (ps *PlayerService) SearchPlayers(ctx context.Context, term string) ([]dto.PlayerSearchResult, error) {
	normalized := player.NormalizeName(term)
	if len(normalized) < searchMinLength {
		return []dto.PlayerSearchResult{}, nil
	}

	profiles, err := ps.PlayerRepository.SearchProfiles(ctx, normalized, searchLimit)
	if err != nil {
		if !docstore.IsIndexUnavailable(err) {
			return nil, err
		}
		profiles, err = ps.searchByScan(ctx, normalized)
		if err != nil {
			return nil, err
		}
	}

	results := make([]dto.PlayerSearchResult, 0, len(profiles))
	for _, profile := range profiles {
		totalGames := profile.TotalGames
		if totalGames == 0 {
			totalGames = profile.SumCategoryGames()
		}
		results = append(results, dto.PlayerSearchResult{
			ID:         profile.ID,
			Name:       profile.Name,
			TotalGames: totalGames,
		})
	}

	return results, nil
}

// searchByScan filters the full profile collection when the id index
// is missing.
func (ps *PlayerService) searchByScan(ctx context.Context, normalized string) ([]player.Profile, error) {
	profiles, err := ps.PlayerRepository.GetAllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	matched := []player.Profile{}
	for _, profile := range profiles {
		if len(profile.ID) < len(normalized) || profile.ID[:len(normalized)] != normalized {
			continue
		}
		matched = append(matched, profile)
		if len(matched) == searchLimit {
			break
		}
	}

	return matched, nil
}
