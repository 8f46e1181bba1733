package playerservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ittweb/api/dto"
	servicetestutil "ittweb/api/services/testutil"
	"ittweb/internal/testutil"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Helper to initialize the mocks.
func setupTestService() (*PlayerService, *servicetestutil.MockPlayerRepository) {
	mockPlayerRepository := new(servicetestutil.MockPlayerRepository)

	service := &PlayerService{
		PlayerRepository: mockPlayerRepository,
	}

	return service, mockPlayerRepository
}

func createProfile() *player.Profile {
	return &player.Profile{
		ID:   "grimreaper",
		Name: "GrimReaper",
		Categories: map[string]player.CategoryStats{
			"default": {Wins: 30, Losses: 10, Draws: 2, Games: 42, Score: 1240.5},
			"ranked":  {Wins: 5, Losses: 5, Games: 10, Score: 1001},
		},
	}
}

// Run tests on the possible outcomes of the GetProfile.
func TestGetProfile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service, mockRepo := setupTestService()

		mockRepo.On("GetProfile", mock.Anything, "grimreaper").Return(createProfile(), nil)

		result, err := service.GetProfile(context.Background(), "  GrimReaper ")

		assert.NoError(t, err)
		assert.Equal(t, "GrimReaper", result.Name)
		// The total is derived when the stored counter was never set.
		assert.Equal(t, 52, result.TotalGames)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})

	t.Run("missing", func(t *testing.T) {
		service, mockRepo := setupTestService()

		mockRepo.On("GetProfile", mock.Anything, "unknown").Return(nil, nil)

		result, err := service.GetProfile(context.Background(), "Unknown")

		assert.NoError(t, err)
		assert.Nil(t, result)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})

	t.Run("blankName", func(t *testing.T) {
		service, mockRepo := setupTestService()

		result, err := service.GetProfile(context.Background(), "   ")

		assert.NoError(t, err)
		assert.Nil(t, result)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})

	t.Run("repositoryError", func(t *testing.T) {
		service, mockRepo := setupTestService()

		mockRepo.On("GetProfile", mock.Anything, "grimreaper").Return(nil, errors.New(testutil.DatabaseError))

		result, err := service.GetProfile(context.Background(), "GrimReaper")

		assert.Error(t, err)
		assert.Nil(t, result)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})
}

// Run tests on the possible outcomes of the SearchPlayers.
func TestSearchPlayers(t *testing.T) {
	t.Run("shortTermReturnsEmpty", func(t *testing.T) {
		service, mockRepo := setupTestService()

		results, err := service.SearchPlayers(context.Background(), "g")

		assert.NoError(t, err)
		assert.Empty(t, results)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})

	t.Run("prefixSearch", func(t *testing.T) {
		service, mockRepo := setupTestService()

		mockRepo.On("SearchProfiles", mock.Anything, "grim", searchLimit).Return([]player.Profile{*createProfile()}, nil)

		results, err := service.SearchPlayers(context.Background(), "Grim")

		assert.NoError(t, err)
		assert.Equal(t, []dto.PlayerSearchResult{
			{ID: "grimreaper", Name: "GrimReaper", TotalGames: 52},
		}, results)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})

	t.Run("indexFallbackScans", func(t *testing.T) {
		service, mockRepo := setupTestService()

		indexErr := fmt.Errorf("query playerStats: %w", docstore.ErrIndexUnavailable)
		mockRepo.On("SearchProfiles", mock.Anything, "grim", searchLimit).Return([]player.Profile(nil), indexErr)
		mockRepo.On("GetAllProfiles", mock.Anything).Return([]player.Profile{
			*createProfile(),
			{ID: "stormcaller", Name: "StormCaller"},
		}, nil)

		results, err := service.SearchPlayers(context.Background(), "Grim")

		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, "GrimReaper", results[0].Name)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})

	// Both paths search the normalized id, so mixed display casing never
	// changes which players a term finds.
	t.Run("indexedAndScanAgreeOnCasedNames", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.Seed(player.ProfileCollection, "grimreaper", &player.Profile{
			ID: "grimreaper", Name: "GrimReaper", TotalGames: 42,
		})
		store.Seed(player.ProfileCollection, "stormcaller", &player.Profile{
			ID: "stormcaller", Name: "StormCaller", TotalGames: 20,
		})

		service := NewPlayerService(&PlayerServiceDeps{Store: store})

		indexed, err := service.SearchPlayers(context.Background(), "Grim")
		assert.NoError(t, err)

		store.MissingIndexes = true
		scanned, err := service.SearchPlayers(context.Background(), "Grim")
		assert.NoError(t, err)

		expected := []dto.PlayerSearchResult{
			{ID: "grimreaper", Name: "GrimReaper", TotalGames: 42},
		}
		assert.Equal(t, expected, indexed)
		assert.Equal(t, expected, scanned)
	})

	t.Run("otherErrorsPropagate", func(t *testing.T) {
		service, mockRepo := setupTestService()

		mockRepo.On("SearchProfiles", mock.Anything, "grim", searchLimit).
			Return([]player.Profile(nil), errors.New(testutil.DatabaseError))

		results, err := service.SearchPlayers(context.Background(), "Grim")

		assert.Error(t, err)
		assert.Nil(t, results)

		servicetestutil.VerifyAllMocks(t, mockRepo)
	})
}
