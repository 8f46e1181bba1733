package standingsservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ittweb/api/cache"
	"ittweb/api/dto"
	"ittweb/api/filters"
	servicetestutil "ittweb/api/services/testutil"
	"ittweb/internal/testutil"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Simple test for asserting that everything is fine with the standings service creation.
func TestNewStandingsService(t *testing.T) {
	_, _, _, mockMemCache, mockRedisClient := setupTestService()
	deps := &StandingsServiceDeps{
		MemCache: mockMemCache,
		Redis:    mockRedisClient,
	}

	service := NewStandingsService(deps)
	assert.NotNil(t, service)
	assert.NotNil(t, service.StandingsRepository)
	assert.NotNil(t, service.PlayerRepository)
}

// Run tests on the possible outcomes of the GetStandings.
func TestGetStandings(t *testing.T) {
	defaultFilter := filters.NewStandingsFilter(filters.StandingsParams{})

	tests := []struct {
		name                 string
		returnData           *dto.StandingsResponse
		testStrategy         string
		filter               *filters.StandingsFilter
		repositoryReturnData *testutil.OperationResult[[]player.StandingsRecord]
		expectedError        error
	}{
		{
			name:         "fromMemCache",
			returnData:   createExpectedSuccessResponse(),
			testStrategy: "memcache",
			filter:       defaultFilter,
		},
		{
			name:         "fromRedis",
			returnData:   createExpectedSuccessResponse(),
			testStrategy: "redis",
			filter:       defaultFilter,
		},
		{
			name:                 "fromRepo",
			returnData:           createExpectedSuccessResponse(),
			testStrategy:         "nocache",
			filter:               defaultFilter,
			repositoryReturnData: testutil.NewSuccessResult(createSuccessRepoRecords()),
		},
		{
			name: "fromRepoEmpty",
			returnData: &dto.StandingsResponse{
				Standings: []dto.StandingsEntry{},
				Total:     0,
				Page:      1,
				HasMore:   false,
			},
			testStrategy:         "nocache",
			filter:               defaultFilter,
			repositoryReturnData: testutil.NewSuccessResult([]player.StandingsRecord{}),
		},
		{
			name:                 "fromRepoErr",
			returnData:           nil,
			testStrategy:         "nocache",
			filter:               defaultFilter,
			repositoryReturnData: testutil.GetMockRepoError[[]player.StandingsRecord](),
			expectedError:        errors.New(testutil.DatabaseError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockStandingsRepository, _, mockMemCache, mockRedis := setupTestService()

			key := service.getStandingsKey(tt.filter)

			total := 0
			if tt.returnData != nil {
				total = tt.returnData.Total
			}

			setupMocks(mockSetup{
				filter:         tt.filter,
				key:            key,
				strategy:       tt.testStrategy,
				memCache:       mockMemCache,
				redis:          mockRedis,
				standingsRepo:  mockStandingsRepository,
				repoData:       tt.repositoryReturnData,
				total:          total,
				expectedResult: tt.returnData,
			})

			result, err := service.GetStandings(context.Background(), tt.filter)

			assertStandingsResult(t, result, err, tt.returnData, tt.expectedError)

			servicetestutil.VerifyAllMocks(t, mockMemCache, mockRedis, mockStandingsRepository)
		})
	}
}

// The ordering must break score ties by win rate and then by wins.
func TestRankEntriesTieBreaking(t *testing.T) {
	entries := []dto.StandingsEntry{
		{Name: "LowWinRate", Score: 1100, Wins: 10, Losses: 10, WinRate: 50},
		{Name: "FewWins", Score: 1100, Wins: 6, Losses: 2, WinRate: 75},
		{Name: "ManyWins", Score: 1100, Wins: 30, Losses: 10, WinRate: 75},
		{Name: "Top", Score: 1300, Wins: 5, Losses: 20, WinRate: 20},
	}

	rankEntries(entries)

	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name)
	}

	assert.Equal(t, []string{"Top", "ManyWins", "FewWins", "LowWinRate"}, names)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
	}
}

// Ranks must stay global while the page only slices the set.
func TestPaginateKeepsGlobalRanks(t *testing.T) {
	entries := make([]dto.StandingsEntry, 0, 25)
	for i := range 25 {
		entries = append(entries, dto.StandingsEntry{
			Name:  fmt.Sprintf("player%d", i),
			Score: float64(2000 - i),
		})
	}
	rankEntries(entries)

	response := paginate(entries, 25, 2, 10)

	assert.Len(t, response.Standings, 10)
	assert.Equal(t, 11, response.Standings[0].Rank)
	assert.Equal(t, 20, response.Standings[9].Rank)
	assert.True(t, response.HasMore)

	lastPage := paginate(entries, 25, 3, 10)
	assert.Len(t, lastPage.Standings, 5)
	assert.False(t, lastPage.HasMore)

	pastTheEnd := paginate(entries, 25, 10, 10)
	assert.Empty(t, pastTheEnd.Standings)
	assert.False(t, pastTheEnd.HasMore)
}

// When the indexes are missing the service must rebuild the board from
// the profiles and produce the same ordering.
func TestGetStandingsIndexFallback(t *testing.T) {
	service, mockStandingsRepository, mockPlayerRepository, mockMemCache, mockRedis := setupTestService()

	filter := filters.NewStandingsFilter(filters.StandingsParams{})
	key := service.getStandingsKey(filter)

	mockMemCache.On("Get", key).Return(nil)
	mockRedis.On("Get", mock.AnythingOfType(servicetestutil.DefaultTimerCtx), key).Return("", nil)

	indexErr := fmt.Errorf("query playerCategoryStats: %w", docstore.ErrIndexUnavailable)
	mockStandingsRepository.On("GetTopRecords", mock.Anything, filter.Category, filter.MinGames, fetchLimit(filter.Page, filter.PageSize)).
		Return([]player.StandingsRecord(nil), indexErr)

	mockPlayerRepository.On("GetAllProfiles", mock.Anything).Return([]player.Profile{
		{
			ID:   "nightowl",
			Name: "NightOwl",
			Categories: map[string]player.CategoryStats{
				"default": {Wins: 12, Losses: 14, Draws: 4, Games: 30, Score: 1002.25},
			},
		},
		{
			ID:   "grimreaper",
			Name: "GrimReaper",
			Categories: map[string]player.CategoryStats{
				"default": {Wins: 30, Losses: 10, Draws: 2, Games: 42, Score: 1240.5},
			},
		},
		{
			ID:   "rookie",
			Name: "Rookie",
			Categories: map[string]player.CategoryStats{
				"default": {Wins: 3, Losses: 1, Games: 4, Score: 1050},
			},
		},
		{
			ID:   "stormcaller",
			Name: "StormCaller",
			Categories: map[string]player.CategoryStats{
				"default": {Wins: 22, Losses: 18, Games: 40, Score: 1180},
			},
		},
	}, nil)

	mockMemCache.On("Set", key, mock.Anything, StandingsMemoryCacheDuration).Return(nil)
	mockRedis.On("Set", mock.Anything, key, mock.Anything, StandingsRedisCacheDuration).Return(nil)

	result, err := service.GetStandings(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, createExpectedSuccessResponse(), result)

	servicetestutil.VerifyAllMocks(t, mockMemCache, mockRedis, mockStandingsRepository, mockPlayerRepository)
}

// A failure on the counting must not fail the request.
func TestGetStandingsCountFailure(t *testing.T) {
	service, mockStandingsRepository, _, mockMemCache, mockRedis := setupTestService()

	filter := filters.NewStandingsFilter(filters.StandingsParams{})
	key := service.getStandingsKey(filter)

	mockMemCache.On("Get", key).Return(nil)
	mockRedis.On("Get", mock.AnythingOfType(servicetestutil.DefaultTimerCtx), key).Return("", nil)

	mockStandingsRepository.On("GetTopRecords", mock.Anything, filter.Category, filter.MinGames, fetchLimit(filter.Page, filter.PageSize)).
		Return(createSuccessRepoRecords(), nil)
	mockStandingsRepository.On("CountEligible", mock.Anything, filter.Category, filter.MinGames).
		Return(0, errors.New(testutil.DatabaseError))

	mockMemCache.On("Set", key, mock.Anything, StandingsMemoryCacheDuration).Return(nil)
	mockRedis.On("Set", mock.Anything, key, mock.Anything, StandingsRedisCacheDuration).Return(nil)

	result, err := service.GetStandings(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Standings, 3)

	servicetestutil.VerifyAllMocks(t, mockMemCache, mockRedis, mockStandingsRepository)
}

// Run tests on the possible outcomes of the GetPlayerRank.
func TestGetPlayerRank(t *testing.T) {
	tests := []struct {
		name         string
		playerName   string
		expectedRank *dto.PlayerRank
	}{
		{
			name:       "found",
			playerName: "StormCaller",
			expectedRank: &dto.PlayerRank{
				Name:     "StormCaller",
				Category: "default",
				Rank:     2,
				Total:    3,
				Score:    1180,
			},
		},
		{
			name:         "notRanked",
			playerName:   "Unknown",
			expectedRank: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockStandingsRepository, _, _, _ := setupTestService()

			mockStandingsRepository.On("GetTopRecords", mock.Anything, "default", filters.DefaultMinGames, 0).
				Return(createSuccessRepoRecords(), nil)
			mockStandingsRepository.On("CountEligible", mock.Anything, "default", filters.DefaultMinGames).
				Return(3, nil)

			rank, err := service.GetPlayerRank(context.Background(), tt.playerName, "")

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedRank, rank)

			servicetestutil.VerifyAllMocks(t, mockStandingsRepository)
		})
	}
}

// The category list is cached, the repository must be hit only once.
func TestListCategoriesCaches(t *testing.T) {
	mockStandingsRepository := new(servicetestutil.MockStandingsRepository)
	memCache := cache.NewMemCache()
	defer memCache.Close()

	service := &StandingsService{
		memCache:            memCache,
		StandingsRepository: mockStandingsRepository,
	}

	mockStandingsRepository.On("ListCategories", mock.Anything).Return([]string{"default", "ranked"}, nil).Once()

	first, err := service.ListCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"default", "ranked"}, first)

	second, err := service.ListCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	servicetestutil.VerifyAllMocks(t, mockStandingsRepository)
}

// Simple test to verify behavior when invalid json is returned from redis.
func TestInvalidRedisKey(t *testing.T) {
	key := "testKey"
	service, _, _, _, mockRedis := setupTestService()

	mockRedis.On("Get", mock.AnythingOfType(servicetestutil.DefaultTimerCtx), key).Return("invalid json", nil)

	result := service.getFromRedis(context.Background(), key)
	assert.Nil(t, result)

	servicetestutil.VerifyAllMocks(t, mockRedis)
}
