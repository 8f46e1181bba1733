package standingsservice

import (
	"encoding/json"
	"testing"

	"ittweb/api/dto"
	"ittweb/api/filters"
	servicetestutil "ittweb/api/services/testutil"
	"ittweb/internal/testutil"
	"ittweb/pkg/models/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock setup struct
type mockSetup struct {
	filter   *filters.StandingsFilter
	key      string
	strategy string

	memCache      *servicetestutil.MockMemCache
	redis         *servicetestutil.MockRedisClient
	standingsRepo *servicetestutil.MockStandingsRepository

	repoData *testutil.OperationResult[[]player.StandingsRecord]
	total    int

	expectedResult *dto.StandingsResponse
}

// Helper to initialize the mocks.
func setupTestService() (*StandingsService, *servicetestutil.MockStandingsRepository, *servicetestutil.MockPlayerRepository, *servicetestutil.MockMemCache, *servicetestutil.MockRedisClient) {
	mockStandingsRepository := new(servicetestutil.MockStandingsRepository)
	mockPlayerRepository := new(servicetestutil.MockPlayerRepository)
	mockMemCache := new(servicetestutil.MockMemCache)
	mockRedisClient := new(servicetestutil.MockRedisClient)

	service := &StandingsService{
		memCache:            mockMemCache,
		redis:               mockRedisClient,
		StandingsRepository: mockStandingsRepository,
		PlayerRepository:    mockPlayerRepository,
	}

	return service, mockStandingsRepository, mockPlayerRepository, mockMemCache, mockRedisClient
}

// Create the standings records as stored on the collection.
func createSuccessRepoRecords() []player.StandingsRecord {
	return []player.StandingsRecord{
		{PlayerID: "grimreaper", PlayerName: "GrimReaper", Category: "default", Score: 1240.5, Wins: 30, Losses: 10, Draws: 2, Games: 42},
		{PlayerID: "stormcaller", PlayerName: "StormCaller", Category: "default", Score: 1180, Wins: 22, Losses: 18, Draws: 0, Games: 40},
		{PlayerID: "nightowl", PlayerName: "NightOwl", Category: "default", Score: 1002.25, Wins: 12, Losses: 14, Draws: 4, Games: 30},
	}
}

// Create the expected ranked response for the records above.
func createExpectedSuccessResponse() *dto.StandingsResponse {
	return &dto.StandingsResponse{
		Standings: []dto.StandingsEntry{
			{Rank: 1, Name: "GrimReaper", Score: 1240.5, Wins: 30, Losses: 10, Draws: 2, Games: 42, WinRate: 75},
			{Rank: 2, Name: "StormCaller", Score: 1180, Wins: 22, Losses: 18, Draws: 0, Games: 40, WinRate: 55},
			{Rank: 3, Name: "NightOwl", Score: 1002.25, Wins: 12, Losses: 14, Draws: 4, Games: 30, WinRate: 46.15},
		},
		Total:   3,
		Page:    1,
		HasMore: false,
	}
}

// Setup the mocks for the standings test based on cache strategy.
func setupMocks(setup mockSetup) {
	switch setup.strategy {
	case "memcache":
		setupMemCacheHit(setup)
	case "redis":
		setupRedisCacheHit(setup)
	case "nocache":
		setupNoCacheHit(setup)
	}
}

// Data already available on memory.
func setupMemCacheHit(setup mockSetup) {
	setup.memCache.On("Get", setup.key).Return(setup.expectedResult)
}

// Not available on memory, but available on Redis.
func setupRedisCacheHit(setup mockSetup) {
	setup.memCache.On("Get", setup.key).Return(nil)

	data, _ := json.Marshal(setup.expectedResult)
	setup.redis.On("Get", mock.AnythingOfType(servicetestutil.DefaultTimerCtx), setup.key).Return(string(data), nil)
	setup.memCache.On("Set", setup.key, setup.expectedResult, StandingsMemoryCacheDuration).Return(nil)
}

// Data available only on the collection.
func setupNoCacheHit(setup mockSetup) {
	setup.memCache.On("Get", setup.key).Return(nil)
	setup.redis.On("Get", mock.AnythingOfType(servicetestutil.DefaultTimerCtx), setup.key).Return("", nil)

	limit := fetchLimit(setup.filter.Page, setup.filter.PageSize)
	setup.standingsRepo.On("GetTopRecords", mock.Anything, setup.filter.Category, setup.filter.MinGames, limit).
		Return(setup.repoData.Data, setup.repoData.Err)

	if setup.repoData.Err != nil {
		return
	}

	setup.standingsRepo.On("CountEligible", mock.Anything, setup.filter.Category, setup.filter.MinGames).
		Return(setup.total, nil)

	setup.memCache.On("Set", setup.key, setup.expectedResult, StandingsMemoryCacheDuration).Return(nil)

	data, _ := json.Marshal(setup.expectedResult)
	setup.redis.On("Set", mock.Anything, setup.key, string(data), StandingsRedisCacheDuration).Return(nil)
}

// Assert the expected returned results.
func assertStandingsResult(
	t *testing.T,
	result *dto.StandingsResponse,
	err error,
	expectedData *dto.StandingsResponse,
	expectedError error,
) {
	t.Helper()

	if expectedError != nil {
		assert.Error(t, err)
		assert.Contains(t, err.Error(), expectedError.Error())
		assert.Nil(t, result)
		return
	}

	assert.NoError(t, err)
	assert.Equal(t, expectedData, result)
}
