package testutil

import (
	"context"
	"testing"
	"time"

	"ittweb/pkg/models/player"

	"github.com/stretchr/testify/mock"
)

// DefaultTimerCtx is the context type created by context.WithTimeout.
const DefaultTimerCtx = "*context.timerCtx"

// Assert the expectations of all mocks.
func VerifyAllMocks(t *testing.T, mocks ...any) {
	t.Helper()

	for _, m := range mocks {
		if mockObj, ok := m.(interface{ AssertExpectations(*testing.T) bool }); ok {
			mockObj.AssertExpectations(t)
		}
	}
}

// ============================================================================
// Mock Implementations used on the Standings service tests.
// ============================================================================

// Standings Repo mock implementation.
type MockStandingsRepository struct {
	mock.Mock
}

func (m *MockStandingsRepository) GetTopRecords(ctx context.Context, category string, minGames int, limit int) ([]player.StandingsRecord, error) {
	args := m.Called(ctx, category, minGames, limit)
	return args.Get(0).([]player.StandingsRecord), args.Error(1)
}

func (m *MockStandingsRepository) CountEligible(ctx context.Context, category string, minGames int) (int, error) {
	args := m.Called(ctx, category, minGames)
	return args.Get(0).(int), args.Error(1)
}

func (m *MockStandingsRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

// Player Repo mock implementation.
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetProfile(ctx context.Context, playerID string) (*player.Profile, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*player.Profile), args.Error(1)
}

func (m *MockPlayerRepository) GetAllProfiles(ctx context.Context) ([]player.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]player.Profile), args.Error(1)
}

func (m *MockPlayerRepository) SearchProfiles(ctx context.Context, term string, limit int) ([]player.Profile, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]player.Profile), args.Error(1)
}

// MemCache mock implementation.
type MockMemCache struct {
	mock.Mock
}

func (m *MockMemCache) Get(key string) any {
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockMemCache) Set(key string, value any, ttl time.Duration) {
	m.Called(key, value, ttl)
}

func (m *MockMemCache) GetOrLoad(key string, ttl time.Duration, loader func() (any, error)) (any, error) {
	args := m.Called(key, ttl, loader)
	return args.Get(0), args.Error(1)
}

func (m *MockMemCache) Close() {
	m.Called()
}

// Redis client mock implementation.
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(string), args.Error(1)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
