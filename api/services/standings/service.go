package standingsservice

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"ittweb/api/cache"
	"ittweb/api/dto"
	"ittweb/api/filters"
	playerrepo "ittweb/api/repositories/player"
	standingsrepo "ittweb/api/repositories/standings"
	"ittweb/pkg/docstore"
	"ittweb/pkg/logger"
	"ittweb/pkg/models/player"
)

const (
	StandingsMemoryCacheDuration = 5 * time.Minute
	StandingsRedisCacheDuration  = 30 * time.Minute

	// minFetchLimit is the floor of rows pulled on the indexed path.
	minFetchLimit = 100
)

type StandingsRedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// StandingsService serves the ranked leaderboards.
type StandingsService struct {
	memCache            cache.MemCache
	redis               StandingsRedisClient
	log                 *logger.Logger
	StandingsRepository standingsrepo.StandingsRepository
	PlayerRepository    playerrepo.PlayerRepository
}

// StandingsServiceDeps is the dependency list for the standings service.
type StandingsServiceDeps struct {
	Store    docstore.Store
	MemCache cache.MemCache
	Redis    StandingsRedisClient
	Logger   *logger.Logger
}

// NewStandingsService creates a standings service.
func NewStandingsService(deps *StandingsServiceDeps) *StandingsService {
	return &StandingsService{
		memCache:            deps.MemCache,
		redis:               deps.Redis,
		log:                 deps.Logger,
		StandingsRepository: standingsrepo.NewStandingsRepository(deps.Store),
		PlayerRepository:    playerrepo.NewPlayerRepository(deps.Store),
	}
}

// GetStandings gets a leaderboard page based on the filters.
func (ss *StandingsService) GetStandings(ctx context.Context, filter *filters.StandingsFilter) (*dto.StandingsResponse, error) {
	key := ss.getStandingsKey(filter)

	if mem := ss.getFromMemCache(key); mem != nil {
		return mem, nil
	}

	if redisData := ss.getFromRedis(ctx, key); redisData != nil {
		ss.memCache.Set(key, redisData, StandingsMemoryCacheDuration)
		return redisData, nil
	}

	entries, total, err := ss.getRankedEntries(ctx, filter.Category, filter.MinGames, fetchLimit(filter.Page, filter.PageSize))
	if err != nil {
		return nil, err
	}

	response := paginate(entries, total, filter.Page, filter.PageSize)

	ss.populateCaches(ctx, key, response)

	return response, nil
}

// GetPlayerRank finds the position of a single player on a category leaderboard.
// Returns nil when the player is not eligible for the leaderboard.
func (ss *StandingsService) GetPlayerRank(ctx context.Context, name string, category string) (*dto.PlayerRank, error) {
	if category == "" {
		category = player.DefaultCategory
	}
	playerID := player.NormalizeName(name)

	entries, total, err := ss.getRankedEntries(ctx, category, filters.DefaultMinGames, 0)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if player.NormalizeName(entry.Name) != playerID {
			continue
		}
		return &dto.PlayerRank{
			Name:     entry.Name,
			Category: category,
			Rank:     entry.Rank,
			Total:    total,
			Score:    entry.Score,
		}, nil
	}

	return nil, nil
}

// ListCategories returns each category that has at least one record.
// The list changes rarely, so it is served from the memory cache.
func (ss *StandingsService) ListCategories(ctx context.Context) ([]string, error) {
	value, err := ss.memCache.GetOrLoad("standings:categories", StandingsMemoryCacheDuration, func() (any, error) {
		return ss.StandingsRepository.ListCategories(ctx)
	})
	if err != nil {
		return nil, err
	}

	return value.([]string), nil
}

// fetchLimit is how many rows get pulled on the indexed path.
// Fetching more than a page keeps the tie breaking stable near the cut
// and avoids another round trip when the next pages get requested.
// A score tie straddling the cut can still resolve differently between
// requests with different page sizes, since each fetch may pick other
// members of the tie group.
func fetchLimit(page int, pageSize int) int {
	limit := 3 * pageSize
	if limit < minFetchLimit {
		limit = minFetchLimit
	}
	if needed := page * pageSize; limit < needed {
		limit = needed
	}
	return limit
}

// getRankedEntries fetches and ranks the top of a category. A limit of
// zero ranks the whole eligible set. Uses the indexed query and only
// falls back to a full scan when the indexes are missing. Any other
// failure is returned to the caller.
func (ss *StandingsService) getRankedEntries(ctx context.Context, category string, minGames int, limit int) ([]dto.StandingsEntry, int, error) {
	records, err := ss.StandingsRepository.GetTopRecords(ctx, category, minGames, limit)
	if err != nil {
		if !docstore.IsIndexUnavailable(err) {
			return nil, 0, err
		}
		if ss.log != nil {
			ss.log.Warnf("Standings indexes unavailable, falling back to full scan: %v", err)
		}
		return ss.getRankedEntriesFromProfiles(ctx, category, minGames)
	}

	entries := make([]dto.StandingsEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, dto.StandingsEntry{
			Name:    record.PlayerName,
			Score:   record.Score,
			Wins:    record.Wins,
			Losses:  record.Losses,
			Draws:   record.Draws,
			Games:   record.Games,
			WinRate: player.WinRatePercent(record.Wins, record.Losses),
		})
	}

	rankEntries(entries)

	// The count is best effort. If it fails we approximate with what we got.
	total, err := ss.StandingsRepository.CountEligible(ctx, category, minGames)
	if err != nil {
		total = len(entries)
	}

	return entries, total, nil
}

// getRankedEntriesFromProfiles rebuilds the leaderboard from the profiles.
// Produces the same ordering as the indexed path.
func (ss *StandingsService) getRankedEntriesFromProfiles(ctx context.Context, category string, minGames int) ([]dto.StandingsEntry, int, error) {
	profiles, err := ss.PlayerRepository.GetAllProfiles(ctx)
	if err != nil {
		return nil, 0, err
	}

	entries := []dto.StandingsEntry{}
	for _, profile := range profiles {
		stats, ok := profile.Categories[category]
		if !ok || stats.Games < minGames {
			continue
		}
		entries = append(entries, dto.StandingsEntry{
			Name:    profile.Name,
			Score:   stats.Score,
			Wins:    stats.Wins,
			Losses:  stats.Losses,
			Draws:   stats.Draws,
			Games:   stats.Games,
			WinRate: player.WinRatePercent(stats.Wins, stats.Losses),
		})
	}

	rankEntries(entries)

	return entries, len(entries), nil
}

// rankEntries sorts by score, win rate and wins and assigns the ranks.
func rankEntries(entries []dto.StandingsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].WinRate != entries[j].WinRate {
			return entries[i].WinRate > entries[j].WinRate
		}
		return entries[i].Wins > entries[j].Wins
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// paginate slices a ranked set into the requested page.
func paginate(entries []dto.StandingsEntry, total int, page int, pageSize int) *dto.StandingsResponse {
	start := (page - 1) * pageSize
	if start > len(entries) {
		start = len(entries)
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}

	return &dto.StandingsResponse{
		Standings: entries[start:end],
		Total:     total,
		Page:      page,
		HasMore:   page*pageSize < total,
	}
}

// getFromMemCache retrieves the response from the memory and returns it.
func (ss *StandingsService) getFromMemCache(key string) *dto.StandingsResponse {
	if memCachedData := ss.memCache.Get(key); memCachedData != nil {
		return memCachedData.(*dto.StandingsResponse)
	}
	return nil
}

// getFromRedis retrieves the response from the redis.
func (ss *StandingsService) getFromRedis(ctx context.Context, key string) *dto.StandingsResponse {
	ctx, cancel := context.WithTimeout(ctx, time.Millisecond*200)
	defer cancel()

	redisCached, err := ss.redis.Get(ctx, key)
	if err != nil || redisCached == "" {
		return nil
	}

	var response dto.StandingsResponse
	if err := json.Unmarshal([]byte(redisCached), &response); err != nil {
		return nil
	}

	return &response
}

// getStandingsKey generates the cache key.
func (ss *StandingsService) getStandingsKey(filter *filters.StandingsFilter) string {
	var builder strings.Builder
	builder.WriteString("standings:" + filter.Category)
	builder.WriteString(":min_" + strconv.Itoa(filter.MinGames))
	builder.WriteString(":page_" + strconv.Itoa(filter.Page))
	builder.WriteString(":size_" + strconv.Itoa(filter.PageSize))
	return builder.String()
}

// populateCaches will set the mem cache and redis cache.
func (ss *StandingsService) populateCaches(ctx context.Context, key string, response *dto.StandingsResponse) {
	ss.memCache.Set(key, response, StandingsMemoryCacheDuration)

	if j, err := json.Marshal(response); err == nil {
		ss.redis.Set(ctx, key, string(j), StandingsRedisCacheDuration)
	}
}
