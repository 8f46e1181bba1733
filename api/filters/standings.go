package filters

import (
	"ittweb/pkg/models/player"
)

const (
	// DefaultMinGames is the minimum games required to be ranked.
	DefaultMinGames = 10

	// DefaultPageSize is the default leaderboard page size.
	DefaultPageSize = 50

	// maxPageSize caps a single page.
	maxPageSize = 100
)

// StandingsFilter narrows a leaderboard query.
type StandingsFilter struct {
	Category string
	MinGames int
	Page     int
	PageSize int
}

// StandingsParams are the raw values coming from the caller.
type StandingsParams struct {
	Category string
	MinGames int
	Page     int
	PageSize int
}

// NewStandingsFilter applies the defaults on the raw parameters.
func NewStandingsFilter(params StandingsParams) *StandingsFilter {
	filter := &StandingsFilter{
		Category: params.Category,
		MinGames: params.MinGames,
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	if filter.Category == "" {
		filter.Category = player.DefaultCategory
	}

	if filter.MinGames <= 0 {
		filter.MinGames = DefaultMinGames
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}

	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}

	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	return filter
}
