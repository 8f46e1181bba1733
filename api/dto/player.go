package dto

import (
	"time"

	"ittweb/pkg/models/player"
)

// PlayerProfile is the full profile returned from a lookup.
type PlayerProfile struct {
	ID          string                          `json:"id"`
	Name        string                          `json:"name"`
	Categories  map[string]player.CategoryStats `json:"categories"`
	TotalGames  int                             `json:"totalGames"`
	FirstPlayed time.Time                       `json:"firstPlayed"`
	LastPlayed  time.Time                       `json:"lastPlayed"`
}

// PlayerSearchResult is a compact row for the search box.
type PlayerSearchResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalGames int    `json:"totalGames"`
}
