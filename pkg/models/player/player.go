package player

import (
	"math"
	"strings"
	"time"
)

// Collection names on the document store.
const (
	ProfileCollection   = "playerStats"
	StandingsCollection = "playerCategoryStats"
)

// DefaultCategory is used when neither the player nor the match carry a category.
const DefaultCategory = "default"

// CategoryStats holds the long lived aggregates of a player inside a single category.
// Games must always equal wins + losses + draws.
type CategoryStats struct {
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Draws  int     `json:"draws"`
	Games  int     `json:"games"`
	Score  float64 `json:"score"`

	// Peak tracking. A zero PeakScore means the peak was never set.
	PeakScore   float64    `json:"peakScore,omitempty"`
	PeakScoreAt *time.Time `json:"peakScoreAt,omitempty"`

	// Lifetime telemetry totals for the category.
	Kills       int `json:"kills,omitempty"`
	Deaths      int `json:"deaths,omitempty"`
	Assists     int `json:"assists,omitempty"`
	Gold        int `json:"gold,omitempty"`
	DamageDealt int `json:"damageDealt,omitempty"`
	DamageTaken int `json:"damageTaken,omitempty"`
}

// Profile is the durable document of a player, keyed by the normalized name.
type Profile struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Categories  map[string]CategoryStats `json:"categories"`
	TotalGames  int                      `json:"totalGames"`
	FirstPlayed time.Time                `json:"firstPlayed"`
	LastPlayed  time.Time                `json:"lastPlayed"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// SumCategoryGames recomputes the total games across every category.
func (p *Profile) SumCategoryGames() int {
	total := 0
	for _, stats := range p.Categories {
		total += stats.Games
	}
	return total
}

// StandingsRecord is the denormalized per player per category mirror used only
// by the ranking queries. It is owned by the ingestion side and eventually
// consistent with the corresponding CategoryStats.
type StandingsRecord struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Category   string    `json:"category"`
	Score      float64   `json:"score"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	Draws      int       `json:"draws"`
	Games      int       `json:"games"`
	WinRate    float64   `json:"winRate"` // Derived, never used as the source of truth.
	LastPlayed time.Time `json:"lastPlayed"`
}

// DocID builds the document id of the record on the standings collection.
func (r *StandingsRecord) DocID() string {
	return r.PlayerID + "_" + r.Category
}

// NormalizeName normalizes a player name for consistent document lookup.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// WinRatePercent derives the win rate over the decisive games, as a percentage
// rounded to 2 decimals. Draws don't count, no decisive games means 0.
func WinRatePercent(wins, losses int) float64 {
	decisive := wins + losses
	if decisive == 0 {
		return 0
	}

	return math.Round(float64(wins)/float64(decisive)*100*100) / 100
}
