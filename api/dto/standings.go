package dto

// StandingsEntry is a single ranked row on the leaderboard.
type StandingsEntry struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Draws   int     `json:"draws"`
	Games   int     `json:"games"`
	WinRate float64 `json:"winRate"`
}

// StandingsResponse is a paginated leaderboard.
type StandingsResponse struct {
	Standings []StandingsEntry `json:"standings"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	HasMore   bool             `json:"hasMore"`
}

// PlayerRank is the leaderboard position of a single player.
type PlayerRank struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Rank     int     `json:"rank"`
	Total    int     `json:"total"`
	Score    float64 `json:"score"`
}
