package elo

import (
	"math"
)

const (
	// StartingRating is the rating of a player that never played the category.
	StartingRating = 1000

	// DefaultKFactor is the default K used on every rating change.
	DefaultKFactor = 32
)

// Result of a player on a match, from the player point of view.
type Result string

const (
	Win  Result = "win"
	Loss Result = "loss"
	Draw Result = "draw"
)

// TeamMember couples an opaque id with the pre match rating of the player.
type TeamMember struct {
	ID     string
	Rating float64
}

// Delta computes the rating change of a single player against an opponent rating.
// Uses the standard logistic expected score formula, rounded to 2 decimals.
func Delta(playerRating, opponentRating float64, result Result, kFactor float64) float64 {
	expected := 1 / (1 + math.Pow(10, (opponentRating-playerRating)/400))

	var actual float64
	switch result {
	case Win:
		actual = 1
	case Loss:
		actual = 0
	default:
		actual = 0.5
	}

	return round2(kFactor * (actual - expected))
}

// TeamRating is the arithmetic mean of the given ratings, rounded to 2 decimals.
// An empty team defaults to the starting rating.
func TeamRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return StartingRating
	}

	sum := 0.0
	for _, rating := range ratings {
		sum += rating
	}

	return round2(sum / float64(len(ratings)))
}

// MatchDeltas computes the rating change of every player of a match.
//
// Each winner is scored against the losers mean rating and each loser against
// the winners mean rating. The match is therefore not zero sum by construction,
// which is a kept property of the rating system, not an accident. Drawers are
// scored as a draw against the winners mean when there are winners, the losers
// mean otherwise. Players on an impossible pairing (winners without losers)
// simply get no delta.
func MatchDeltas(winners, losers, drawers []TeamMember, kFactor float64) map[string]float64 {
	deltas := make(map[string]float64, len(winners)+len(losers)+len(drawers))

	winnerTeam := TeamRating(memberRatings(winners))
	loserTeam := TeamRating(memberRatings(losers))

	if len(winners) > 0 && len(losers) > 0 {
		for _, winner := range winners {
			deltas[winner.ID] = Delta(winner.Rating, loserTeam, Win, kFactor)
		}
		for _, loser := range losers {
			deltas[loser.ID] = Delta(loser.Rating, winnerTeam, Loss, kFactor)
		}
	}

	if len(drawers) > 0 {
		opponent := winnerTeam
		if len(winners) == 0 {
			opponent = loserTeam
		}

		for _, drawer := range drawers {
			deltas[drawer.ID] = Delta(drawer.Rating, opponent, Draw, kFactor)
		}
	}

	return deltas
}

// memberRatings extracts the raw ratings of the team.
func memberRatings(members []TeamMember) []float64 {
	ratings := make([]float64, len(members))
	for i, member := range members {
		ratings[i] = member.Rating
	}
	return ratings
}

// round2 rounds to 2 decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
