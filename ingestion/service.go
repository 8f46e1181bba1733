package ingestion

import (
	"context"
	"errors"
	"fmt"
	"ittweb/ingestion/repositories"
	"ittweb/ingestion/telemetry"
	"ittweb/pkg/elo"
	"ittweb/pkg/logger"
	"ittweb/pkg/messages"
	"ittweb/pkg/models/match"
	"ittweb/pkg/models/player"
	"strconv"
	"strings"
	"time"
)

// Service applies a finished match onto the long lived player aggregates.
//
// Applying the same match twice double-counts: there is no dedupe key, the
// caller guarantees at most one invocation per match id.
type Service struct {
	PlayerRepository    repositories.PlayerRepository
	StandingsRepository repositories.StandingsRepository
	logger              *logger.Logger
}

// ServiceDeps is the dependency list for the ingestion service.
type ServiceDeps struct {
	PlayerRepository    repositories.PlayerRepository
	StandingsRepository repositories.StandingsRepository
	Logger              *logger.Logger
}

// NewService creates the ingestion service.
func NewService(deps *ServiceDeps) *Service {
	return &Service{
		PlayerRepository:    deps.PlayerRepository,
		StandingsRepository: deps.StandingsRepository,
		logger:              deps.Logger,
	}
}

// ApplyMatch validates the outcome, decodes the telemetry and applies the result
// to every participating player: rating change, per category counters, peak
// tracking and the denormalized standings record.
//
// The outcome is either rejected before any write or applied to every player.
// For each player the profile is always written before its standings record,
// so a racing reader can observe the profile ahead of the record.
func (s *Service) ApplyMatch(ctx context.Context, outcome *match.Outcome, entries []telemetry.Entry) error {
	if err := validateOutcome(outcome); err != nil {
		return err
	}

	_, lookup := telemetry.BuildLookup(entries)
	patches := telemetry.MapToPlayers(outcome.Players, lookup)

	// Resolve the category and pre match rating of every player first.
	// These reads are outside the row lock taken by MutateProfile, so two
	// concurrent matches for the same player can both compute the new score
	// from the same pre match rating and the later write wins.
	categories := make(map[int]string, len(outcome.Players))
	before := make(map[int]float64, len(outcome.Players))
	for _, p := range outcome.Players {
		category := resolveCategory(p, outcome)
		categories[p.SlotID] = category

		profile, err := s.PlayerRepository.GetProfile(ctx, player.NormalizeName(p.Name))
		if err != nil {
			return fmt.Errorf("couldn't read the profile of %s: %w", p.Name, err)
		}

		rating := float64(elo.StartingRating)
		if profile != nil {
			if stats, ok := profile.Categories[category]; ok {
				rating = stats.Score
			}
		}
		before[p.SlotID] = rating
	}

	deltas := s.computeDeltas(outcome, before)

	for _, p := range outcome.Players {
		id := player.NormalizeName(p.Name)
		category := categories[p.SlotID]
		eloAfter := before[p.SlotID] + deltas[slotKey(p.SlotID)]

		var patch *match.StatPatch
		if decoded, ok := patches[p.SlotID]; ok {
			patch = &decoded
		}

		profile, err := s.PlayerRepository.MutateProfile(ctx, id, func(profile *player.Profile, exists bool) error {
			applyToProfile(profile, exists, p, category, eloAfter, patch, outcome.PlayedAt)
			return nil
		})
		if err != nil {
			s.logError("couldn't update the profile of %s on match %s: %v", p.Name, outcome.ID, err)
			return fmt.Errorf(messages.CouldNotUpdateProfile+": %w", p.Name, err)
		}

		stats := profile.Categories[category]
		record := &player.StandingsRecord{
			PlayerID:   id,
			PlayerName: p.Name,
			Category:   category,
			Score:      stats.Score,
			Wins:       stats.Wins,
			Losses:     stats.Losses,
			Draws:      stats.Draws,
			Games:      stats.Games,
			WinRate:    player.WinRatePercent(stats.Wins, stats.Losses),
			LastPlayed: outcome.PlayedAt,
		}

		if err := s.StandingsRepository.Upsert(ctx, record); err != nil {
			s.logError("couldn't mirror the standings record of %s on match %s: %v", p.Name, outcome.ID, err)
			return fmt.Errorf(messages.CouldNotMirrorRecord+": %w", p.Name, err)
		}
	}

	return nil
}

// computeDeltas partitions the match by result flag and computes the rating
// change of every player against the opposing team mean.
func (s *Service) computeDeltas(outcome *match.Outcome, before map[int]float64) map[string]float64 {
	var winners, losers, drawers []elo.TeamMember

	for _, p := range outcome.Players {
		member := elo.TeamMember{ID: slotKey(p.SlotID), Rating: before[p.SlotID]}
		switch p.Flag {
		case match.FlagWinner:
			winners = append(winners, member)
		case match.FlagLoser:
			losers = append(losers, member)
		case match.FlagDrawer:
			drawers = append(drawers, member)
		}
	}

	return elo.MatchDeltas(winners, losers, drawers, elo.DefaultKFactor)
}

// applyToProfile mutates a single profile with the match result.
func applyToProfile(profile *player.Profile, exists bool, p match.Player, category string, eloAfter float64, patch *match.StatPatch, playedAt time.Time) {
	now := time.Now()

	if !exists {
		profile.CreatedAt = now
		profile.FirstPlayed = playedAt
	}

	// Keep the latest display casing of the name.
	profile.Name = p.Name

	stats := profile.Categories[category]

	switch p.Flag {
	case match.FlagWinner:
		stats.Wins++
	case match.FlagLoser:
		stats.Losses++
	case match.FlagDrawer:
		stats.Draws++
	}

	stats.Games = stats.Wins + stats.Losses + stats.Draws
	stats.Score = eloAfter

	if stats.PeakScore == 0 || eloAfter > stats.PeakScore {
		stats.PeakScore = eloAfter
		peakAt := playedAt
		stats.PeakScoreAt = &peakAt
	}

	if patch != nil {
		accumulatePatch(&stats, patch)
	}

	profile.Categories[category] = stats
	profile.TotalGames++
	profile.LastPlayed = playedAt
	profile.UpdatedAt = now
}

// accumulatePatch adds the decoded telemetry totals to the category stats.
func accumulatePatch(stats *player.CategoryStats, patch *match.StatPatch) {
	if patch.Kills != nil {
		stats.Kills += *patch.Kills
	}
	if patch.Deaths != nil {
		stats.Deaths += *patch.Deaths
	}
	if patch.Assists != nil {
		stats.Assists += *patch.Assists
	}
	if patch.Gold != nil {
		stats.Gold += *patch.Gold
	}
	if patch.DamageDealt != nil {
		stats.DamageDealt += *patch.DamageDealt
	}
	if patch.DamageTaken != nil {
		stats.DamageTaken += *patch.DamageTaken
	}
}

// validateOutcome rejects invalid matches before any persistence happens.
func validateOutcome(outcome *match.Outcome) error {
	if outcome == nil {
		return errors.New(messages.MatchNotNil)
	}

	if len(outcome.Players) < 2 {
		return fmt.Errorf(messages.MatchTooFewPlayers, len(outcome.Players))
	}

	var winners, losers int
	for _, p := range outcome.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf(messages.PlayerNameEmpty, p.SlotID)
		}

		if !p.Flag.Valid() {
			return fmt.Errorf(messages.PlayerUnknownFlag, p.Name, string(p.Flag))
		}

		switch p.Flag {
		case match.FlagWinner:
			winners++
		case match.FlagLoser:
			losers++
		}
	}

	// Either both sides exist or nobody won, in which case all players drew.
	if (winners == 0) != (losers == 0) {
		return errors.New(messages.MatchOneSidedResult)
	}

	return nil
}

// resolveCategory picks the player category, the match category or the default.
func resolveCategory(p match.Player, outcome *match.Outcome) string {
	if p.Category != "" {
		return p.Category
	}
	if outcome.Category != "" {
		return outcome.Category
	}
	return player.DefaultCategory
}

// slotKey is the rating engine id of a player inside a single match.
func slotKey(slotID int) string {
	return strconv.Itoa(slotID)
}

// logError logs to the shared logger when one was provided.
func (s *Service) logError(format string, args ...any) {
	if s.logger != nil {
		s.logger.Errorf(format, args...)
	}
}
