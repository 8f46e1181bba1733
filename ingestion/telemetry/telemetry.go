package telemetry

import (
	"encoding/binary"
	"fmt"
	"ittweb/pkg/models/match"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Entry is a single raw telemetry tuple emitted by the match instrumentation.
// Entity keys are free text and need normalization before any lookup.
type Entry struct {
	EntityKey    string
	VariableName string
	Value        float64
}

// Lookup maps a normalized entity key to the variables that entity reported.
// Later entries for the same variable overwrite earlier ones.
type Lookup map[string]map[string]float64

// Normalize lowercases the value and strips everything that isn't a-z or 0-9.
func Normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))

	var builder strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// BuildLookup indexes the raw entries by normalized entity key and variable name.
// Entries with an empty entity key or variable name are discarded; every other
// valid entry is also returned untouched so callers can keep it for audit.
func BuildLookup(entries []Entry) ([]Entry, Lookup) {
	raw := make([]Entry, 0, len(entries))
	lookup := make(Lookup)

	for _, entry := range entries {
		if entry.EntityKey == "" || entry.VariableName == "" {
			continue
		}

		raw = append(raw, entry)

		entityKey := Normalize(entry.EntityKey)
		if entityKey == "" {
			continue
		}

		// Some variable names are pure punctuation, fall back to the lowercased raw name.
		variableKey := Normalize(entry.VariableName)
		if variableKey == "" {
			variableKey = strings.ToLower(entry.VariableName)
		}

		if lookup[entityKey] == nil {
			lookup[entityKey] = make(map[string]float64)
		}
		lookup[entityKey][variableKey] = entry.Value
	}

	return raw, lookup
}

// CandidateKeys builds the ordered entity key candidates for a player.
// Telemetry systems are inconsistent about how they key per player data, so we
// probe the normalized name and a few slot based aliases, first match wins.
func CandidateKeys(name string, slotID, teamID int) []string {
	slot := strconv.Itoa(slotID)

	candidates := []string{
		Normalize(name),
		"player" + slot,
		"player" + strconv.Itoa(slotID+1),
		"p" + slot,
		"slot" + slot,
		Normalize(fmt.Sprintf("%d-%d", teamID, slotID)),
	}

	// Deduplicate keeping the first occurrence and drop empty candidates.
	seen := make(map[string]bool, len(candidates))
	unique := candidates[:0]
	for _, candidate := range candidates {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		unique = append(unique, candidate)
	}

	return unique
}

// MapToPlayers maps the decoded lookup onto the match players, keyed by slot id.
// A player without any matching entity key simply gets no patch.
func MapToPlayers(players []match.Player, lookup Lookup) map[int]match.StatPatch {
	patches := make(map[int]match.StatPatch)
	if len(lookup) == 0 {
		return patches
	}

	for _, p := range players {
		var variables map[string]float64
		for _, candidate := range CandidateKeys(p.Name, p.SlotID, p.TeamID) {
			if entry, ok := lookup[candidate]; ok && len(entry) > 0 {
				variables = entry
				break
			}
		}

		if variables == nil {
			continue
		}

		patch := deriveStats(variables)
		if !patch.Empty() {
			patches[p.SlotID] = patch
		}
	}

	return patches
}

// statRule classifies a variable name onto a patch field.
// The rules run in the declared order and the first match wins for a given
// variable, so "damage taken" must come before the plain "damage" rule.
type statRule struct {
	matches func(string) bool
	apply   func(*match.StatPatch, float64)
}

var statRules = []statRule{
	{
		matches: func(key string) bool { return strings.Contains(key, "kill") },
		apply:   func(p *match.StatPatch, v float64) { p.Kills = intPtr(v) },
	},
	{
		matches: func(key string) bool { return strings.Contains(key, "death") },
		apply:   func(p *match.StatPatch, v float64) { p.Deaths = intPtr(v) },
	},
	{
		matches: func(key string) bool { return strings.Contains(key, "assist") },
		apply:   func(p *match.StatPatch, v float64) { p.Assists = intPtr(v) },
	},
	{
		matches: func(key string) bool { return strings.Contains(key, "gold") },
		apply:   func(p *match.StatPatch, v float64) { p.Gold = intPtr(v) },
	},
	{
		matches: func(key string) bool {
			return strings.Contains(key, "damage") && strings.Contains(key, "taken")
		},
		apply: func(p *match.StatPatch, v float64) { p.DamageTaken = intPtr(v) },
	},
	{
		matches: func(key string) bool { return strings.Contains(key, "damage") },
		apply:   func(p *match.StatPatch, v float64) { p.DamageDealt = intPtr(v) },
	},
	{
		matches: func(key string) bool { return strings.Contains(key, "random") },
		apply: func(p *match.StatPatch, v float64) {
			random := v > 0
			p.RandomClass = &random
		},
	},
	{
		matches: func(key string) bool { return strings.Contains(key, "class") },
		apply: func(p *match.StatPatch, v float64) {
			class := DecodeClassName(v)
			p.Class = &class
		},
	},
}

// deriveStats classifies every variable of the matched entity.
// Variables are visited in sorted name order so the last write per field is
// deterministic even when several variable names classify to the same field.
func deriveStats(variables map[string]float64) match.StatPatch {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var patch match.StatPatch
	for _, name := range names {
		for _, rule := range statRules {
			if rule.matches(name) {
				rule.apply(&patch, variables[name])
				break
			}
		}
	}

	return patch
}

// DecodeClassName extracts a short ASCII string smuggled inside a numeric value.
// The value is truncated to an unsigned 32 bit integer and read as 4 big endian
// bytes. If the remaining bytes after stripping NULs aren't printable ASCII the
// decimal representation of the original number is returned instead.
func DecodeClassName(value float64) string {
	var truncated uint32
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		truncated = uint32(int64(value))
	}

	var buffer [4]byte
	binary.BigEndian.PutUint32(buffer[:], truncated)

	ascii := strings.TrimSpace(strings.ReplaceAll(string(buffer[:]), "\x00", ""))
	if ascii != "" && isPrintableASCII(ascii) {
		return ascii
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}

// isPrintableASCII verifies every byte is inside the printable range.
func isPrintableASCII(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7E {
			return false
		}
	}
	return true
}

// intPtr truncates the telemetry value into an int pointer.
func intPtr(value float64) *int {
	v := int(value)
	return &v
}
