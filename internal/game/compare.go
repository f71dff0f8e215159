// internal/game/compare.go
//
// Comparison engine: scores a guessed company against the target, one tile per
// column in Columns order.
//
// Column rules:
//   - identity: alignment placeholder, always neutral.
//   - batch:    identical codes → exact; otherwise compare chronological
//               ordinals (year*4 + season) → ordinal_up / ordinal_down;
//               unparseable on either side → unknown.
//   - industry: equal primary industry → exact; guess's primary industry
//               among the target's industry tags → partial; else none.
//   - status:   equal → exact; else none.
//   - badges, regions: set rule (both empty or equal → exact, shared element
//               → overlap, else none); regions ignore remote-style tags.
//
// Compare reads only its arguments and is safe for concurrent use.

package game

import (
	"strconv"
	"strings"

	"github.com/robalobadob/ycdle/internal/catalog"
)

// seasonOffsets maps batch season letters to their position within a year.
var seasonOffsets = map[string]int{
	"W": 0, // winter
	"X": 1, // spring
	"S": 2, // summer
	"F": 3, // fall
}

// seasonNames covers the long batch form, e.g. "Fall 2025".
var seasonNames = map[string]int{
	"winter": 0,
	"spring": 1,
	"summer": 2,
	"fall":   3,
	"autumn": 3,
}

// Compare returns the feedback row for guess against target.
func Compare(guess, target catalog.Entity) []Tile {
	return []Tile{
		{Column: ColumnIdentity, Kind: MatchNone, Severity: SeverityNeutral},
		compareBatch(guess.BatchCode, target.BatchCode),
		compareIndustry(guess, target),
		compareStatus(guess.Status, target.Status),
		compareSets(ColumnBadges, guess.Badges, target.Badges, nil),
		compareSets(ColumnRegions, guess.Regions, target.Regions, isRemote),
	}
}

// BatchOrdinal parses a batch code into year*4 + season offset. It accepts the
// short form ("W24", "f2025") and the long form ("Summer 2024"), trimmed and
// case-insensitive. Two-digit years are in the 2000s.
func BatchOrdinal(code string) (int, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false
	}

	if f := strings.Fields(code); len(f) == 2 {
		off, ok := seasonNames[strings.ToLower(f[0])]
		if !ok {
			return 0, false
		}
		year, ok := parseYear(f[1])
		if !ok {
			return 0, false
		}
		return year*4 + off, true
	}

	off, ok := seasonOffsets[strings.ToUpper(code[:1])]
	if !ok {
		return 0, false
	}
	year, ok := parseYear(code[1:])
	if !ok {
		return 0, false
	}
	return year*4 + off, true
}

// parseYear accepts 1–2 digit years (2000-based) and 4 digit years.
func parseYear(s string) (int, bool) {
	if s == "" || len(s) == 3 || len(s) > 4 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if len(s) <= 2 {
		n += 2000
	}
	return n, true
}

func compareBatch(guess, target string) Tile {
	t := Tile{Column: ColumnBatch}
	if strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(target)) {
		t.Kind, t.Severity = MatchExact, SeverityGreen
		return t
	}
	g, okG := BatchOrdinal(guess)
	want, okT := BatchOrdinal(target)
	switch {
	case !okG || !okT:
		t.Kind, t.Severity = MatchUnknown, SeverityRed
	case g < want:
		t.Kind, t.Severity, t.Direction = MatchOrdinalUp, SeverityRed, DirectionUp
	case g > want:
		t.Kind, t.Severity, t.Direction = MatchOrdinalDown, SeverityRed, DirectionDown
	default:
		// Same batch spelled differently ("W24" vs "Winter 2024").
		t.Kind, t.Severity = MatchExact, SeverityGreen
	}
	return t
}

func compareIndustry(guess, target catalog.Entity) Tile {
	t := Tile{Column: ColumnIndustry}
	g := normalize(guess.Industry)
	if g == normalize(target.Industry) {
		t.Kind, t.Severity = MatchExact, SeverityGreen
		return t
	}
	if _, ok := normalizeSet(target.Industries, nil)[g]; ok && g != "" {
		t.Kind, t.Severity = MatchPartial, SeverityYellow
		return t
	}
	t.Kind, t.Severity = MatchNone, SeverityRed
	return t
}

func compareStatus(guess, target string) Tile {
	if normalize(guess) == normalize(target) {
		return Tile{Column: ColumnStatus, Kind: MatchExact, Severity: SeverityGreen}
	}
	return Tile{Column: ColumnStatus, Kind: MatchNone, Severity: SeverityRed}
}

func compareSets(col Column, guess, target []string, skip func(string) bool) Tile {
	g := normalizeSet(guess, skip)
	want := normalizeSet(target, skip)

	shared := 0
	for k := range g {
		if _, ok := want[k]; ok {
			shared++
		}
	}
	switch {
	case len(g) == len(want) && shared == len(g):
		// Covers both-empty.
		return Tile{Column: col, Kind: MatchExact, Severity: SeverityGreen}
	case shared > 0:
		return Tile{Column: col, Kind: MatchOverlap, Severity: SeverityYellow}
	default:
		return Tile{Column: col, Kind: MatchNone, Severity: SeverityRed}
	}
}
