package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/ycdle/internal/catalog"
)

func tileFor(t *testing.T, row []Tile, col Column) Tile {
	t.Helper()
	for _, tile := range row {
		if tile.Column == col {
			return tile
		}
	}
	t.Fatalf("column %s missing from row", col)
	return Tile{}
}

func TestCompare_ColumnOrder(t *testing.T) {
	row := Compare(catalog.Entity{}, catalog.Entity{})
	require.Len(t, row, len(Columns))
	for i, col := range Columns {
		assert.Equal(t, col, row[i].Column)
	}
	assert.Equal(t, Tile{Column: ColumnIdentity, Kind: MatchNone, Severity: SeverityNeutral}, row[0])
}

func TestCompare_Batch(t *testing.T) {
	cases := []struct {
		name          string
		guess, target string
		want          Tile
	}{
		{"identical", "F25", "F25", Tile{Column: ColumnBatch, Kind: MatchExact, Severity: SeverityGreen}},
		{"identical ignoring case and space", " w24", "W24 ", Tile{Column: ColumnBatch, Kind: MatchExact, Severity: SeverityGreen}},
		{"both empty", "", "", Tile{Column: ColumnBatch, Kind: MatchExact, Severity: SeverityGreen}},
		{"guess earlier", "W24", "F25", Tile{Column: ColumnBatch, Kind: MatchOrdinalUp, Severity: SeverityRed, Direction: DirectionUp}},
		{"guess later", "F25", "W24", Tile{Column: ColumnBatch, Kind: MatchOrdinalDown, Severity: SeverityRed, Direction: DirectionDown}},
		{"same year, later season", "S24", "X24", Tile{Column: ColumnBatch, Kind: MatchOrdinalDown, Severity: SeverityRed, Direction: DirectionDown}},
		{"long form equals short form", "Winter 2024", "W24", Tile{Column: ColumnBatch, Kind: MatchExact, Severity: SeverityGreen}},
		{"unparseable guess", "IK12", "W24", Tile{Column: ColumnBatch, Kind: MatchUnknown, Severity: SeverityRed}},
		{"empty target", "W24", "", Tile{Column: ColumnBatch, Kind: MatchUnknown, Severity: SeverityRed}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row := Compare(catalog.Entity{BatchCode: c.guess}, catalog.Entity{BatchCode: c.target})
			assert.Equal(t, c.want, tileFor(t, row, ColumnBatch))
		})
	}
}

func TestBatchOrdinal(t *testing.T) {
	cases := map[string]int{
		"W24":         2024*4 + 0,
		"F25":         2025*4 + 3,
		"x25":         2025*4 + 1,
		"S09":         2009*4 + 2,
		"W2024":       2024*4 + 0,
		"Summer 2024": 2024*4 + 2,
		"fall 2025":   2025*4 + 3,
	}
	for code, want := range cases {
		got, ok := BatchOrdinal(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got, code)
	}
	assert.Equal(t, 8096, cases["W24"])
	assert.Equal(t, 8103, cases["F25"])

	for _, bad := range []string{"", "IK12", "W", "W2A", "W202", "Q24", "Monsoon 2024", "Winter 24x"} {
		_, ok := BatchOrdinal(bad)
		assert.False(t, ok, bad)
	}
}

func TestCompare_Industry(t *testing.T) {
	target := catalog.Entity{Industry: "B2B", Industries: []string{"B2B", "Engineering,  Product and Design"}}

	exact := Compare(catalog.Entity{Industry: "  b2b "}, target)
	assert.Equal(t, MatchExact, tileFor(t, exact, ColumnIndustry).Kind)

	partial := Compare(catalog.Entity{Industry: "engineering, product and design"}, target)
	assert.Equal(t, Tile{Column: ColumnIndustry, Kind: MatchPartial, Severity: SeverityYellow}, tileFor(t, partial, ColumnIndustry))

	none := Compare(catalog.Entity{Industry: "Fintech"}, target)
	assert.Equal(t, Tile{Column: ColumnIndustry, Kind: MatchNone, Severity: SeverityRed}, tileFor(t, none, ColumnIndustry))

	emptyGuess := Compare(catalog.Entity{}, target)
	assert.Equal(t, MatchNone, tileFor(t, emptyGuess, ColumnIndustry).Kind)
}

func TestCompare_Status(t *testing.T) {
	row := Compare(catalog.Entity{Status: "active"}, catalog.Entity{Status: "Active"})
	assert.Equal(t, MatchExact, tileFor(t, row, ColumnStatus).Kind)

	row = Compare(catalog.Entity{Status: "Acquired"}, catalog.Entity{Status: "Active"})
	assert.Equal(t, Tile{Column: ColumnStatus, Kind: MatchNone, Severity: SeverityRed}, tileFor(t, row, ColumnStatus))
}

func TestCompare_Badges(t *testing.T) {
	cases := []struct {
		name          string
		guess, target []string
		want          MatchKind
		sev           Severity
	}{
		{"shared element", []string{"TopCompany"}, []string{"TopCompany", "Other"}, MatchOverlap, SeverityYellow},
		{"both empty", []string{}, []string{}, MatchExact, SeverityGreen},
		{"nil and empty", nil, []string{}, MatchExact, SeverityGreen},
		{"equal unordered", []string{"b", "A"}, []string{"a", "B "}, MatchExact, SeverityGreen},
		{"disjoint", []string{"x"}, []string{"y"}, MatchNone, SeverityRed},
		{"one side empty", nil, []string{"y"}, MatchNone, SeverityRed},
		{"duplicates collapse", []string{"a", "a"}, []string{"a"}, MatchExact, SeverityGreen},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row := Compare(catalog.Entity{Badges: c.guess}, catalog.Entity{Badges: c.target})
			got := tileFor(t, row, ColumnBadges)
			assert.Equal(t, c.want, got.Kind)
			assert.Equal(t, c.sev, got.Severity)
			assert.Empty(t, got.Direction)
		})
	}
}

func TestCompare_RegionsIgnoreRemote(t *testing.T) {
	row := Compare(
		catalog.Entity{Regions: []string{"Remote", "United States of America"}},
		catalog.Entity{Regions: []string{"united states of america", "Fully Remote"}},
	)
	assert.Equal(t, MatchExact, tileFor(t, row, ColumnRegions).Kind)

	row = Compare(catalog.Entity{Regions: []string{"Remote"}}, catalog.Entity{Regions: nil})
	assert.Equal(t, MatchExact, tileFor(t, row, ColumnRegions).Kind, "remote-only is empty")

	row = Compare(catalog.Entity{Regions: []string{"Remote"}}, catalog.Entity{Regions: []string{"Remote (US)"}})
	assert.Equal(t, MatchExact, tileFor(t, row, ColumnRegions).Kind)

	row = Compare(catalog.Entity{Regions: []string{"India", "Remote"}}, catalog.Entity{Regions: []string{"India", "South Asia"}})
	assert.Equal(t, MatchOverlap, tileFor(t, row, ColumnRegions).Kind)

	// Badges are not filtered.
	row = Compare(catalog.Entity{Badges: []string{"remote"}}, catalog.Entity{})
	assert.Equal(t, MatchNone, tileFor(t, row, ColumnBadges).Kind)
}

func TestCompare_DoesNotMutateInputs(t *testing.T) {
	guess := catalog.Entity{Industry: " Fintech ", Badges: []string{"TopCompany"}, Regions: []string{"Remote"}}
	target := catalog.Entity{Industry: "B2B", Industries: []string{"B2B"}, Badges: []string{"topcompany"}}
	Compare(guess, target)

	assert.Equal(t, " Fintech ", guess.Industry)
	assert.Equal(t, []string{"TopCompany"}, guess.Badges)
	assert.Equal(t, []string{"Remote"}, guess.Regions)
}

func TestCompare_Concurrent(t *testing.T) {
	guess := catalog.Entity{BatchCode: "W24", Industry: "Fintech", Status: "Active", Badges: []string{"TopCompany"}, Regions: []string{"Europe"}}
	target := catalog.Entity{BatchCode: "F25", Industry: "B2B", Industries: []string{"B2B", "Fintech"}, Status: "Active", Badges: []string{"TopCompany", "Other"}}
	want := Compare(guess, target)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, want, Compare(guess, target))
			}
		}()
	}
	wg.Wait()
}
