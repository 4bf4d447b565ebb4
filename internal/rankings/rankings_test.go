package rankings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return NewTable([]Team{
		{Name: "Natus Vincere", Rank: 4, Aliases: []string{"navi"}},
		{Name: "Team Vitality", Rank: 1},
		{Name: "FaZe Clan", Rank: 6, Aliases: []string{"faze"}},
		{Name: "SAW", Rank: 19},
		{Name: "FUT Esports", Rank: 24},
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "vitality", Normalize("Team Vitality"))
	assert.Equal(t, "furia", Normalize("FURIA Esports"))
	assert.Equal(t, "big", Normalize("  BIG Gaming "))
}

func TestCanonicalName(t *testing.T) {
	tbl := testTable()

	name, ok := tbl.CanonicalName("navi")
	require.True(t, ok)
	assert.Equal(t, "Natus Vincere", name)

	// Variação de sufixo resolve para o mesmo time.
	name, ok = tbl.CanonicalName("Vitality")
	require.True(t, ok)
	assert.Equal(t, "Team Vitality", name)

	_, ok = tbl.CanonicalName("Time Inventado")
	assert.False(t, ok)
}

func TestRankFuzzyMatch(t *testing.T) {
	tbl := testTable()

	r, ok := tbl.Rank("FaZe")
	require.True(t, ok)
	assert.Equal(t, 6, r)

	r, ok = tbl.Rank("natus vincere")
	require.True(t, ok)
	assert.Equal(t, 4, r)
}

func TestFallbackOddsLadder(t *testing.T) {
	tbl := testTable()

	// diff <= 2: quase parelho.
	o1, o2, conf := tbl.FallbackOdds("Team Vitality", "navi") // ranks 1 vs 4 -> diff 3
	assert.Equal(t, 1.55, o1)
	assert.Equal(t, 2.35, o2)
	assert.Equal(t, 0.7, conf)

	// diff <= 2.
	o1, o2, _ = tbl.FallbackOdds("navi", "faze") // 4 vs 6 -> diff 2
	assert.Equal(t, 1.75, o1)
	assert.Equal(t, 2.05, o2)

	// Underdog na posição team1 recebe a odd maior.
	o1, o2, _ = tbl.FallbackOdds("SAW", "Team Vitality") // 19 vs 1 -> diff 18
	assert.Equal(t, 4.25, o1)
	assert.Equal(t, 1.20, o2)

	// diff > 20 usa o degrau mais largo.
	wide := NewTable([]Team{{Name: "A", Rank: 1}, {Name: "ZZZ", Rank: 30}})
	o1, o2, _ = wide.FallbackOdds("A", "ZZZ")
	assert.Equal(t, 1.08, o1)
	assert.Equal(t, 7.50, o2)
}

func TestFallbackOddsUnknownTeams(t *testing.T) {
	tbl := testTable()
	o1, o2, conf := tbl.FallbackOdds("Desconhecido FC", "navi")
	assert.Equal(t, 1.90, o1)
	assert.Equal(t, 1.90, o2)
	assert.Equal(t, 0.3, conf)
}

func TestNilTableIsSafe(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Rank("navi")
	assert.False(t, ok)
	o1, o2, conf := tbl.FallbackOdds("a", "b")
	assert.Equal(t, 1.90, o1)
	assert.Equal(t, 1.90, o2)
	assert.Equal(t, 0.3, conf)
}
