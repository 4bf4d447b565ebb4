package bo3gg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/cs2-bet-platform/internal/rankings"
)

func TestSplitSlug(t *testing.T) {
	s1, s2, ok := splitSlug("natus-vincere-vs-faze-clan-15-09-2026")
	require.True(t, ok)
	assert.Equal(t, "natus-vincere", s1)
	assert.Equal(t, "faze-clan", s2)

	// Sem sufixo de data também resolve.
	s1, s2, ok = splitSlug("big-vs-saw")
	require.True(t, ok)
	assert.Equal(t, "big", s1)
	assert.Equal(t, "saw", s2)

	_, _, ok = splitSlug("sem-separador-12-01-2026")
	assert.False(t, ok)
	_, _, ok = splitSlug("")
	assert.False(t, ok)
}

func TestSlugToName(t *testing.T) {
	// Acrônimos conhecidos ficam em maiúsculas.
	assert.Equal(t, "MOUZ", slugToName("mouz"))
	assert.Equal(t, "G2", slugToName("g2"))
	assert.Equal(t, "Natus Vincere", slugToName("natus-vincere"))
	// Sufixo de jogo é descartado.
	assert.Equal(t, "FURIA", slugToName("furia-cs2"))
	assert.Equal(t, "Eternal Fire", slugToName("eternal-fire"))
}

func TestResolveTeamNamesPriority(t *testing.T) {
	table := rankings.NewTable([]rankings.Team{
		{Name: "Natus Vincere", Rank: 4, Aliases: []string{"navi"}},
		{Name: "FaZe Clan", Rank: 6},
	})
	a := &Adapter{rankings: table}

	// Campos estruturados vencem qualquer heurística.
	m := apiMatch{
		Slug:  "navi-vs-faze-clan-10-09-2026",
		Team1: &apiTeam{Name: "Natus Vincere"},
		Team2: &apiTeam{Name: "FaZe Clan"},
	}
	t1, t2 := a.resolveTeamNames(m)
	assert.Equal(t, "Natus Vincere", t1)
	assert.Equal(t, "FaZe Clan", t2)

	// Sem campos estruturados, a tabela lateral resolve o slug.
	m.Team1, m.Team2 = nil, nil
	t1, t2 = a.resolveTeamNames(m)
	assert.Equal(t, "Natus Vincere", t1)
	assert.Equal(t, "FaZe Clan", t2)

	// Times fora da tabela caem na heurística de slug.
	m.Slug = "time-obscuro-vs-outro-time-10-09-2026"
	t1, t2 = a.resolveTeamNames(m)
	assert.Equal(t, "Time Obscuro", t1)
	assert.Equal(t, "Outro Time", t2)

	// Sem slug nem times: placeholder.
	m.Slug = ""
	t1, t2 = a.resolveTeamNames(m)
	assert.Equal(t, "TBD", t1)
	assert.Equal(t, "TBD", t2)
}
