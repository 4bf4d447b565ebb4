package rankings

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Team é uma entrada da tabela lateral de rankings (configs/team-rankings.yaml).
type Team struct {
	Name    string   `yaml:"name"`
	Rank    int      `yaml:"rank"`
	Aliases []string `yaml:"aliases,omitempty"`
	Logo    string   `yaml:"logo,omitempty"`
}

type tableFile struct {
	Teams []Team `yaml:"teams"`
}

// Table resolve nomes de times e calcula odds de fallback baseadas em ranking.
type Table struct {
	teams []Team
}

// Load lê a tabela de rankings de um arquivo YAML.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rankings: read %q: %w", path, err)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("rankings: parse yaml: %w", err)
	}
	return &Table{teams: f.Teams}, nil
}

// NewTable monta uma tabela em memória (usado em testes).
func NewTable(teams []Team) *Table { return &Table{teams: teams} }

// Normalize prepara um nome de time para comparação: minúsculas e sem os
// sufixos genéricos (esports, gaming, team) que variam entre provedores.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{" esports", " esport", " gaming", " team"} {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimPrefix(s, "team ")
	return strings.Join(strings.Fields(s), " ")
}

// namesMatch compara dois nomes já aceitando variações comuns
// (igualdade após normalização ou inclusão com pelo menos 3 caracteres).
func namesMatch(a, b string) bool {
	n1 := Normalize(a)
	n2 := Normalize(b)
	if n1 == "" || n2 == "" {
		return false
	}
	if n1 == n2 {
		return true
	}
	if len(n1) >= 3 && len(n2) >= 3 {
		if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
			return true
		}
	}
	return false
}

// Rank devolve a posição do time no ranking, se conhecido.
func (t *Table) Rank(name string) (int, bool) {
	team, ok := t.find(name)
	if !ok {
		return 0, false
	}
	return team.Rank, true
}

// CanonicalName resolve um nome ou alias cru para o nome oficial do time.
// Usado como estratégia intermediária de resolução de nomes nos adapters.
func (t *Table) CanonicalName(raw string) (string, bool) {
	team, ok := t.find(raw)
	if !ok {
		return "", false
	}
	return team.Name, true
}

func (t *Table) find(name string) (Team, bool) {
	if t == nil {
		return Team{}, false
	}
	for _, team := range t.teams {
		if namesMatch(team.Name, name) {
			return team, true
		}
		for _, alias := range team.Aliases {
			if namesMatch(alias, name) {
				return team, true
			}
		}
	}
	return Team{}, false
}

// FallbackOdds calcula odds plausíveis a partir da distância de ranking
// entre os dois times. É o último recurso quando nenhum provedor tem odds.
// Retorna as odds de team1/team2 e a confiança do cálculo.
func (t *Table) FallbackOdds(team1, team2 string) (o1, o2, confidence float64) {
	r1, ok1 := t.Rank(team1)
	r2, ok2 := t.Rank(team2)

	// Times desconhecidos: odds neutras com confiança baixa.
	if !ok1 || !ok2 {
		return 1.90, 1.90, 0.3
	}

	diff := r1 - r2
	if diff < 0 {
		diff = -diff
	}

	var favorite, underdog float64
	switch {
	case diff <= 2:
		favorite, underdog = 1.75, 2.05
	case diff <= 5:
		favorite, underdog = 1.55, 2.35
	case diff <= 10:
		favorite, underdog = 1.35, 2.95
	case diff <= 20:
		favorite, underdog = 1.20, 4.25
	default:
		favorite, underdog = 1.08, 7.50
	}

	// Ranking menor = time melhor = favorito.
	if r1 <= r2 {
		return favorite, underdog, 0.7
	}
	return underdog, favorite, 0.7
}
