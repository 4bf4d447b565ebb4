package models

import (
	"errors"
	"time"
)

// MatchStatus representa o ciclo de vida de uma partida.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusCancelled MatchStatus = "cancelled"
)

// Winner identifica o vencedor de uma partida finalizada.
type Winner string

const (
	WinnerTeam1 Winner = "team1"
	WinnerTeam2 Winner = "team2"
	WinnerDraw  Winner = "draw"
)

// Tier de torneio, em ordem de prioridade decrescente (s > a > b > c > d > unknown).
type Tier string

const (
	TierS       Tier = "s"
	TierA       Tier = "a"
	TierB       Tier = "b"
	TierC       Tier = "c"
	TierD       Tier = "d"
	TierUnknown Tier = "unknown"
)

// tierRank: quanto menor, maior a prioridade na ordenação.
var tierRank = map[Tier]int{
	TierS: 0, TierA: 1, TierB: 2, TierC: 3, TierD: 4, TierUnknown: 5,
}

// Rank retorna a posição do tier para ordenação (desconhecidos por último).
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return tierRank[TierUnknown]
}

// MatchResult só existe em partidas finalizadas.
type MatchResult struct {
	Winner Winner `json:"winner"`
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
}

// Odds decimais (>1.0) por seleção; nil quando nenhuma fonte informou valor.
type Odds struct {
	Team1 *float64 `json:"team1"`
	Team2 *float64 `json:"team2"`
}

// ForSelection retorna a odd da seleção, se disponível.
func (o Odds) ForSelection(sel Selection) (float64, bool) {
	switch sel {
	case SelectionTeam1:
		if o.Team1 != nil {
			return *o.Team1, true
		}
	case SelectionTeam2:
		if o.Team2 != nil {
			return *o.Team2, true
		}
	}
	return 0, false
}

// SourceRef registra a proveniência de um adapter que contribuiu para a partida canônica.
type SourceRef struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Match é o registro canônico de uma partida, resultado da resolução multi-fonte.
// Invariante: Status == finished implica Result != nil (garantido por Finish).
type Match struct {
	ID         string       `json:"id"`
	Team1Name  string       `json:"team1Name"`
	Team2Name  string       `json:"team2Name"`
	Team1Logo  string       `json:"team1Logo,omitempty"`
	Team2Logo  string       `json:"team2Logo,omitempty"`
	Tournament string       `json:"tournament"`
	Tier       Tier         `json:"tier"`
	StartTime  time.Time    `json:"startTime"`
	Status     MatchStatus  `json:"status"`
	Result     *MatchResult `json:"result,omitempty"`
	Odds       Odds         `json:"odds"`
	Sources    []SourceRef  `json:"sources"`
	Confidence float64      `json:"confidence"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

var (
	ErrResultRequired = errors.New("finished match requires a result")
	ErrInvalidOdds    = errors.New("decimal odds must be greater than 1.0")
)

// Finish transiciona a partida para finished. Recusa a transição sem resultado,
// tornando o estado "finished sem result" irrepresentável.
func (m *Match) Finish(r MatchResult) error {
	if r.Winner != WinnerTeam1 && r.Winner != WinnerTeam2 && r.Winner != WinnerDraw {
		return ErrResultRequired
	}
	m.Status = StatusFinished
	m.Result = &r
	return nil
}

// SetOdds valida a convenção de odds decimais antes de atribuir.
func (m *Match) SetOdds(team1, team2 *float64) error {
	if (team1 != nil && *team1 <= 1.0) || (team2 != nil && *team2 <= 1.0) {
		return ErrInvalidOdds
	}
	m.Odds = Odds{Team1: team1, Team2: team2}
	return nil
}

// SourceNames lista os adapters contribuintes, na ordem registrada.
func (m *Match) SourceNames() []string {
	out := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		out = append(out, s.Name)
	}
	return out
}
