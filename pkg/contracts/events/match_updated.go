package events

import "time"

// Evento publicado no tópico "match_updated" a cada passada de sincronização
// em que a partida canônica mudou (odds, status ou resultado).
type MatchOdds struct {
	Team1 *float64 `json:"team1"` // odds decimais; nil quando indisponível
	Team2 *float64 `json:"team2"`
}

type MatchUpdated struct {
	MatchID    string    `json:"match_id"`
	Team1      string    `json:"team1"`
	Team2      string    `json:"team2"`
	Tournament string    `json:"tournament"`
	Tier       string    `json:"tier"`
	Status     string    `json:"status"` // scheduled | live | finished | cancelled
	Odds       MatchOdds `json:"odds"`
	Sources    []string  `json:"sources"` // adapters que contribuíram
	Confidence float64   `json:"confidence"`
	StartTime  time.Time `json:"start_time"`
	UpdatedAt  time.Time `json:"updated_at"`
}
