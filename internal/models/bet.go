package models

import (
	"math"
	"time"
)

// BetStatus é a máquina de estados da aposta: pending -> won | lost | void.
// Uma vez fora de pending, o status nunca regride.
type BetStatus string

const (
	BetPending BetStatus = "PENDING"
	BetWon     BetStatus = "WON"
	BetLost    BetStatus = "LOST"
	BetVoid    BetStatus = "VOID"
)

// Selection indica em qual time a aposta foi feita.
type Selection string

const (
	SelectionTeam1 Selection = "team1"
	SelectionTeam2 Selection = "team2"
)

// Valid reporta se a seleção é uma das aceitas em apostas.
func (s Selection) Valid() bool {
	return s == SelectionTeam1 || s == SelectionTeam2
}

// Bet é o registro imutável de uma aposta. OddsAtPlacement é o snapshot da
// odd no momento da colocação; PotentialPayout é calculado uma única vez.
type Bet struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	MatchID         string     `json:"matchId"`
	Selection       Selection  `json:"selection"`
	Stake           int64      `json:"stake"`
	OddsAtPlacement float64    `json:"oddsAtPlacement"`
	PotentialPayout int64      `json:"potentialPayout"`
	Status          BetStatus  `json:"status"`
	PlacedAt        time.Time  `json:"placedAt"`
	SettledAt       *time.Time `json:"settledAt,omitempty"`
}

// PayoutFor calcula o payout potencial no momento da colocação.
// Arredonda para o crédito inteiro mais próximo.
func PayoutFor(stake int64, odds float64) int64 {
	return int64(math.Round(float64(stake) * odds))
}
