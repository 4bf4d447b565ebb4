package events

import "time"

// Evento emitido pelo settlement-worker para cada aposta liquidada.
type BetSettled struct {
	BetID     string    `json:"bet_id"`
	UserID    string    `json:"user_id"`
	MatchID   string    `json:"match_id"`
	Selection string    `json:"selection"`
	Status    string    `json:"status"` // "WON" | "LOST" | "VOID"
	Stake     int64     `json:"stake"`
	Payout    int64     `json:"payout"` // crédito aplicado (payout ou estorno); 0 em LOST
	Winner    string    `json:"winner,omitempty"`
	Ts        time.Time `json:"ts"`
}
