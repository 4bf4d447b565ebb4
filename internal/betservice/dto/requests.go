package dto

// PlaceBetRequest é o corpo do POST /v1/bets
type PlaceBetRequest struct {
	UserID    string `json:"userId"`
	MatchID   string `json:"matchId"`
	Selection string `json:"selection"` // "team1" | "team2"
	Stake     int64  `json:"stake"`     // créditos inteiros
}
