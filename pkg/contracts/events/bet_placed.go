package events

type BetPlaced struct {
	BetID           string  `json:"bet_id"`
	UserID          string  `json:"user_id"`
	MatchID         string  `json:"match_id"`
	Selection       string  `json:"selection"` // "team1" | "team2"
	Stake           int64   `json:"stake"`
	OddsAtPlacement float64 `json:"odds_at_placement"`
	PotentialPayout int64   `json:"potential_payout"`
	TsUnixMs        int64   `json:"ts_unix_ms"`
}
