package topics

const (
	// Matches/odds
	MatchUpdated = "match_updated"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	BetSettledDLQ = "bet_settled_dlq"
)
