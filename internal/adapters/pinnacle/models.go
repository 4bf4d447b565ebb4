package pinnacle

// Estruturas da API guest (arcadia) da Pinnacle.
type apiParticipant struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Alignment string `json:"alignment"` // "home" | "away"
}

type apiLeague struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiMatchup struct {
	ID           int64            `json:"id"`
	League       *apiLeague       `json:"league"`
	Participants []apiParticipant `json:"participants"`
	StartTime    string           `json:"startTime"` // RFC3339
	Type         string           `json:"type"`      // só "matchup" interessa
}

type apiPrice struct {
	Designation string `json:"designation"` // "home" | "away" | "draw"
	Price       int    `json:"price"`       // odds americanas
}

type apiMarket struct {
	MatchupID int64      `json:"matchupId"`
	Type      string     `json:"type"` // "moneyline"
	Period    int        `json:"period"`
	Prices    []apiPrice `json:"prices"`
}
