package hltv

// Estruturas do endpoint JSON não-oficial do HLTV.
type apiTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type apiEvent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type winProbability struct {
	Team1 float64 `json:"team1"` // percentual (0-100)
	Team2 float64 `json:"team2"`
}

type apiMatch struct {
	ID             int64           `json:"id"`
	Team1          *apiTeam        `json:"team1"`
	Team2          *apiTeam        `json:"team2"`
	Event          *apiEvent       `json:"event"`
	Date           int64           `json:"date"` // unix millis
	Live           bool            `json:"live"`
	WinProbability *winProbability `json:"winProbability,omitempty"`
}

type apiResult struct {
	ID     int64    `json:"id"`
	Team1  *apiTeam `json:"team1"`
	Team2  *apiTeam `json:"team2"`
	Event  *apiEvent `json:"event"`
	Date   int64    `json:"date"`
	Result struct {
		Team1 int `json:"team1"`
		Team2 int `json:"team2"`
	} `json:"result"`
}
