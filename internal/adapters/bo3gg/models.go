package bo3gg

// Estruturas da API pública api.bo3.gg/api/v1 (sem chave de API).
type apiResponse struct {
	Results []apiMatch `json:"results"`
}

type apiTeam struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type apiMatch struct {
	ID           int64    `json:"id"`
	Slug         string   `json:"slug"` // "team1-slug-vs-team2-slug-DD-MM-YYYY"
	Status       string   `json:"status"`
	Tier         string   `json:"tier"` // "s" | "a" | "b" | "c" | "d"
	BoType       int      `json:"bo_type"`
	TournamentID int64    `json:"tournament_id"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Team1ID      int64    `json:"team1_id"`
	Team2ID      int64    `json:"team2_id"`
	WinnerTeamID int64    `json:"winner_team_id"`
	Team1Score   int      `json:"team1_score"`
	Team2Score   int      `json:"team2_score"`
	Team1        *apiTeam `json:"team1,omitempty"`
	Team2        *apiTeam `json:"team2,omitempty"`
}
