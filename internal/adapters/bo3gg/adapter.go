package bo3gg

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/adapters"
	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/internal/rankings"
)

const (
	sourceName = "bo3gg"
	confidence = 0.95

	// Espaçamento mínimo entre requests ao provedor.
	minRequestInterval = time.Second

	pageLimit = 50

	// game_version=2 filtra apenas partidas de CS2.
	gameVersionCS2 = "2"
)

// Adapter consome a API pública do bo3.gg: partidas futuras para o sync de
// odds e resultados recentes para a liquidação.
type Adapter struct {
	client   *adapters.Client
	rankings *rankings.Table
}

func New(baseURL string, table *rankings.Table, log *zap.Logger) *Adapter {
	return &Adapter{
		client:   adapters.NewClient(sourceName, baseURL, minRequestInterval, log),
		rankings: table,
	}
}

func (a *Adapter) Name() string        { return sourceName }
func (a *Adapter) Confidence() float64 { return confidence }

// FetchUpcoming busca partidas agendadas. O bo3.gg não publica odds, então
// as partidas saem com odds nulas (o resolver combina com outras fontes).
func (a *Adapter) FetchUpcoming(ctx context.Context) []models.Match {
	q := url.Values{}
	q.Set("filter[matches.status][eq]", "upcoming")
	q.Set("filter[matches.game_version][eq]", gameVersionCS2)
	q.Set("page[limit]", fmt.Sprint(pageLimit))
	q.Set("sort", "start_date")

	var resp apiResponse
	if err := a.client.GetJSON(ctx, "/matches", q, &resp); err != nil {
		a.client.ReportFailure("upcoming", err)
		return nil
	}
	a.client.ReportSuccess()

	out := make([]models.Match, 0, len(resp.Results))
	for _, m := range resp.Results {
		out = append(out, a.toMatch(m, models.StatusScheduled))
	}
	return out
}

// FetchResults busca partidas finalizadas recentes, mais novas primeiro.
func (a *Adapter) FetchResults(ctx context.Context) []models.Match {
	q := url.Values{}
	q.Set("filter[matches.status][eq]", "finished")
	q.Set("filter[matches.game_version][eq]", gameVersionCS2)
	q.Set("page[limit]", fmt.Sprint(pageLimit))
	q.Set("sort", "-end_date")

	var resp apiResponse
	if err := a.client.GetJSON(ctx, "/matches", q, &resp); err != nil {
		a.client.ReportFailure("results", err)
		return nil
	}
	a.client.ReportSuccess()

	out := make([]models.Match, 0, len(resp.Results))
	for _, m := range resp.Results {
		match := a.toMatch(m, models.StatusFinished)
		result := resultFrom(m)
		if result == nil {
			// Sem vencedor identificável: partida não serve para liquidação.
			continue
		}
		if err := match.Finish(*result); err != nil {
			continue
		}
		out = append(out, match)
	}
	return out
}

// toMatch mapeia um registro do provedor para o formato canônico.
func (a *Adapter) toMatch(m apiMatch, status models.MatchStatus) models.Match {
	team1, team2 := a.resolveTeamNames(m)

	match := models.Match{
		ID:         fmt.Sprintf("bo3gg_%d", m.ID),
		Team1Name:  team1,
		Team2Name:  team2,
		Tournament: tournamentLabel(m.Tier),
		Tier:       tierFrom(m.Tier),
		Status:     status,
		Sources:    []models.SourceRef{{Name: sourceName, Confidence: confidence}},
		Confidence: confidence,
		UpdatedAt:  time.Now().UTC(),
	}
	if m.Team1 != nil {
		match.Team1Logo = m.Team1.ImageURL
	}
	if m.Team2 != nil {
		match.Team2Logo = m.Team2.ImageURL
	}
	if t, err := time.Parse(time.RFC3339, m.StartDate); err == nil {
		match.StartTime = t.UTC()
	}
	if m.Status == "cancelled" {
		match.Status = models.StatusCancelled
	}
	return match
}

// resultFrom extrai o resultado de uma partida finalizada do provedor.
func resultFrom(m apiMatch) *models.MatchResult {
	r := models.MatchResult{Score1: m.Team1Score, Score2: m.Team2Score}
	switch m.WinnerTeamID {
	case 0:
		return nil
	case m.Team1ID:
		r.Winner = models.WinnerTeam1
	case m.Team2ID:
		r.Winner = models.WinnerTeam2
	default:
		return nil
	}
	return &r
}

func tierFrom(t string) models.Tier {
	switch t {
	case "s", "a", "b", "c", "d":
		return models.Tier(t)
	}
	return models.TierUnknown
}

// O bo3.gg não expõe o nome do torneio no payload; inferimos o rótulo do tier.
func tournamentLabel(tier string) string {
	labels := map[string]string{
		"s": "S-Tier", "a": "A-Tier", "b": "B-Tier", "c": "C-Tier", "d": "D-Tier",
	}
	if l, ok := labels[tier]; ok {
		return l
	}
	return "CS2 Match"
}
