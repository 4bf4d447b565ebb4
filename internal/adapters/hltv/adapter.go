package hltv

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/adapters"
	"github.com/radieske/cs2-bet-platform/internal/models"
)

const (
	sourceName = "hltv"

	// Odds derivadas de probabilidade de vitória são menos confiáveis do
	// que odds de casa de aposta; confiança menor que a do bo3.gg.
	confidence = 0.80

	// HLTV bloqueia scraping agressivo; intervalo maior entre requests.
	minRequestInterval = 3 * time.Second

	fetchLimit = 50
)

// Adapter consome o endpoint JSON não-oficial do HLTV. Fonte de odds
// (via winProbability) e fonte secundária de resultados.
type Adapter struct {
	client *adapters.Client
}

func New(baseURL string, log *zap.Logger) *Adapter {
	return &Adapter{client: adapters.NewClient(sourceName, baseURL, minRequestInterval, log)}
}

func (a *Adapter) Name() string        { return sourceName }
func (a *Adapter) Confidence() float64 { return confidence }

// FetchUpcoming lista as próximas partidas com odds derivadas de winProbability.
func (a *Adapter) FetchUpcoming(ctx context.Context) []models.Match {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(fetchLimit))
	q.Set("offset", "0")

	var resp []apiMatch
	if err := a.client.GetJSON(ctx, "/matches", q, &resp); err != nil {
		a.client.ReportFailure("upcoming", err)
		return nil
	}
	a.client.ReportSuccess()

	out := make([]models.Match, 0, len(resp))
	for _, m := range resp {
		if m.Team1 == nil || m.Team2 == nil {
			continue
		}
		match := a.toMatch(m)
		if m.WinProbability != nil {
			// Converte probabilidade em odds decimais (odds = 1/p).
			_ = match.SetOdds(
				probToOdds(m.WinProbability.Team1),
				probToOdds(m.WinProbability.Team2),
			)
		}
		out = append(out, match)
	}
	return out
}

// FetchResults lista resultados recentes; o vencedor sai do placar.
func (a *Adapter) FetchResults(ctx context.Context) []models.Match {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(fetchLimit))

	var resp []apiResult
	if err := a.client.GetJSON(ctx, "/results", q, &resp); err != nil {
		a.client.ReportFailure("results", err)
		return nil
	}
	a.client.ReportSuccess()

	out := make([]models.Match, 0, len(resp))
	for _, r := range resp {
		if r.Team1 == nil || r.Team2 == nil || r.Result.Team1 == r.Result.Team2 {
			continue
		}
		match := models.Match{
			ID:         fmt.Sprintf("hltv_%d", r.ID),
			Team1Name:  r.Team1.Name,
			Team2Name:  r.Team2.Name,
			Tier:       models.TierUnknown,
			StartTime:  time.UnixMilli(r.Date).UTC(),
			Sources:    []models.SourceRef{{Name: sourceName, Confidence: confidence}},
			Confidence: confidence,
			UpdatedAt:  time.Now().UTC(),
		}
		if r.Event != nil {
			match.Tournament = r.Event.Name
		}
		winner := models.WinnerTeam1
		if r.Result.Team2 > r.Result.Team1 {
			winner = models.WinnerTeam2
		}
		if err := match.Finish(models.MatchResult{
			Winner: winner,
			Score1: r.Result.Team1,
			Score2: r.Result.Team2,
		}); err != nil {
			continue
		}
		out = append(out, match)
	}
	return out
}

func (a *Adapter) toMatch(m apiMatch) models.Match {
	match := models.Match{
		ID:         fmt.Sprintf("hltv_%d", m.ID),
		Team1Name:  m.Team1.Name,
		Team2Name:  m.Team2.Name,
		Team1Logo:  m.Team1.Logo,
		Team2Logo:  m.Team2.Logo,
		Tier:       models.TierUnknown,
		StartTime:  time.UnixMilli(m.Date).UTC(),
		Status:     models.StatusScheduled,
		Sources:    []models.SourceRef{{Name: sourceName, Confidence: confidence}},
		Confidence: confidence,
		UpdatedAt:  time.Now().UTC(),
	}
	if m.Event != nil {
		match.Tournament = m.Event.Name
	}
	if m.Live {
		match.Status = models.StatusLive
	}
	return match
}

// probToOdds converte percentual de vitória em odds decimais com 2 casas.
// Probabilidades fora de (0, 100) não geram odds válidas (>1.0).
func probToOdds(pct float64) *float64 {
	if pct <= 0 || pct >= 100 {
		return nil
	}
	odds := math.Round(100/pct*100) / 100
	if odds <= 1.0 {
		return nil
	}
	return &odds
}
