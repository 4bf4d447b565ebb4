package pinnacle

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/adapters"
	"github.com/radieske/cs2-bet-platform/internal/models"
)

const (
	sourceName = "pinnacle"

	// Odds de casa de aposta real; fonte de odds mais confiável do pipeline.
	confidence = 0.95

	minRequestInterval = 2 * time.Second

	// ID do esport CS2 na API arcadia.
	sportID = "12"
)

// Adapter consome a API guest (arcadia) da Pinnacle. Fonte exclusiva de
// odds; não publica resultados utilizáveis para liquidação.
type Adapter struct {
	client *adapters.Client
}

func New(baseURL string, log *zap.Logger) *Adapter {
	return &Adapter{client: adapters.NewClient(sourceName, baseURL, minRequestInterval, log)}
}

func (a *Adapter) Name() string        { return sourceName }
func (a *Adapter) Confidence() float64 { return confidence }

// FetchUpcoming cruza os matchups com o mercado moneyline do período 0
// (partida inteira) e converte os preços americanos em odds decimais.
func (a *Adapter) FetchUpcoming(ctx context.Context) []models.Match {
	var matchups []apiMatchup
	if err := a.client.GetJSON(ctx, "/sports/"+sportID+"/matchups", nil, &matchups); err != nil {
		a.client.ReportFailure("matchups", err)
		return nil
	}

	var markets []apiMarket
	if err := a.client.GetJSON(ctx, "/sports/"+sportID+"/markets/straight", nil, &markets); err != nil {
		a.client.ReportFailure("markets", err)
		return nil
	}
	a.client.ReportSuccess()

	moneylines := make(map[int64]apiMarket, len(markets))
	for _, m := range markets {
		if m.Type == "moneyline" && m.Period == 0 {
			moneylines[m.MatchupID] = m
		}
	}

	out := make([]models.Match, 0, len(matchups))
	for _, mu := range matchups {
		if mu.Type != "" && mu.Type != "matchup" {
			continue
		}
		home, away, ok := participants(mu)
		if !ok || !isCS2League(mu.League) {
			continue
		}

		match := models.Match{
			ID:         "pinnacle_" + strconv.FormatInt(mu.ID, 10),
			Team1Name:  home.Name,
			Team2Name:  away.Name,
			Tier:       models.TierUnknown,
			Status:     models.StatusScheduled,
			Sources:    []models.SourceRef{{Name: sourceName, Confidence: confidence}},
			Confidence: confidence,
			UpdatedAt:  time.Now().UTC(),
		}
		if mu.League != nil {
			match.Tournament = mu.League.Name
		}
		if t, err := time.Parse(time.RFC3339, mu.StartTime); err == nil {
			match.StartTime = t.UTC()
		}
		if ml, found := moneylines[mu.ID]; found {
			_ = match.SetOdds(priceFor(ml, "home"), priceFor(ml, "away"))
		}
		out = append(out, match)
	}
	return out
}

// FetchResults não é suportado por esta fonte.
func (a *Adapter) FetchResults(ctx context.Context) []models.Match { return nil }

func participants(mu apiMatchup) (home, away apiParticipant, ok bool) {
	for _, p := range mu.Participants {
		switch p.Alignment {
		case "home":
			home = p
		case "away":
			away = p
		}
	}
	ok = home.Name != "" && away.Name != ""
	return
}

// A API agrupa todos os esports sob o mesmo sport; filtra ligas de CS.
func isCS2League(l *apiLeague) bool {
	if l == nil {
		return false
	}
	name := strings.ToLower(l.Name)
	return strings.Contains(name, "cs2") || strings.Contains(name, "counter-strike") ||
		strings.Contains(name, "cs:go")
}

// priceFor converte o preço americano da ponta pedida em odds decimais.
// Positivo: 1 + price/100. Negativo: 1 + 100/|price|.
func priceFor(m apiMarket, designation string) *float64 {
	for _, p := range m.Prices {
		if p.Designation != designation || p.Price == 0 {
			continue
		}
		var odds float64
		if p.Price > 0 {
			odds = 1 + float64(p.Price)/100
		} else {
			odds = 1 + 100/math.Abs(float64(p.Price))
		}
		odds = math.Round(odds*100) / 100
		if odds <= 1.0 {
			return nil
		}
		return &odds
	}
	return nil
}
