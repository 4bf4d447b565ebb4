package resolver

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/internal/rankings"
)

const (
	// Janela de agrupamento: partidas da mesma dupla de times com início
	// dentro do mesmo bloco de 30 minutos são tratadas como a mesma partida.
	groupWindow = 30 * time.Minute

	// Bônus de confiança quando fontes independentes concordam no favorito.
	agreementBoost = 0.05
	confidenceCap  = 0.99
)

// Resolver combina partidas vindas de múltiplas fontes em uma lista
// canônica, com odds mescladas por confiança e fallback por ranking.
type Resolver struct {
	rankings *rankings.Table
	log      *zap.Logger
}

func New(table *rankings.Table, log *zap.Logger) *Resolver {
	return &Resolver{rankings: table, log: log}
}

// Resolve agrupa e mescla as partidas. A saída é determinística para a
// mesma entrada: ordenada por tier e horário, com IDs canônicos estáveis.
func (r *Resolver) Resolve(batches ...[]models.Match) []models.Match {
	groups := make(map[string][]models.Match)
	for _, batch := range batches {
		for _, m := range batch {
			key := r.groupKey(m)
			groups[key] = append(groups[key], m)
		}
	}

	out := make([]models.Match, 0, len(groups))
	for key, group := range groups {
		merged := r.merge(group)
		merged.ID = key
		// Odds parciais (um lado só) são preservadas; o fallback por
		// ranking entra apenas quando nenhuma fonte publicou nada.
		if merged.Odds.Team1 == nil && merged.Odds.Team2 == nil {
			r.applyFallbackOdds(&merged)
		}
		out = append(out, merged)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier.Rank() != out[j].Tier.Rank() {
			return out[i].Tier.Rank() < out[j].Tier.Rank()
		}
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// groupKey é também o ID canônico da partida: dupla de times normalizada
// (ordem-insensível) mais o bloco de 30 minutos do horário de início.
func (r *Resolver) groupKey(m models.Match) string {
	t1 := slug(r.canonical(m.Team1Name))
	t2 := slug(r.canonical(m.Team2Name))
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	bucket := m.StartTime.UTC().Truncate(groupWindow)
	return fmt.Sprintf("%s_vs_%s_%s", t1, t2, bucket.Format("200601021504"))
}

func (r *Resolver) canonical(name string) string {
	if canon, ok := r.rankings.CanonicalName(name); ok {
		return canon
	}
	return rankings.Normalize(name)
}

func slug(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "-")
}

// merge combina um grupo de observações da mesma partida. Campos
// descritivos vêm da fonte de maior confiança; odds são média ponderada
// por confiança entre as fontes que as publicaram.
func (r *Resolver) merge(group []models.Match) models.Match {
	// Ordena por confiança decrescente, nome da fonte como desempate,
	// para que o merge seja determinístico.
	sort.Slice(group, func(i, j int) bool {
		if group[i].Confidence != group[j].Confidence {
			return group[i].Confidence > group[j].Confidence
		}
		return sourceName(group[i]) < sourceName(group[j])
	})

	base := group[0]
	merged := base
	merged.Sources = append([]models.SourceRef(nil), base.Sources...)

	for _, m := range group[1:] {
		merged.Sources = append(merged.Sources, m.Sources...)
		if m.Confidence > merged.Confidence {
			merged.Confidence = m.Confidence
		}
		// Preenche lacunas da fonte base com dados das demais.
		if merged.Tournament == "" {
			merged.Tournament = m.Tournament
		}
		if merged.Tier == models.TierUnknown && m.Tier != models.TierUnknown {
			merged.Tier = m.Tier
		}
		if merged.Team1Logo == "" {
			merged.Team1Logo = m.Team1Logo
		}
		if merged.Team2Logo == "" {
			merged.Team2Logo = m.Team2Logo
		}
		// Resultado e status terminal vencem sobre agendado.
		if m.Result != nil && merged.Result == nil {
			merged.Result = m.Result
			merged.Status = models.StatusFinished
		}
		if m.Status == models.StatusCancelled {
			merged.Status = models.StatusCancelled
		}
		if m.Status == models.StatusLive && merged.Status == models.StatusScheduled {
			merged.Status = models.StatusLive
		}
	}

	merged.Odds, merged.Confidence = r.mergeOdds(group, base, merged.Confidence)
	merged.UpdatedAt = time.Now().UTC()
	return merged
}

// mergeOdds faz a média ponderada por confiança das odds, cada ponta
// acumulada de forma independente: uma fonte que só publicou um lado
// ainda contribui para esse lado. Fontes com os times na orientação
// invertida têm as odds trocadas antes da média. Concordância no
// favorito entre fontes com os dois lados rende bônus de confiança.
func (r *Resolver) mergeOdds(group []models.Match, base models.Match, conf float64) (models.Odds, float64) {
	var (
		sum1, weight1 float64
		sum2, weight2 float64
		full          int
		favorites     = map[models.Selection]int{}
	)
	baseT1 := r.canonical(base.Team1Name)

	for _, m := range group {
		o1, o2 := m.Odds.Team1, m.Odds.Team2
		if r.canonical(m.Team1Name) != baseT1 {
			o1, o2 = o2, o1
		}
		w := m.Confidence
		if w <= 0 {
			w = 0.5
		}
		if o1 != nil {
			sum1 += *o1 * w
			weight1 += w
		}
		if o2 != nil {
			sum2 += *o2 * w
			weight2 += w
		}
		if o1 != nil && o2 != nil {
			full++
			if *o1 < *o2 {
				favorites[models.SelectionTeam1]++
			} else if *o2 < *o1 {
				favorites[models.SelectionTeam2]++
			}
		}
	}

	var odds models.Odds
	if weight1 > 0 {
		t1 := math.Round(sum1/weight1*100) / 100
		odds.Team1 = &t1
	}
	if weight2 > 0 {
		t2 := math.Round(sum2/weight2*100) / 100
		odds.Team2 = &t2
	}

	if full >= 2 {
		for _, n := range favorites {
			if n == full {
				conf = math.Min(conf+agreementBoost, confidenceCap)
				break
			}
		}
	}
	return odds, conf
}

// applyFallbackOdds deriva odds sintéticas da tabela de rankings quando
// nenhuma fonte publicou odds. Só se aplica a partidas ainda apostáveis.
func (r *Resolver) applyFallbackOdds(m *models.Match) {
	if m.Status != models.StatusScheduled && m.Status != models.StatusLive {
		return
	}
	o1, o2, conf := r.rankings.FallbackOdds(m.Team1Name, m.Team2Name)
	if err := m.SetOdds(&o1, &o2); err != nil {
		r.log.Warn("odds de fallback inválidas",
			zap.String("match_id", m.ID), zap.Error(err))
		return
	}
	if conf < m.Confidence {
		m.Confidence = conf
	}
	m.Sources = append(m.Sources, models.SourceRef{Name: "ranking_fallback", Confidence: conf})
}

func sourceName(m models.Match) string {
	if len(m.Sources) == 0 {
		return ""
	}
	return m.Sources[0].Name
}
