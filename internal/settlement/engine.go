package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

var (
	betsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bets_settled_total",
		Help: "Apostas liquidadas por status final.",
	}, []string{"status"})

	settlementErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_errors_total",
		Help: "Erros por aposta durante passadas de liquidação.",
	})
)

// Ledger é a visão do engine sobre o repositório de apostas.
type Ledger interface {
	MatchIDsWithPending(ctx context.Context) ([]string, error)
	ListPendingByMatch(ctx context.Context, matchID string) ([]models.Bet, error)
	SettleIfPending(ctx context.Context, betID string, status models.BetStatus) (bool, error)
}

// Wallet aplica créditos de payout e estorno.
type Wallet interface {
	Adjust(ctx context.Context, userID string, delta int64, description string) (int64, error)
}

// Matches fornece o estado canônico das partidas.
type Matches interface {
	Get(ctx context.Context, id string) (models.Match, error)
}

// Publisher emite eventos de aposta liquidada.
type Publisher interface {
	Publish(ctx context.Context, e events.BetSettled) error
}

// Stats resume uma passada de liquidação.
type Stats struct {
	MatchesScanned int
	Won            int
	Lost           int
	Voided         int
	Errors         int
}

// Engine liquida apostas pendentes de partidas terminais. Não tem timer
// próprio: cada chamada de RunPass processa tudo que estiver elegível.
type Engine struct {
	ledger    Ledger
	wallet    Wallet
	matches   Matches
	publisher Publisher
	log       *zap.Logger
}

func NewEngine(l Ledger, w Wallet, m Matches, p Publisher, log *zap.Logger) *Engine {
	return &Engine{ledger: l, wallet: w, matches: m, publisher: p, log: log}
}

// RunPass varre as partidas com apostas pendentes e liquida as que já
// terminaram. Erros por aposta são isolados: contam em Stats.Errors e a
// passada continua. A aposta com erro permanece PENDING para a próxima.
func (e *Engine) RunPass(ctx context.Context) (Stats, error) {
	var stats Stats

	matchIDs, err := e.ledger.MatchIDsWithPending(ctx)
	if err != nil {
		return stats, fmt.Errorf("scan pending matches: %w", err)
	}

	for _, matchID := range matchIDs {
		match, err := e.matches.Get(ctx, matchID)
		if err != nil {
			e.log.Warn("partida com apostas pendentes não encontrada",
				zap.String("match_id", matchID), zap.Error(err))
			stats.Errors++
			settlementErrors.Inc()
			continue
		}
		if match.Status != models.StatusFinished && match.Status != models.StatusCancelled {
			continue
		}
		stats.MatchesScanned++

		bets, err := e.ledger.ListPendingByMatch(ctx, matchID)
		if err != nil {
			stats.Errors++
			settlementErrors.Inc()
			continue
		}
		for _, bet := range bets {
			if err := e.settleBet(ctx, match, bet, &stats); err != nil {
				e.log.Error("liquidação da aposta falhou",
					zap.String("bet_id", bet.ID), zap.Error(err))
				stats.Errors++
				settlementErrors.Inc()
			}
		}
	}
	return stats, nil
}

// settleBet decide o desfecho e aplica: CAS no ledger primeiro (garante
// no máximo um crédito), depois o ajuste de carteira e o evento.
func (e *Engine) settleBet(ctx context.Context, match models.Match, bet models.Bet, stats *Stats) error {
	status, credit := outcome(match, bet)

	ok, err := e.ledger.SettleIfPending(ctx, bet.ID, status)
	if err != nil {
		return fmt.Errorf("settle bet %s: %w", bet.ID, err)
	}
	if !ok {
		// Outra passada chegou primeiro; nada a creditar.
		return nil
	}

	if credit > 0 {
		desc := fmt.Sprintf("settlement:%s:%s", bet.ID, status)
		if _, err := e.wallet.Adjust(ctx, bet.UserID, credit, desc); err != nil {
			// A aposta já saiu de PENDING; o crédito precisa de intervenção.
			return fmt.Errorf("credit user %s for bet %s: %w", bet.UserID, bet.ID, err)
		}
	}

	switch status {
	case models.BetWon:
		stats.Won++
	case models.BetLost:
		stats.Lost++
	case models.BetVoid:
		stats.Voided++
	}
	betsSettled.WithLabelValues(string(status)).Inc()

	event := events.BetSettled{
		BetID:     bet.ID,
		UserID:    bet.UserID,
		MatchID:   bet.MatchID,
		Selection: string(bet.Selection),
		Status:    string(status),
		Stake:     bet.Stake,
		Payout:    credit,
		Ts:        time.Now().UTC(),
	}
	if match.Result != nil {
		event.Winner = string(match.Result.Winner)
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		// Evento é best-effort; a liquidação em si já está consistente.
		e.log.Warn("publicação de bet_settled falhou",
			zap.String("bet_id", bet.ID), zap.Error(err))
	}
	return nil
}

// outcome mapeia partida terminal + aposta em (status final, crédito).
// Cancelamento e empate anulam a aposta com estorno integral do stake.
func outcome(match models.Match, bet models.Bet) (models.BetStatus, int64) {
	if match.Status == models.StatusCancelled {
		return models.BetVoid, bet.Stake
	}
	if match.Result == nil || match.Result.Winner == models.WinnerDraw {
		return models.BetVoid, bet.Stake
	}
	if string(bet.Selection) == string(match.Result.Winner) {
		return models.BetWon, bet.PotentialPayout
	}
	return models.BetLost, 0
}
