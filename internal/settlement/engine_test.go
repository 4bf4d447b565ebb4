package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

type fakeLedger struct {
	bets       map[string][]models.Bet // matchID -> pendentes
	settled    map[string]models.BetStatus
	settleErr  error
	settleFail map[string]bool // betID -> CAS retorna false
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		bets:       make(map[string][]models.Bet),
		settled:    make(map[string]models.BetStatus),
		settleFail: make(map[string]bool),
	}
}

func (f *fakeLedger) MatchIDsWithPending(context.Context) ([]string, error) {
	var ids []string
	for id := range f.bets {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeLedger) ListPendingByMatch(_ context.Context, matchID string) ([]models.Bet, error) {
	return f.bets[matchID], nil
}

func (f *fakeLedger) SettleIfPending(_ context.Context, betID string, status models.BetStatus) (bool, error) {
	if f.settleErr != nil {
		return false, f.settleErr
	}
	if f.settleFail[betID] {
		return false, nil
	}
	if _, done := f.settled[betID]; done {
		return false, nil
	}
	f.settled[betID] = status
	return true, nil
}

type fakeWallet struct {
	balances  map[string]int64
	adjustErr error
}

func newFakeWallet() *fakeWallet { return &fakeWallet{balances: make(map[string]int64)} }

func (f *fakeWallet) Adjust(_ context.Context, userID string, delta int64, _ string) (int64, error) {
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	f.balances[userID] += delta
	return f.balances[userID], nil
}

type fakeMatches struct{ matches map[string]models.Match }

func (f *fakeMatches) Get(_ context.Context, id string) (models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return models.Match{}, errors.New("not found")
	}
	return m, nil
}

type fakePublisher struct {
	published []events.BetSettled
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, e events.BetSettled) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

func finishedMatch(id string, winner models.Winner) models.Match {
	m := models.Match{ID: id, Team1Name: "A", Team2Name: "B", StartTime: time.Now()}
	_ = m.Finish(models.MatchResult{Winner: winner, Score1: 2, Score2: 1})
	return m
}

func pendingBet(id, userID, matchID string, sel models.Selection, stake int64, odds float64) models.Bet {
	return models.Bet{
		ID: id, UserID: userID, MatchID: matchID, Selection: sel,
		Stake: stake, OddsAtPlacement: odds,
		PotentialPayout: models.PayoutFor(stake, odds),
		Status:          models.BetPending,
	}
}

func newTestEngine(l *fakeLedger, w *fakeWallet, m *fakeMatches, p *fakePublisher) *Engine {
	return NewEngine(l, w, m, p, zap.NewNop())
}

func TestWonBetCreditsPotentialPayout(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	pub := &fakePublisher{}
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerTeam1),
	}}

	// Fluxo da jornada completa: 1000 -> aposta 100 @ 2.5 -> 900 em carteira.
	wallet.balances["u1"] = 900
	bet := pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.5)
	require.Equal(t, int64(250), bet.PotentialPayout)
	ledger.bets["m1"] = []models.Bet{bet}

	stats, err := newTestEngine(ledger, wallet, matches, pub).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Won)
	assert.Equal(t, int64(1150), wallet.balances["u1"])
	assert.Equal(t, models.BetWon, ledger.settled["b1"])

	require.Len(t, pub.published, 1)
	assert.Equal(t, "WON", pub.published[0].Status)
	assert.Equal(t, int64(250), pub.published[0].Payout)
	assert.Equal(t, "team1", pub.published[0].Winner)
}

func TestLostBetCreditsNothing(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerTeam2),
	}}
	wallet.balances["u1"] = 900
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.5)}

	stats, err := newTestEngine(ledger, wallet, matches, &fakePublisher{}).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Lost)
	assert.Equal(t, int64(900), wallet.balances["u1"])
	assert.Equal(t, models.BetLost, ledger.settled["b1"])
}

func TestCancelledMatchRefundsStake(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": {ID: "m1", Status: models.StatusCancelled},
	}}
	wallet.balances["u1"] = 900
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam2, 100, 3.0)}

	stats, err := newTestEngine(ledger, wallet, matches, &fakePublisher{}).RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Voided)
	// Estorno do stake, não do payout potencial.
	assert.Equal(t, int64(1000), wallet.balances["u1"])
	assert.Equal(t, models.BetVoid, ledger.settled["b1"])
}

func TestDrawVoidsBet(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerDraw),
	}}
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 50, 2.0)}

	stats, err := newTestEngine(ledger, wallet, matches, &fakePublisher{}).RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Voided)
	assert.Equal(t, int64(50), wallet.balances["u1"])
}

func TestScheduledMatchIsSkipped(t *testing.T) {
	ledger := newFakeLedger()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": {ID: "m1", Status: models.StatusScheduled},
	}}
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.0)}

	stats, err := newTestEngine(ledger, newFakeWallet(), matches, &fakePublisher{}).RunPass(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Won+stats.Lost+stats.Voided)
	assert.Empty(t, ledger.settled)
}

func TestCASLostMeansNoCredit(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerTeam1),
	}}
	// Outra passada já liquidou esta aposta.
	ledger.settleFail["b1"] = true
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.5)}

	stats, err := newTestEngine(ledger, wallet, matches, &fakePublisher{}).RunPass(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Won)
	assert.Zero(t, wallet.balances["u1"], "crédito aplicado no máximo uma vez")
}

func TestSecondPassIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerTeam1),
	}}
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.5)}
	engine := newTestEngine(ledger, wallet, matches, &fakePublisher{})

	_, err := engine.RunPass(context.Background())
	require.NoError(t, err)
	// A lista pendente do fake não muda, mas o CAS impede o segundo crédito.
	_, err = engine.RunPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(250), wallet.balances["u1"])
}

func TestPerBetErrorIsolation(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerTeam1),
		"m2": finishedMatch("m2", models.WinnerTeam2),
	}}
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.0)}
	ledger.bets["m2"] = []models.Bet{pendingBet("b2", "u2", "m2", models.SelectionTeam2, 100, 2.0)}

	// Crédito do vencedor falha; a outra partida ainda deve liquidar.
	wallet.adjustErr = errors.New("wallet down")

	stats, err := newTestEngine(ledger, wallet, matches, &fakePublisher{}).RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Errors)
	// Passada não aborta nas falhas.
	assert.Equal(t, 2, stats.MatchesScanned)
}

func TestPublishFailureDoesNotFailSettlement(t *testing.T) {
	ledger := newFakeLedger()
	wallet := newFakeWallet()
	matches := &fakeMatches{matches: map[string]models.Match{
		"m1": finishedMatch("m1", models.WinnerTeam1),
	}}
	ledger.bets["m1"] = []models.Bet{pendingBet("b1", "u1", "m1", models.SelectionTeam1, 100, 2.0)}

	stats, err := newTestEngine(ledger, wallet, matches, &fakePublisher{err: errors.New("kafka down")}).RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Won)
	assert.Zero(t, stats.Errors)
	assert.Equal(t, int64(200), wallet.balances["u1"])
}
