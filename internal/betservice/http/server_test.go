package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/betservice/dto"
	"github.com/radieske/cs2-bet-platform/internal/matchstore"
	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/internal/wallet"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

type fakeMatches struct{ matches map[string]models.Match }

func (f *fakeMatches) Get(_ context.Context, id string) (models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return models.Match{}, matchstore.ErrNotFound
	}
	return m, nil
}

func (f *fakeMatches) ListVisible(context.Context) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.matches {
		if m.Status == models.StatusScheduled || m.Status == models.StatusLive {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeLedger struct {
	inserted []models.Bet
	byUser   map[string][]models.Bet
}

func (f *fakeLedger) InsertPending(_ context.Context, b *models.Bet) error {
	b.ID = "bet-1"
	b.Status = models.BetPending
	b.PotentialPayout = models.PayoutFor(b.Stake, b.OddsAtPlacement)
	b.PlacedAt = time.Now()
	f.inserted = append(f.inserted, *b)
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]models.Bet, error) {
	return f.byUser[userID], nil
}

type fakeWallet struct{ balances map[string]int64 }

func (f *fakeWallet) GetOrCreate(_ context.Context, userID string) (int64, error) {
	if _, ok := f.balances[userID]; !ok {
		f.balances[userID] = wallet.InitialCredits
	}
	return f.balances[userID], nil
}

func (f *fakeWallet) Adjust(_ context.Context, userID string, delta int64, _ string) (int64, error) {
	bal, _ := f.GetOrCreate(context.Background(), userID)
	if bal+delta < 0 {
		return 0, wallet.ErrInsufficientFunds
	}
	f.balances[userID] = bal + delta
	return f.balances[userID], nil
}

type fakePublisher struct{ published []events.BetPlaced }

func (f *fakePublisher) PublishBetPlaced(_ context.Context, e events.BetPlaced) error {
	f.published = append(f.published, e)
	return nil
}

func bettableMatch(id string) models.Match {
	o1, o2 := 2.5, 1.55
	return models.Match{
		ID: id, Team1Name: "NAVI", Team2Name: "FaZe Clan",
		Status: models.StatusScheduled,
		Odds:   models.Odds{Team1: &o1, Team2: &o2},
	}
}

func newTestServer(matches *fakeMatches) (*Server, *fakeLedger, *fakeWallet, *fakePublisher) {
	ledger := &fakeLedger{byUser: make(map[string][]models.Bet)}
	w := &fakeWallet{balances: make(map[string]int64)}
	pub := &fakePublisher{}
	return NewServer(zap.NewNop(), matches, ledger, w, pub, nil), ledger, w, pub
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPlaceBetHappyPath(t *testing.T) {
	matches := &fakeMatches{matches: map[string]models.Match{"m1": bettableMatch("m1")}}
	srv, ledger, w, pub := newTestServer(matches)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
		UserID: "u1", MatchID: "m1", Selection: "team1", Stake: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PlaceBetResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(wallet.InitialCredits-100), resp.Balance)
	assert.Equal(t, models.BetPending, resp.Bet.Status)
	// Odd congelada no momento da aposta, payout calculado uma vez.
	assert.Equal(t, 2.5, resp.Bet.OddsAtPlacement)
	assert.Equal(t, int64(250), resp.Bet.PotentialPayout)

	require.Len(t, ledger.inserted, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "bet-1", pub.published[0].BetID)
	assert.Equal(t, int64(wallet.InitialCredits-100), w.balances["u1"])
}

func TestPlaceBetInsufficientBalance(t *testing.T) {
	matches := &fakeMatches{matches: map[string]models.Match{"m1": bettableMatch("m1")}}
	srv, ledger, w, _ := newTestServer(matches)
	w.balances["u1"] = 50
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
		UserID: "u1", MatchID: "m1", Selection: "team1", Stake: 100,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dto.ErrCodeInsufficientBalance, resp.Error)
	// Saldo intocado e nenhuma aposta criada.
	assert.Equal(t, int64(50), w.balances["u1"])
	assert.Empty(t, ledger.inserted)
}

func TestPlaceBetValidation(t *testing.T) {
	matches := &fakeMatches{matches: map[string]models.Match{"m1": bettableMatch("m1")}}
	srv, _, _, _ := newTestServer(matches)
	router := srv.Router()

	cases := []struct {
		name     string
		req      dto.PlaceBetRequest
		wantCode int
		wantErr  string
	}{
		{"stake zero", dto.PlaceBetRequest{UserID: "u1", MatchID: "m1", Selection: "team1"},
			http.StatusBadRequest, dto.ErrCodeInvalidStake},
		{"stake negativo", dto.PlaceBetRequest{UserID: "u1", MatchID: "m1", Selection: "team1", Stake: -5},
			http.StatusBadRequest, dto.ErrCodeInvalidStake},
		{"selecao invalida", dto.PlaceBetRequest{UserID: "u1", MatchID: "m1", Selection: "draw", Stake: 10},
			http.StatusBadRequest, dto.ErrCodeInvalidSelection},
		{"partida inexistente", dto.PlaceBetRequest{UserID: "u1", MatchID: "nope", Selection: "team1", Stake: 10},
			http.StatusNotFound, dto.ErrCodeMatchNotFound},
		{"sem usuario", dto.PlaceBetRequest{MatchID: "m1", Selection: "team1", Stake: 10},
			http.StatusBadRequest, dto.ErrCodeInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/v1/bets", tc.req)
			assert.Equal(t, tc.wantCode, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.wantErr, resp.Error)
		})
	}
}

func TestPlaceBetOnFinishedMatch(t *testing.T) {
	finished := bettableMatch("m1")
	_ = finished.Finish(models.MatchResult{Winner: models.WinnerTeam1, Score1: 2, Score2: 0})
	matches := &fakeMatches{matches: map[string]models.Match{"m1": finished}}
	srv, _, _, _ := newTestServer(matches)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
		UserID: "u1", MatchID: "m1", Selection: "team1", Stake: 10,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dto.ErrCodeMatchNotBettable, resp.Error)
}

func TestPlaceBetOnLiveMatch(t *testing.T) {
	live := bettableMatch("m1")
	live.Status = models.StatusLive
	matches := &fakeMatches{matches: map[string]models.Match{"m1": live}}
	srv, ledger, w, _ := newTestServer(matches)
	w.balances["u1"] = wallet.InitialCredits

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
		UserID: "u1", MatchID: "m1", Selection: "team1", Stake: 10,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dto.ErrCodeMatchNotBettable, resp.Error)
	// Partida ao vivo continua listável, mas a janela de aposta fechou:
	// nada debitado, nada inserido.
	assert.Equal(t, int64(wallet.InitialCredits), w.balances["u1"])
	assert.Empty(t, ledger.inserted)
}

func TestPlaceBetWithoutOdds(t *testing.T) {
	m := bettableMatch("m1")
	m.Odds = models.Odds{}
	matches := &fakeMatches{matches: map[string]models.Match{"m1": m}}
	srv, _, _, _ := newTestServer(matches)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
		UserID: "u1", MatchID: "m1", Selection: "team2", Stake: 10,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dto.ErrCodeOddsUnavailable, resp.Error)
}

func TestGetBalanceSeedsNewUser(t *testing.T) {
	srv, _, _, _ := newTestServer(&fakeMatches{matches: map[string]models.Match{}})

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/balance?userId=novo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BalanceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(wallet.InitialCredits), resp.Balance)

	rec = doJSON(t, srv.Router(), http.MethodGet, "/v1/balance", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMatchesAndGet(t *testing.T) {
	matches := &fakeMatches{matches: map[string]models.Match{"m1": bettableMatch("m1")}}
	srv, _, _, _ := newTestServer(matches)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/v1/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Match
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "m1", list[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/v1/matches/m1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/matches/outra", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBetsByUser(t *testing.T) {
	srv, ledger, _, _ := newTestServer(&fakeMatches{matches: map[string]models.Match{}})
	ledger.byUser["u1"] = []models.Bet{{ID: "b1", UserID: "u1", Status: models.BetWon}}

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/bets?userId=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bets []models.Bet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bets))
	require.Len(t, bets, 1)
	assert.Equal(t, models.BetWon, bets[0].Status)

	// Usuário sem apostas recebe lista vazia, não null.
	rec = doJSON(t, srv.Router(), http.MethodGet, "/v1/bets?userId=u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
