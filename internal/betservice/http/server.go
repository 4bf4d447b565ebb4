package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/betservice/dto"
	"github.com/radieske/cs2-bet-platform/internal/betservice/ws"
	"github.com/radieske/cs2-bet-platform/internal/matchstore"
	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/internal/wallet"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

// MatchStore é a visão do servidor sobre o estado das partidas.
type MatchStore interface {
	Get(ctx context.Context, id string) (models.Match, error)
	ListVisible(ctx context.Context) ([]models.Match, error)
}

// BetLedger persiste e consulta apostas.
type BetLedger interface {
	InsertPending(ctx context.Context, b *models.Bet) error
	ListByUser(ctx context.Context, userID string) ([]models.Bet, error)
}

// Wallet gerencia o saldo de créditos dos usuários.
type Wallet interface {
	GetOrCreate(ctx context.Context, userID string) (int64, error)
	Adjust(ctx context.Context, userID string, delta int64, description string) (int64, error)
}

// Publisher emite eventos bet_placed.
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

type Server struct {
	log     *zap.Logger
	matches MatchStore
	ledger  BetLedger
	wallet  Wallet
	publ    Publisher
	hub     *ws.Hub
}

func NewServer(log *zap.Logger, m MatchStore, l BetLedger, w Wallet, p Publisher, hub *ws.Hub) *Server {
	return &Server{log: log, matches: m, ledger: l, wallet: w, publ: p, hub: hub}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/matches", s.listMatches)
		r.Get("/matches/{id}", s.getMatch)
		r.Get("/bets", s.listBets)
		r.Post("/bets", s.placeBet)
		r.Get("/balance", s.getBalance)
	})
	if s.hub != nil {
		r.Get("/ws", s.hub.HandleWS)
	}
	return r
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.ListVisible(r.Context())
	if err != nil {
		s.internalError(w, "list matches", err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	match, err := s.matches.Get(r.Context(), id)
	if errors.Is(err, matchstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, dto.ErrCodeMatchNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get match", err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, dto.ErrCodeInvalidPayload)
		return
	}
	bets, err := s.ledger.ListByUser(r.Context(), userID)
	if err != nil {
		s.internalError(w, "list bets", err)
		return
	}
	if bets == nil {
		bets = []models.Bet{}
	}
	writeJSON(w, http.StatusOK, bets)
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, dto.ErrCodeInvalidPayload)
		return
	}
	balance, err := s.wallet.GetOrCreate(r.Context(), userID)
	if err != nil {
		s.internalError(w, "get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{UserID: userID, Balance: balance})
}

// placeBet valida a aposta contra o estado atual da partida, debita o
// stake e registra a aposta com a odd congelada. O débito vem antes da
// inserção; falha na inserção estorna o stake.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, dto.ErrCodeInvalidPayload)
		return
	}
	if req.UserID == "" || req.MatchID == "" {
		writeError(w, http.StatusBadRequest, dto.ErrCodeInvalidPayload)
		return
	}
	if req.Stake <= 0 {
		writeError(w, http.StatusBadRequest, dto.ErrCodeInvalidStake)
		return
	}
	selection := models.Selection(req.Selection)
	if !selection.Valid() {
		writeError(w, http.StatusBadRequest, dto.ErrCodeInvalidSelection)
		return
	}

	match, err := s.matches.Get(r.Context(), req.MatchID)
	if errors.Is(err, matchstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, dto.ErrCodeMatchNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get match", err)
		return
	}
	// Apostas só antes do início; partidas ao vivo aparecem na listagem
	// mas não aceitam mais apostas.
	if match.Status != models.StatusScheduled {
		writeError(w, http.StatusConflict, dto.ErrCodeMatchNotBettable)
		return
	}
	odds, ok := match.Odds.ForSelection(selection)
	if !ok {
		writeError(w, http.StatusConflict, dto.ErrCodeOddsUnavailable)
		return
	}

	balance, err := s.wallet.Adjust(r.Context(), req.UserID, -req.Stake, "bet:"+req.MatchID)
	if errors.Is(err, wallet.ErrInsufficientFunds) {
		writeError(w, http.StatusConflict, dto.ErrCodeInsufficientBalance)
		return
	}
	if err != nil {
		s.internalError(w, "debit stake", err)
		return
	}

	bet := models.Bet{
		UserID:          req.UserID,
		MatchID:         req.MatchID,
		Selection:       selection,
		Stake:           req.Stake,
		OddsAtPlacement: odds,
	}
	if err := s.ledger.InsertPending(r.Context(), &bet); err != nil {
		// Estorna o débito; a aposta nunca existiu.
		if _, rerr := s.wallet.Adjust(r.Context(), req.UserID, req.Stake, "bet_rollback:"+req.MatchID); rerr != nil {
			s.log.Error("estorno do stake falhou",
				zap.String("user_id", req.UserID), zap.Error(rerr))
		}
		s.internalError(w, "insert bet", err)
		return
	}

	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:           bet.ID,
		UserID:          bet.UserID,
		MatchID:         bet.MatchID,
		Selection:       string(bet.Selection),
		Stake:           bet.Stake,
		OddsAtPlacement: bet.OddsAtPlacement,
		PotentialPayout: bet.PotentialPayout,
		TsUnixMs:        time.Now().UnixMilli(),
	})

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{Bet: bet, Balance: balance})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, dto.ErrCodeInternal)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, dto.ErrorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
