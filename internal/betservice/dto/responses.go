package dto

import "github.com/radieske/cs2-bet-platform/internal/models"

// PlaceBetResponse devolve a aposta criada e o saldo já debitado
type PlaceBetResponse struct {
	Bet     models.Bet `json:"bet"`
	Balance int64      `json:"balance"`
}

// BalanceResponse é o corpo do GET /v1/balance
type BalanceResponse struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

// ErrorResponse carrega um código de erro estável para o cliente
type ErrorResponse struct {
	Error string `json:"error"`
}

// Códigos de erro retornados pela API de apostas
const (
	ErrCodeInvalidPayload      = "INVALID_PAYLOAD"
	ErrCodeInvalidStake        = "INVALID_STAKE"
	ErrCodeInvalidSelection    = "INVALID_SELECTION"
	ErrCodeMatchNotFound       = "MATCH_NOT_FOUND"
	ErrCodeMatchNotBettable    = "MATCH_NOT_BETTABLE"
	ErrCodeOddsUnavailable     = "ODDS_UNAVAILABLE"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInternal            = "INTERNAL"
)
