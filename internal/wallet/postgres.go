package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// InitialCredits é o saldo semeado na criação de uma carteira nova.
const InitialCredits = 10_000

var ErrInsufficientFunds = errors.New("insufficient funds")

// Postgres implementa operações de carteira em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetOrCreate retorna o saldo de um usuário, criando a carteira com o
// saldo inicial se não existir. Usa transação para garantir atomicidade.
func (p *Postgres) GetOrCreate(ctx context.Context, userID string) (balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT balance_credits FROM wallets WHERE user_id=$1`, userID).Scan(&bal)
	if err == sql.ErrNoRows {
		id := uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_credits, version) VALUES($1,$2,$3,1)`,
			id, userID, InitialCredits); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_credits, description) VALUES($1,'CREDIT',$2,'seed')`,
			id, InitialCredits); err != nil {
			return 0, err
		}
		bal = InitialCredits
	} else if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return bal, nil
}

// Adjust aplica um delta (positivo ou negativo) ao saldo do usuário e
// registra a operação no ledger. Garante lock pessimista na linha da
// carteira; débito que deixaria o saldo negativo retorna ErrInsufficientFunds.
func (p *Postgres) Adjust(ctx context.Context, userID string, delta int64, description string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_credits FROM wallets WHERE user_id=$1 FOR UPDATE`, userID,
	).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		// Primeira interação do usuário dentro de um débito: semeia e tenta de novo.
		walletID = uuid.NewString()
		balance = InitialCredits
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_credits, version) VALUES($1,$2,$3,1)`,
			walletID, userID, InitialCredits); err != nil {
			return 0, err
		}
		// O ledger precisa fechar com o saldo mesmo neste caminho.
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_credits, description) VALUES($1,'CREDIT',$2,'seed')`,
			walletID, InitialCredits); err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	if balance+delta < 0 {
		return 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_credits = balance_credits + $1, version = version + 1 WHERE id=$2`,
		delta, walletID); err != nil {
		return 0, err
	}

	op := "CREDIT"
	amount := delta
	if delta < 0 {
		op = "DEBIT"
		amount = -delta
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_credits, description) VALUES($1,$2,$3,$4)`,
		walletID, op, amount, description); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT balance_credits FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}
