package betledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/cs2-bet-platform/internal/models"
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// InsertPending insere uma nova aposta PENDING com odds congeladas e
// payout potencial calculado uma única vez no momento da aposta.
func (p *Postgres) InsertPending(ctx context.Context, b *models.Bet) error {
	b.ID = uuid.NewString()
	b.Status = models.BetPending
	b.PotentialPayout = models.PayoutFor(b.Stake, b.OddsAtPlacement)
	b.PlacedAt = time.Now().UTC()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, match_id, selection, stake_credits,
			odds_at_placement, potential_payout, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'PENDING',$8)`,
		b.ID, b.UserID, b.MatchID, string(b.Selection), b.Stake,
		b.OddsAtPlacement, b.PotentialPayout, b.PlacedAt,
	)
	return err
}

// ListByUser retorna as apostas de um usuário, mais recentes primeiro
func (p *Postgres) ListByUser(ctx context.Context, userID string) ([]models.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, match_id, selection, stake_credits,
			odds_at_placement, potential_payout, status, placed_at, settled_at
		FROM bets WHERE user_id=$1
		ORDER BY placed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bet
	for rows.Next() {
		var (
			b         models.Bet
			selection string
			status    string
			settledAt sql.NullTime
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &selection, &b.Stake,
			&b.OddsAtPlacement, &b.PotentialPayout, &status, &b.PlacedAt, &settledAt); err != nil {
			return nil, err
		}
		b.Selection = models.Selection(selection)
		b.Status = models.BetStatus(status)
		if settledAt.Valid {
			t := settledAt.Time
			b.SettledAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListPendingByMatch retorna as apostas pendentes de uma partida
func (p *Postgres) ListPendingByMatch(ctx context.Context, matchID string) ([]models.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, match_id, selection, stake_credits,
			odds_at_placement, potential_payout, status, placed_at
		FROM bets WHERE match_id=$1 AND status='PENDING'
		ORDER BY placed_at`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bet
	for rows.Next() {
		var (
			b         models.Bet
			selection string
			status    string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &selection, &b.Stake,
			&b.OddsAtPlacement, &b.PotentialPayout, &status, &b.PlacedAt); err != nil {
			return nil, err
		}
		b.Selection = models.Selection(selection)
		b.Status = models.BetStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

// MatchIDsWithPending retorna os IDs de partidas com apostas pendentes
func (p *Postgres) MatchIDsWithPending(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT DISTINCT match_id FROM bets WHERE status='PENDING'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SettleIfPending muda o status de uma aposta de PENDING para o status
// final via compare-and-set. Retorna false se a aposta já foi liquidada
// por outro passe, garantindo crédito no máximo uma vez.
func (p *Postgres) SettleIfPending(ctx context.Context, betID string, status models.BetStatus) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status=$2, settled_at=NOW()
		WHERE id=$1 AND status='PENDING'`,
		betID, string(status))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
