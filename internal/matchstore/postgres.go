package matchstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/radieske/cs2-bet-platform/internal/models"
)

var ErrNotFound = errors.New("match not found")

// Postgres persiste o estado canônico das partidas
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Upsert insere ou atualiza uma partida. Partidas finalizadas são
// imutáveis: o UPDATE não se aplica quando a linha já está 'finished'.
func (p *Postgres) Upsert(ctx context.Context, m models.Match) error {
	sources, err := json.Marshal(m.Sources)
	if err != nil {
		return err
	}

	var winner sql.NullString
	var score1, score2 sql.NullInt32
	if m.Result != nil {
		winner = sql.NullString{String: string(m.Result.Winner), Valid: true}
		score1 = sql.NullInt32{Int32: int32(m.Result.Score1), Valid: true}
		score2 = sql.NullInt32{Int32: int32(m.Result.Score2), Valid: true}
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO matches (id, team1_name, team2_name, team1_logo, team2_logo,
			tournament, tier, start_time, status, winner, score1, score2,
			odds_team1, odds_team2, sources, confidence, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			team1_name = EXCLUDED.team1_name,
			team2_name = EXCLUDED.team2_name,
			team1_logo = EXCLUDED.team1_logo,
			team2_logo = EXCLUDED.team2_logo,
			tournament = EXCLUDED.tournament,
			tier       = EXCLUDED.tier,
			start_time = EXCLUDED.start_time,
			status     = EXCLUDED.status,
			winner     = EXCLUDED.winner,
			score1     = EXCLUDED.score1,
			score2     = EXCLUDED.score2,
			odds_team1 = EXCLUDED.odds_team1,
			odds_team2 = EXCLUDED.odds_team2,
			sources    = EXCLUDED.sources,
			confidence = EXCLUDED.confidence,
			updated_at = EXCLUDED.updated_at
		WHERE matches.status <> 'finished'`,
		m.ID, m.Team1Name, m.Team2Name, m.Team1Logo, m.Team2Logo,
		m.Tournament, string(m.Tier), m.StartTime, string(m.Status),
		winner, score1, score2,
		m.Odds.Team1, m.Odds.Team2, sources, m.Confidence, m.UpdatedAt,
	)
	return err
}

// Get retorna uma partida pelo ID canônico
func (p *Postgres) Get(ctx context.Context, id string) (models.Match, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+` FROM matches WHERE id=$1`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrNotFound
	}
	return m, err
}

// ListVisible retorna partidas apostáveis (agendadas ou ao vivo),
// ordenadas por tier e horário de início
func (p *Postgres) ListVisible(ctx context.Context) ([]models.Match, error) {
	// Ordenação por prioridade de tier (s > a > ... > unknown), não lexical.
	rows, err := p.db.QueryContext(ctx, selectColumns+`
		FROM matches
		WHERE status IN ('scheduled','live')
		ORDER BY array_position(ARRAY['s','a','b','c','d','unknown'], tier), start_time, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, team1_name, team2_name, team1_logo, team2_logo, tournament,
		tier, start_time, status, winner, score1, score2,
		odds_team1, odds_team2, sources, confidence, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanMatch(s scanner) (models.Match, error) {
	var (
		m       models.Match
		tier    string
		status  string
		winner  sql.NullString
		score1  sql.NullInt32
		score2  sql.NullInt32
		odds1   sql.NullFloat64
		odds2   sql.NullFloat64
		sources []byte
	)
	err := s.Scan(&m.ID, &m.Team1Name, &m.Team2Name, &m.Team1Logo, &m.Team2Logo,
		&m.Tournament, &tier, &m.StartTime, &status, &winner, &score1, &score2,
		&odds1, &odds2, &sources, &m.Confidence, &m.UpdatedAt)
	if err != nil {
		return models.Match{}, err
	}
	m.Tier = models.Tier(tier)
	m.Status = models.MatchStatus(status)
	if winner.Valid {
		m.Result = &models.MatchResult{
			Winner: models.Winner(winner.String),
			Score1: int(score1.Int32),
			Score2: int(score2.Int32),
		}
	}
	if odds1.Valid {
		m.Odds.Team1 = &odds1.Float64
	}
	if odds2.Valid {
		m.Odds.Team2 = &odds2.Float64
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &m.Sources); err != nil {
			return models.Match{}, err
		}
	}
	return m, nil
}
