package oddscache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS odds_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);`

// SQLiteTier persiste entradas em um arquivo SQLite local. Alternativa à
// camada Redis para rodar o pipeline sem infraestrutura externa.
type SQLiteTier struct {
	db *sql.DB
}

func NewSQLiteTier(path string) (*SQLiteTier, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite não suporta escritas concorrentes na mesma conexão.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteTier{db: db}, nil
}

func (t *SQLiteTier) Close() error { return t.db.Close() }

func (t *SQLiteTier) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		payload []byte
		fetched int64
	)
	err := t.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM odds_cache WHERE key = ?`, key,
	).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Payload: payload, FetchedAt: time.UnixMilli(fetched).UTC()}, true, nil
}

func (t *SQLiteTier) Set(ctx context.Context, key string, e Entry) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO odds_cache (key, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, []byte(e.Payload), e.FetchedAt.UnixMilli())
	return err
}
