package oddscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrMiss indica ausência de entrada utilizável no cache.
var ErrMiss = errors.New("oddscache: miss")

// Entry é o valor armazenado: payload opaco mais o instante da coleta.
// A idade é avaliada na leitura, nunca na escrita.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Age retorna a idade da entrada em relação a now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Tier é um nível de armazenamento do cache (memória, Redis ou SQLite).
type Tier interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
}

// Cache em duas camadas: memória primeiro, camada persistente depois.
// Escritas passam pelas duas; leituras promovem acertos persistentes
// para a memória.
type Cache struct {
	mem        *MemoryTier
	persistent Tier
	log        *zap.Logger
	now        func() time.Time
}

func New(mem *MemoryTier, persistent Tier, log *zap.Logger) *Cache {
	return &Cache{mem: mem, persistent: persistent, log: log, now: time.Now}
}

// Get retorna a entrada sob key se a idade não exceder maxAge.
// maxAge <= 0 aceita qualquer idade.
func (c *Cache) Get(ctx context.Context, key string, maxAge time.Duration) (Entry, error) {
	if e, ok, _ := c.mem.Get(ctx, key); ok && c.fresh(e, maxAge) {
		return e, nil
	}
	if c.persistent == nil {
		return Entry{}, ErrMiss
	}
	e, ok, err := c.persistent.Get(ctx, key)
	if err != nil {
		c.log.Warn("leitura da camada persistente falhou",
			zap.String("key", key), zap.Error(err))
		return Entry{}, ErrMiss
	}
	if !ok || !c.fresh(e, maxAge) {
		return Entry{}, ErrMiss
	}
	_ = c.mem.Set(ctx, key, e)
	return e, nil
}

// GetStale retorna a entrada sob key independente da idade. Usado como
// fallback quando o provedor de origem está fora do ar.
func (c *Cache) GetStale(ctx context.Context, key string) (Entry, error) {
	return c.Get(ctx, key, 0)
}

// Set grava a entrada nas duas camadas. Falha persistente não invalida
// a escrita em memória.
func (c *Cache) Set(ctx context.Context, key string, payload json.RawMessage) error {
	e := Entry{Payload: payload, FetchedAt: c.now().UTC()}
	if err := c.mem.Set(ctx, key, e); err != nil {
		return err
	}
	if c.persistent == nil {
		return nil
	}
	if err := c.persistent.Set(ctx, key, e); err != nil {
		c.log.Warn("escrita na camada persistente falhou",
			zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *Cache) fresh(e Entry, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return e.Age(c.now()) <= maxAge
}
