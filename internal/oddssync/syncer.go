package oddssync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/adapters"
	"github.com/radieske/cs2-bet-platform/internal/betservice/ws"
	"github.com/radieske/cs2-bet-platform/internal/models"
	"github.com/radieske/cs2-bet-platform/internal/oddscache"
	"github.com/radieske/cs2-bet-platform/internal/resolver"
	sharedkafka "github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

var (
	syncPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_sync_passes_total",
		Help: "Passadas de sincronização de odds executadas.",
	})
	matchesSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "odds_sync_matches_total",
		Help: "Partidas canônicas gravadas por passada.",
	})
	staleFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "odds_sync_stale_fallbacks_total",
		Help: "Vezes em que o cache velho substituiu um provedor fora do ar.",
	}, []string{"adapter"})
	cacheServes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "odds_sync_cache_serves_total",
		Help: "Passadas atendidas pelo cache fresco sem consultar o provedor.",
	}, []string{"adapter"})
)

// Store é a visão do syncer sobre a persistência de partidas.
type Store interface {
	Upsert(ctx context.Context, m models.Match) error
}

// Syncer executa o ciclo coleta -> resolução -> persistência -> publicação.
// Cache-first: um lote ainda fresco (mais novo que maxAge) dispensa a ida
// ao provedor; cada provedor que falhar é substituído pelo último lote
// bom do cache, qualquer idade.
type Syncer struct {
	adapters []adapters.Adapter
	resolver *resolver.Resolver
	store    Store
	cache    *oddscache.Cache
	writer   *sharedkafka.Writer
	rdb      *redis.Client
	channel  string
	maxAge   time.Duration
	log      *zap.Logger
}

func New(adps []adapters.Adapter, res *resolver.Resolver, store Store,
	cache *oddscache.Cache, maxAge time.Duration, writer *sharedkafka.Writer,
	rdb *redis.Client, channel string, log *zap.Logger) *Syncer {
	return &Syncer{
		adapters: adps, resolver: res, store: store, cache: cache,
		maxAge: maxAge, writer: writer, rdb: rdb, channel: channel, log: log,
	}
}

// RunPass coleta de todos os provedores em paralelo, resolve a lista
// canônica e propaga: Postgres, Kafka e o canal de broadcast do Redis.
func (s *Syncer) RunPass(ctx context.Context) error {
	syncPasses.Inc()

	batches := s.collect(ctx)
	resolved := s.resolver.Resolve(batches...)

	for _, match := range resolved {
		if err := s.store.Upsert(ctx, match); err != nil {
			s.log.Error("upsert da partida falhou",
				zap.String("match_id", match.ID), zap.Error(err))
			continue
		}
		matchesSynced.Inc()
		s.publish(ctx, match)
	}

	s.log.Info("passada de sincronização concluída",
		zap.Int("providers", len(s.adapters)),
		zap.Int("matches", len(resolved)))
	return nil
}

// collect busca upcoming e results de cada adapter em paralelo. Lote em
// cache ainda fresco evita a ida ao provedor; provedor fora do ar cai
// para o último lote bom, qualquer idade.
func (s *Syncer) collect(ctx context.Context) [][]models.Match {
	var (
		mu      sync.Mutex
		batches [][]models.Match
		wg      sync.WaitGroup
	)
	for _, a := range s.adapters {
		wg.Add(1)
		go func(a adapters.Adapter) {
			defer wg.Done()
			batch := s.freshBatch(ctx, a.Name())
			if batch == nil {
				batch = a.FetchUpcoming(ctx)
				batch = append(batch, a.FetchResults(ctx)...)
				if len(batch) == 0 {
					batch = s.staleBatch(ctx, a.Name())
				} else {
					s.cacheBatch(ctx, a.Name(), batch)
				}
			}
			mu.Lock()
			batches = append(batches, batch)
			mu.Unlock()
		}(a)
	}
	wg.Wait()
	return batches
}

func providerKey(name string) string { return "provider:" + name + ":batch" }

// freshBatch devolve o lote em cache se ainda estiver dentro de maxAge.
// maxAge <= 0 desabilita o caminho cache-first.
func (s *Syncer) freshBatch(ctx context.Context, name string) []models.Match {
	if s.maxAge <= 0 {
		return nil
	}
	entry, err := s.cache.Get(ctx, providerKey(name), s.maxAge)
	if err != nil {
		return nil
	}
	var batch []models.Match
	if err := json.Unmarshal(entry.Payload, &batch); err != nil {
		return nil
	}
	cacheServes.WithLabelValues(name).Inc()
	return batch
}

func (s *Syncer) cacheBatch(ctx context.Context, name string, batch []models.Match) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, providerKey(name), payload); err != nil {
		s.log.Warn("cache do lote do provedor falhou",
			zap.String("adapter", name), zap.Error(err))
	}
}

func (s *Syncer) staleBatch(ctx context.Context, name string) []models.Match {
	entry, err := s.cache.GetStale(ctx, providerKey(name))
	if err != nil {
		return nil
	}
	var batch []models.Match
	if err := json.Unmarshal(entry.Payload, &batch); err != nil {
		return nil
	}
	staleFallbacks.WithLabelValues(name).Inc()
	s.log.Warn("provedor fora do ar; usando lote em cache",
		zap.String("adapter", name),
		zap.Duration("age", entry.Age(time.Now())))
	return batch
}

// publish emite o evento match_updated no Kafka e o broadcast no Redis
// para os clientes WebSocket. Ambos são best-effort.
func (s *Syncer) publish(ctx context.Context, m models.Match) {
	event := events.MatchUpdated{
		MatchID:    m.ID,
		Team1:      m.Team1Name,
		Team2:      m.Team2Name,
		Tournament: m.Tournament,
		Tier:       string(m.Tier),
		Status:     string(m.Status),
		Odds:       events.MatchOdds{Team1: m.Odds.Team1, Team2: m.Odds.Team2},
		Sources:    m.SourceNames(),
		Confidence: m.Confidence,
		StartTime:  m.StartTime,
		UpdatedAt:  m.UpdatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if s.writer != nil {
		if err := sharedkafka.WriteJSON(ctx, s.writer, m.ID, payload); err != nil {
			s.log.Warn("publicação de match_updated falhou",
				zap.String("match_id", m.ID), zap.Error(err))
		}
	}

	if s.rdb != nil {
		broadcast, err := json.Marshal(ws.MatchUpdate{MatchID: m.ID, Payload: event})
		if err != nil {
			return
		}
		if err := s.rdb.Publish(ctx, s.channel, broadcast).Err(); err != nil {
			s.log.Warn("broadcast no Redis falhou",
				zap.String("match_id", m.ID), zap.Error(err))
		}
	}
}
