package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/adapters"
	"github.com/radieske/cs2-bet-platform/internal/adapters/bo3gg"
	"github.com/radieske/cs2-bet-platform/internal/adapters/hltv"
	"github.com/radieske/cs2-bet-platform/internal/adapters/pinnacle"
	"github.com/radieske/cs2-bet-platform/internal/matchstore"
	"github.com/radieske/cs2-bet-platform/internal/oddscache"
	"github.com/radieske/cs2-bet-platform/internal/oddssync"
	"github.com/radieske/cs2-bet-platform/internal/rankings"
	"github.com/radieske/cs2-bet-platform/internal/resolver"
	"github.com/radieske/cs2-bet-platform/internal/shared/cache"
	"github.com/radieske/cs2-bet-platform/internal/shared/config"
	"github.com/radieske/cs2-bet-platform/internal/shared/db"
	"github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/internal/shared/logger"
	"github.com/radieske/cs2-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load("odds-sync-service")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Camada persistente do cache de odds: Redis por padrão, SQLite para
	// rodar sem infraestrutura externa.
	var persistent oddscache.Tier
	switch cfg.CacheBackend {
	case "sqlite":
		tier, err := oddscache.NewSQLiteTier(cfg.CacheSQLitePath)
		if err != nil {
			log.Fatal("sqlite cache", zap.Error(err))
		}
		defer tier.Close()
		persistent = tier
	default:
		persistent = oddscache.NewRedisTier(rdb)
	}
	oddsCache := oddscache.New(oddscache.NewMemoryTier(oddscache.DefaultMaxEntries), persistent, log)

	table, err := rankings.Load(cfg.RankingsFile)
	if err != nil {
		log.Fatal("rankings load", zap.Error(err))
	}

	adps := []adapters.Adapter{
		bo3gg.New(cfg.Bo3ggBaseURL, table, log),
		hltv.New(cfg.HLTVBaseURL, log),
		pinnacle.New(cfg.PinnacleBaseURL, log),
	}

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchUpdated)
	defer writer.Close()

	syncer := oddssync.New(adps, resolver.New(table, log),
		matchstore.NewPostgres(pg), oddsCache, cfg.CacheMaxAge, writer, rdb, cfg.RedisPubSubChannel, log)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("odds-sync-service started",
		zap.Duration("interval", cfg.SyncInterval),
		zap.Int("adapters", len(adps)))

	// Primeira passada imediata; depois no intervalo configurado.
	if err := syncer.RunPass(ctx); err != nil {
		log.Error("sync pass", zap.Error(err))
	}
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
			if err := syncer.RunPass(ctx); err != nil {
				log.Error("sync pass", zap.Error(err))
			}
		}
	}
}
