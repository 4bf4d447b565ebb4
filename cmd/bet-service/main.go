package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/betledger"
	bhttp "github.com/radieske/cs2-bet-platform/internal/betservice/http"
	"github.com/radieske/cs2-bet-platform/internal/betservice/producer"
	"github.com/radieske/cs2-bet-platform/internal/betservice/ws"
	"github.com/radieske/cs2-bet-platform/internal/matchstore"
	"github.com/radieske/cs2-bet-platform/internal/shared/cache"
	"github.com/radieske/cs2-bet-platform/internal/shared/config"
	"github.com/radieske/cs2-bet-platform/internal/shared/db"
	"github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/internal/shared/logger"
	"github.com/radieske/cs2-bet-platform/internal/shared/metrics"
	"github.com/radieske/cs2-bet-platform/internal/wallet"
)

func main() {
	cfg := config.Load("bet-service")
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

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hub WebSocket alimentado pelo canal de broadcast do Redis.
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)

	server := bhttp.NewServer(log,
		matchstore.NewPostgres(pg),
		betledger.NewPostgres(pg),
		wallet.NewPostgres(pg),
		producer.NewKafka(writer),
		hub,
	)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: server.Router()}
	go func() {
		log.Info("bet-service started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
