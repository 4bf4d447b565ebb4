package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/betledger"
	"github.com/radieske/cs2-bet-platform/internal/matchstore"
	"github.com/radieske/cs2-bet-platform/internal/settlement"
	"github.com/radieske/cs2-bet-platform/internal/shared/config"
	"github.com/radieske/cs2-bet-platform/internal/shared/db"
	"github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/internal/shared/logger"
	"github.com/radieske/cs2-bet-platform/internal/shared/metrics"
	"github.com/radieske/cs2-bet-platform/internal/wallet"
)

func main() {
	cfg := config.Load("settlement-worker")
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

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer writer.Close()

	engine := settlement.NewEngine(
		betledger.NewPostgres(pg),
		wallet.NewPostgres(pg),
		matchstore.NewPostgres(pg),
		settlement.NewKafkaPublisher(writer),
		log,
	)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Endpoint administrativo: dispara uma passada fora do cronograma.
	r := chi.NewRouter()
	r.Post("/v1/settlement/run", func(w http.ResponseWriter, req *http.Request) {
		stats, err := engine.RunPass(req.Context())
		if err != nil {
			log.Error("manual pass", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	})
	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin http", zap.Error(err))
		}
	}()

	log.Info("settlement-worker started",
		zap.Duration("interval", cfg.SettlementInterval),
		zap.String("admin_addr", srv.Addr))

	runPass := func() {
		stats, err := engine.RunPass(ctx)
		if err != nil {
			log.Error("settlement pass", zap.Error(err))
			return
		}
		log.Info("settlement pass done",
			zap.Int("matches", stats.MatchesScanned),
			zap.Int("won", stats.Won),
			zap.Int("lost", stats.Lost),
			zap.Int("voided", stats.Voided),
			zap.Int("errors", stats.Errors))
	}

	runPass()
	ticker := time.NewTicker(cfg.SettlementInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return
		case <-ticker.C:
			runPass()
		}
	}
}
