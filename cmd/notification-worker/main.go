package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/internal/notifier"
	"github.com/radieske/cs2-bet-platform/internal/shared/config"
	"github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/internal/shared/logger"
	"github.com/radieske/cs2-bet-platform/internal/shared/metrics"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

func main() {
	cfg := config.Load("notification-worker")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetSettled, "notification-worker")
	defer reader.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettledDLQ)
	defer dlqWriter.Close()

	// Token vazio desabilita o envio; os eventos são apenas logados.
	var telegram *notifier.Telegram
	if cfg.TelegramToken != "" {
		telegram, err = notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Fatal("telegram init", zap.Error(err))
		}
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notification-worker started",
		zap.String("consume", cfg.TopicBetSettled),
		zap.Bool("telegram", telegram != nil))

	// Loop principal: consome bet_settled e notifica; falha de envio vai para a DLQ.
	for {
		key, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutting down")
				return
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var settled events.BetSettled
		if err := json.Unmarshal(value, &settled); err != nil {
			log.Error("unmarshal bet_settled", zap.ByteString("key", key), zap.Error(err))
			continue
		}

		text := notifier.FormatBetSettled(settled)
		if telegram == nil {
			log.Info("bet settled", zap.String("bet_id", settled.BetID),
				zap.String("status", settled.Status), zap.Int64("payout", settled.Payout))
			continue
		}
		if err := telegram.Send(ctx, text); err != nil {
			log.Error("notify", zap.String("bet_id", settled.BetID), zap.Error(err))
			if derr := kafka.WriteJSON(ctx, dlqWriter, settled.BetID, value); derr != nil {
				log.Error("dlq write", zap.Error(derr))
			}
		}
	}
}
