package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

// Espaçamento mínimo entre mensagens para não estourar o rate limit do Telegram.
const defaultMinInterval = 3 * time.Second

// Telegram envia notificações de apostas liquidadas para um chat.
type Telegram struct {
	bot         *tgbotapi.BotAPI
	chatID      int64
	minInterval time.Duration
	log         *zap.Logger

	mu       sync.Mutex
	lastSent time.Time
}

func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log.Info("bot do Telegram autorizado", zap.String("username", bot.Self.UserName))
	return &Telegram{
		bot:         bot,
		chatID:      chatID,
		minInterval: defaultMinInterval,
		log:         log,
	}, nil
}

// Send envia a mensagem respeitando o espaçamento mínimo. Bloqueia até a
// janela abrir ou o contexto expirar.
func (t *Telegram) Send(ctx context.Context, text string) error {
	t.mu.Lock()
	wait := t.minInterval - time.Since(t.lastSent)
	t.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	t.mu.Lock()
	t.lastSent = time.Now()
	t.mu.Unlock()
	return nil
}

// FormatBetSettled monta a mensagem de liquidação para o chat.
func FormatBetSettled(e events.BetSettled) string {
	switch e.Status {
	case "WON":
		return fmt.Sprintf("✅ Aposta %s ganhou! Usuário %s recebeu %d créditos (stake %d, seleção %s).",
			e.BetID, e.UserID, e.Payout, e.Stake, e.Selection)
	case "VOID":
		return fmt.Sprintf("↩️ Aposta %s anulada. Usuário %s recebeu estorno de %d créditos.",
			e.BetID, e.UserID, e.Payout)
	default:
		return fmt.Sprintf("❌ Aposta %s perdeu (stake %d, seleção %s, vencedor %s).",
			e.BetID, e.Stake, e.Selection, e.Winner)
	}
}
