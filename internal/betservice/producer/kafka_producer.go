package producer

import (
	"context"
	"encoding/json"

	sharedkafka "github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

// Kafka publica eventos bet_placed
type Kafka struct {
	writer *sharedkafka.Writer
}

func NewKafka(w *sharedkafka.Writer) *Kafka { return &Kafka{writer: w} }

// PublishBetPlaced publica o evento com a betID como chave de partição
func (k *Kafka) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return sharedkafka.WriteJSON(ctx, k.writer, e.BetID, payload)
}
