package settlement

import (
	"context"
	"encoding/json"

	sharedkafka "github.com/radieske/cs2-bet-platform/internal/shared/kafka"
	"github.com/radieske/cs2-bet-platform/pkg/contracts/events"
)

// KafkaPublisher emite eventos bet_settled no tópico configurado.
type KafkaPublisher struct {
	writer *sharedkafka.Writer
}

func NewKafkaPublisher(w *sharedkafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e events.BetSettled) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return sharedkafka.WriteJSON(ctx, p.writer, e.BetID, payload)
}
