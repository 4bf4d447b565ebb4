package adapters

import (
	"context"

	"github.com/radieske/cs2-bet-platform/internal/models"
)

// Adapter é o contrato de um provedor de partidas/odds.
// Cada chamada refaz o fetch completo; falhas do provedor nunca viram erro
// para o chamador: o adapter loga, contabiliza e devolve slice vazio.
type Adapter interface {
	Name() string
	Confidence() float64
	FetchUpcoming(ctx context.Context) []models.Match
	FetchResults(ctx context.Context) []models.Match
}
