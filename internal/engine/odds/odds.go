package odds

import (
	"fmt"
	"math"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
)

// Decimal converte odds americanas para decimais.
// +150 → 2.50; -150 → 1.667. Magnitude mínima de 100 por convenção.
func Decimal(american int) (float64, error) {
	if american > -100 && american < 100 {
		return 0, fmt.Errorf("%w: %d", model.ErrInvalidOdds, american)
	}

	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}
	return (100.0 / float64(-american)) + 1.0, nil
}

// Combined multiplica as odds decimais de todas as pernas (regra de parlay)
func Combined(legs []float64) (float64, error) {
	if len(legs) == 0 {
		return 0, fmt.Errorf("%w: no legs", model.ErrInvalidOdds)
	}

	combined := 1.0
	for _, d := range legs {
		combined *= d
	}
	return combined, nil
}

// Payout calcula stake × odds combinadas, arredondando para 2 casas
// (half-up) uma única vez no valor final — nunca por perna
func Payout(stake int64, combined float64) float64 {
	return math.Round(float64(stake)*combined*100) / 100
}

// American converte odds decimais de volta para americanas
func American(decimal float64) (int, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("%w: decimal %.4f", model.ErrInvalidOdds, decimal)
	}

	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// ImpliedProbability é a probabilidade implícita de uma odd decimal
func ImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 0 {
		return 0, fmt.Errorf("%w: decimal %.4f", model.ErrInvalidOdds, decimal)
	}
	return 1.0 / decimal, nil
}
