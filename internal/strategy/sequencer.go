package strategy

import (
	"github.com/shopspring/decimal"
)

// GridLevels computes steps equally spaced price levels across
// [lower, upper], both bounds included:
//
//	level[i] = lower + i*(upper-lower)/(steps-1)
//
// The validator guarantees steps >= 2 before this runs.
func GridLevels(lower, upper decimal.Decimal, steps int) []decimal.Decimal {
	spacing := upper.Sub(lower).Div(decimal.NewFromInt(int64(steps - 1)))
	levels := make([]decimal.Decimal, steps)
	for i := range levels {
		levels[i] = lower.Add(spacing.Mul(decimal.NewFromInt(int64(i))))
	}
	return levels
}

// ChunkQuantity splits a total quantity into equal per-chunk quantities.
func ChunkQuantity(total decimal.Decimal, chunks int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(chunks)))
}
