package trading

import (
	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of BUY/SELL.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType identifies the order family.
type OrderType string

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
	OrderTypeOCO       OrderType = "OCO"
	OrderTypeTwap      OrderType = "TWAP"
	OrderTypeGrid      OrderType = "GRID"
)

// OrderIntent describes one requested order before validation. Fields that
// do not apply to the order family are left as zero decimals. An intent is
// immutable once constructed; invalid combinations are rejected by the
// validator before any order is sent.
type OrderIntent struct {
	Symbol string
	Side   Side
	Type   OrderType

	// Quantity is the per-order quantity, except for TWAP where it is the
	// total quantity split across chunks.
	Quantity decimal.Decimal

	LimitPrice      decimal.Decimal // LIMIT, STOP_LIMIT
	StopPrice       decimal.Decimal // STOP_LIMIT, OCO
	TakeProfitPrice decimal.Decimal // OCO

	LowerPrice  decimal.Decimal // GRID
	UpperPrice  decimal.Decimal // GRID
	Steps       int             // GRID
	Chunks      int             // TWAP
	IntervalSec int             // GRID, TWAP inter-leg delay
}

// PriceQuote is the latest traded price for a symbol, fetched fresh per use.
type PriceQuote struct {
	Symbol string
	Price  decimal.Decimal
}

// AccountSnapshot maps asset name to available wallet balance. It is
// fetched fresh per validation call; there is no caching and no staleness
// guarantee.
type AccountSnapshot struct {
	Balances map[string]decimal.Decimal
}

// Balance returns the available balance for asset, zero if absent.
func (a AccountSnapshot) Balance(asset string) decimal.Decimal {
	if a.Balances == nil {
		return decimal.Zero
	}
	return a.Balances[asset]
}

// SymbolRules carries the exchange trading filters for one symbol.
type SymbolRules struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string

	MinQty      decimal.Decimal
	MaxQty      decimal.Decimal
	StepSize    decimal.Decimal
	MinNotional decimal.Decimal
	TickSize    decimal.Decimal
}

// Ack is the exchange acknowledgment for one accepted order.
type Ack struct {
	OrderID     int64
	Status      string
	ExecutedQty decimal.Decimal
	AvgPrice    decimal.Decimal
}
