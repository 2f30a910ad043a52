package trading

import (
	"context"
)

// MarketData fetches live venue state for validation and logging.
type MarketData interface {
	// GetPrice retrieves the current price for a symbol
	GetPrice(ctx context.Context, symbol string) (PriceQuote, error)

	// GetBalances retrieves the futures wallet balances per asset
	GetBalances(ctx context.Context) (AccountSnapshot, error)

	// GetSymbolRules retrieves the trading filters for a symbol
	GetSymbolRules(ctx context.Context, symbol string) (SymbolRules, error)
}

// OrderSubmitter places one validated order intent as a single exchange
// request. Every call is a one-shot attempt: failures are returned as
// values and are never retried here.
type OrderSubmitter interface {
	// Submit places a new order and interprets the exchange response
	Submit(ctx context.Context, intent OrderIntent) (Ack, error)
}
