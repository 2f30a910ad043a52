package binance

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"futures-bot/internal/trading"
)

// FuturesExecutor implements trading.MarketData and trading.OrderSubmitter
// against the Binance USDⓈ-M futures REST API.
type FuturesExecutor struct {
	client *futures.Client
}

// NewFuturesExecutor creates a new FuturesExecutor instance. With testnet
// enabled every request goes to the futures testnet endpoint.
func NewFuturesExecutor(apiKey, secretKey string, testnet bool) *FuturesExecutor {
	if testnet {
		futures.UseTestnet = true
	}

	return &FuturesExecutor{
		client: futures.NewClient(apiKey, secretKey),
	}
}

// GetPrice implements price retrieval via the symbol price ticker.
func (e *FuturesExecutor) GetPrice(ctx context.Context, symbol string) (trading.PriceQuote, error) {
	prices, err := e.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return trading.PriceQuote{}, fmt.Errorf("failed to fetch price for %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return trading.PriceQuote{}, fmt.Errorf("no price returned for %s", symbol)
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return trading.PriceQuote{}, fmt.Errorf("failed to parse price %q: %w", prices[0].Price, err)
	}

	return trading.PriceQuote{Symbol: symbol, Price: price}, nil
}

// GetBalances implements balance retrieval from the futures account.
func (e *FuturesExecutor) GetBalances(ctx context.Context) (trading.AccountSnapshot, error) {
	account, err := e.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return trading.AccountSnapshot{}, fmt.Errorf("failed to get account info: %w", err)
	}

	balances := make(map[string]decimal.Decimal, len(account.Assets))
	for _, asset := range account.Assets {
		available, err := decimal.NewFromString(asset.AvailableBalance)
		if err != nil {
			return trading.AccountSnapshot{}, fmt.Errorf("failed to parse balance for %s: %w", asset.Asset, err)
		}
		balances[asset.Asset] = available
	}

	return trading.AccountSnapshot{Balances: balances}, nil
}

// GetSymbolRules implements trading-filter retrieval via exchange info.
func (e *FuturesExecutor) GetSymbolRules(ctx context.Context, symbol string) (trading.SymbolRules, error) {
	info, err := e.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return trading.SymbolRules{}, fmt.Errorf("failed to get exchange info: %w", err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}

		lot := s.LotSizeFilter()
		notional := s.MinNotionalFilter()
		price := s.PriceFilter()
		if lot == nil || notional == nil || price == nil {
			return trading.SymbolRules{}, fmt.Errorf("required trading filters not found for %s", symbol)
		}

		rules := trading.SymbolRules{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
		}
		fields := []struct {
			dst *decimal.Decimal
			raw string
		}{
			{&rules.MinQty, lot.MinQuantity},
			{&rules.MaxQty, lot.MaxQuantity},
			{&rules.StepSize, lot.StepSize},
			{&rules.MinNotional, notional.Notional},
			{&rules.TickSize, price.TickSize},
		}
		for _, f := range fields {
			v, err := decimal.NewFromString(f.raw)
			if err != nil {
				return trading.SymbolRules{}, fmt.Errorf("failed to parse filter value %q for %s: %w", f.raw, symbol, err)
			}
			*f.dst = v
		}

		return rules, nil
	}

	return trading.SymbolRules{}, fmt.Errorf("symbol %s not available for trading", symbol)
}

// Submit implements one-shot order placement. The intent maps to exactly
// one exchange request; multi-leg families (GRID, TWAP) are expanded into
// child MARKET/LIMIT intents by the strategy layer before they get here.
//
// OCO is submitted as a single TAKE_PROFIT order carrying both the
// take-profit price and the stop price, mirroring the venue call this tool
// has always made. Real exchange OCO semantics are two linked orders where
// filling one cancels the other.
func (e *FuturesExecutor) Submit(ctx context.Context, intent trading.OrderIntent) (trading.Ack, error) {
	var side futures.SideType
	switch intent.Side {
	case trading.SideBuy:
		side = futures.SideTypeBuy
	case trading.SideSell:
		side = futures.SideTypeSell
	default:
		return trading.Ack{}, fmt.Errorf("invalid side: %s", intent.Side)
	}

	svc := e.client.NewCreateOrderService().
		Symbol(intent.Symbol).
		Side(side).
		Quantity(intent.Quantity.String())

	switch intent.Type {
	case trading.OrderTypeMarket:
		svc.Type(futures.OrderTypeMarket)
	case trading.OrderTypeLimit:
		svc.Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(intent.LimitPrice.String())
	case trading.OrderTypeStopLimit:
		svc.Type(futures.OrderTypeStop).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(intent.LimitPrice.String()).
			StopPrice(intent.StopPrice.String())
	case trading.OrderTypeOCO:
		svc.Type(futures.OrderTypeTakeProfit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(intent.TakeProfitPrice.String()).
			StopPrice(intent.StopPrice.String())
	default:
		return trading.Ack{}, fmt.Errorf("unsupported order type: %s", intent.Type)
	}

	result, err := svc.Do(ctx)
	if err != nil {
		return trading.Ack{}, fmt.Errorf("failed to place order: %w", err)
	}

	executed, err := decimal.NewFromString(result.ExecutedQuantity)
	if err != nil {
		executed = decimal.Zero
	}
	avgPrice, err := decimal.NewFromString(result.AvgPrice)
	if err != nil {
		avgPrice = decimal.Zero
	}

	return trading.Ack{
		OrderID:     result.OrderID,
		Status:      string(result.Status),
		ExecutedQty: executed,
		AvgPrice:    avgPrice,
	}, nil
}
