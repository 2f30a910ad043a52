package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-bot/internal/trading"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeMarket struct {
	price      decimal.Decimal
	priceErr   error
	balances   map[string]decimal.Decimal
	rules      *trading.SymbolRules
	priceCalls int
}

func (f *fakeMarket) GetPrice(ctx context.Context, symbol string) (trading.PriceQuote, error) {
	f.priceCalls++
	if f.priceErr != nil {
		return trading.PriceQuote{}, f.priceErr
	}
	return trading.PriceQuote{Symbol: symbol, Price: f.price}, nil
}

func (f *fakeMarket) GetBalances(ctx context.Context) (trading.AccountSnapshot, error) {
	return trading.AccountSnapshot{Balances: f.balances}, nil
}

func (f *fakeMarket) GetSymbolRules(ctx context.Context, symbol string) (trading.SymbolRules, error) {
	if f.rules == nil {
		return trading.SymbolRules{}, errors.New("exchange info unavailable")
	}
	return *f.rules, nil
}

type fakeSubmitter struct {
	submitted []trading.OrderIntent
	failOn    map[int]error // 1-based submission index
}

func (f *fakeSubmitter) Submit(ctx context.Context, intent trading.OrderIntent) (trading.Ack, error) {
	f.submitted = append(f.submitted, intent)
	n := len(f.submitted)
	if err := f.failOn[n]; err != nil {
		return trading.Ack{}, err
	}
	return trading.Ack{OrderID: int64(n), Status: "NEW"}, nil
}

func newTestEngine(market *fakeMarket, submitter *fakeSubmitter) (*Engine, *[]time.Duration) {
	engine := NewEngine(market, submitter, nil)
	slept := &[]time.Duration{}
	engine.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return engine, slept
}

func TestPlaceTwapSubmitsAllChunks(t *testing.T) {
	market := &fakeMarket{
		price:    d("10"),
		balances: map[string]decimal.Decimal{"USDT": d("1000")},
	}
	submitter := &fakeSubmitter{}
	engine, slept := newTestEngine(market, submitter)

	report, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeTwap, Quantity: d("10"), Chunks: 4, IntervalSec: 7,
	})
	require.NoError(t, err)
	require.False(t, report.Rejected())

	require.Len(t, submitter.submitted, 4)
	for _, child := range submitter.submitted {
		assert.Equal(t, trading.OrderTypeMarket, child.Type)
		assert.Equal(t, trading.SideBuy, child.Side)
		assert.True(t, child.Quantity.Equal(d("2.5")), "got %s", child.Quantity)
	}
	assert.Zero(t, report.FailedLegs())

	// One delay between each consecutive pair of chunks.
	require.Len(t, *slept, 3)
	for _, wait := range *slept {
		assert.Equal(t, 7*time.Second, wait)
	}
}

func TestPlaceGridSubmitsRestingLimitOrders(t *testing.T) {
	market := &fakeMarket{
		price:    d("150"),
		balances: map[string]decimal.Decimal{"USDT": d("800")},
	}
	submitter := &fakeSubmitter{}
	engine, _ := newTestEngine(market, submitter)

	report, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeGrid, Quantity: d("1"),
		LowerPrice: d("100"), UpperPrice: d("200"), Steps: 5, IntervalSec: 1,
	})
	require.NoError(t, err)
	require.False(t, report.Rejected())

	require.Len(t, submitter.submitted, 5)
	want := []string{"100", "125", "150", "175", "200"}
	for i, child := range submitter.submitted {
		assert.Equal(t, trading.OrderTypeLimit, child.Type)
		assert.Equal(t, trading.SideBuy, child.Side)
		assert.True(t, child.LimitPrice.Equal(d(want[i])),
			"leg %d: want price %s, got %s", i, want[i], child.LimitPrice)
	}
}

func TestPlaceGridToleratesLegFailure(t *testing.T) {
	market := &fakeMarket{
		price:    d("150"),
		balances: map[string]decimal.Decimal{"USDT": d("800")},
	}
	submitter := &fakeSubmitter{failOn: map[int]error{2: errors.New("exchange rejected order")}}
	engine, _ := newTestEngine(market, submitter)

	report, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeGrid, Quantity: d("1"),
		LowerPrice: d("100"), UpperPrice: d("200"), Steps: 5, IntervalSec: 1,
	})
	require.NoError(t, err)

	// Leg 2 failed but legs 1,3,4,5 were still attempted.
	require.Len(t, submitter.submitted, 5)
	require.Len(t, report.Legs, 5)
	assert.Equal(t, 1, report.FailedLegs())
	assert.True(t, report.Legs[1].Failed())
	assert.False(t, report.Legs[0].Failed())
	assert.False(t, report.Legs[4].Failed())
}

func TestPlaceRejectedSkipsSubmission(t *testing.T) {
	market := &fakeMarket{
		price:    d("1500"),
		balances: map[string]decimal.Decimal{"USDT": d("1000")},
	}
	submitter := &fakeSubmitter{}
	engine, _ := newTestEngine(market, submitter)

	report, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeLimit, Quantity: d("1"), LimitPrice: d("2000"),
	})
	require.NoError(t, err)

	assert.True(t, report.Rejected())
	assert.Contains(t, report.Assessment.Reason(), "insufficient USDT balance")
	assert.Empty(t, submitter.submitted)
	assert.Empty(t, report.Legs)
}

func TestPlaceSingleOrderSurfacesFailure(t *testing.T) {
	market := &fakeMarket{
		price:    d("100"),
		balances: map[string]decimal.Decimal{"USDT": d("1000")},
	}
	submitter := &fakeSubmitter{failOn: map[int]error{1: errors.New("connection reset")}}
	engine, _ := newTestEngine(market, submitter)

	report, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeMarket, Quantity: d("1"),
	})
	require.NoError(t, err)

	require.Len(t, report.Legs, 1)
	assert.True(t, report.Legs[0].Failed())
	assert.Equal(t, 1, report.FailedLegs())
}

func TestPlaceReturnsErrorWhenPriceUnavailable(t *testing.T) {
	market := &fakeMarket{priceErr: errors.New("network down")}
	submitter := &fakeSubmitter{}
	engine, _ := newTestEngine(market, submitter)

	_, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeMarket, Quantity: d("1"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch price")
	assert.Empty(t, submitter.submitted)
}

func TestPlaceTwapRefetchesPricePerChunk(t *testing.T) {
	market := &fakeMarket{
		price:    d("10"),
		balances: map[string]decimal.Decimal{"USDT": d("1000")},
	}
	submitter := &fakeSubmitter{}
	engine, _ := newTestEngine(market, submitter)

	_, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeTwap, Quantity: d("10"), Chunks: 4,
	})
	require.NoError(t, err)

	// One fetch for validation plus one per chunk for logging.
	assert.Equal(t, 5, market.priceCalls)
}

func TestPlaceAppliesExchangeFiltersWhenAvailable(t *testing.T) {
	market := &fakeMarket{
		price:    d("50000"),
		balances: map[string]decimal.Decimal{"USDT": d("100000")},
		rules: &trading.SymbolRules{
			Symbol:     "BTCUSDT",
			BaseAsset:  "BTC",
			QuoteAsset: "USDT",
			MinQty:     d("0.001"),
			MaxQty:     d("100"),
			StepSize:   d("0.001"),
		},
	}
	submitter := &fakeSubmitter{}
	engine, _ := newTestEngine(market, submitter)

	report, err := engine.Place(context.Background(), trading.OrderIntent{
		Symbol: "BTCUSDT", Side: trading.SideBuy,
		Type: trading.OrderTypeMarket, Quantity: d("0.0001"),
	})
	require.NoError(t, err)

	assert.True(t, report.Rejected())
	assert.Contains(t, report.Assessment.Reason(), "out of range")
	assert.Empty(t, submitter.submitted)
}
