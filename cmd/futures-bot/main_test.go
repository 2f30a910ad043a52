package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-bot/internal/trading"
)

func TestBuildIntent(t *testing.T) {
	tests := []struct {
		name      string
		orderType string
		args      []string
		want      trading.OrderIntent
	}{
		{
			name:      "market",
			orderType: "MARKET",
			args:      []string{"btcusdt", "buy", "0.01"},
			want: trading.OrderIntent{
				Symbol: "BTCUSDT", Side: trading.SideBuy,
				Type: trading.OrderTypeMarket, Quantity: decimal.RequireFromString("0.01"),
			},
		},
		{
			name:      "limit",
			orderType: "LIMIT",
			args:      []string{"BTCUSDT", "SELL", "0.5", "61000"},
			want: trading.OrderIntent{
				Symbol: "BTCUSDT", Side: trading.SideSell,
				Type: trading.OrderTypeLimit, Quantity: decimal.RequireFromString("0.5"),
				LimitPrice: decimal.NewFromInt(61000),
			},
		},
		{
			name:      "stop limit",
			orderType: "STOP_LIMIT",
			args:      []string{"BTCUSDT", "BUY", "1", "59000", "59100"},
			want: trading.OrderIntent{
				Symbol: "BTCUSDT", Side: trading.SideBuy,
				Type: trading.OrderTypeStopLimit, Quantity: decimal.NewFromInt(1),
				StopPrice: decimal.NewFromInt(59000), LimitPrice: decimal.NewFromInt(59100),
			},
		},
		{
			name:      "oco",
			orderType: "OCO",
			args:      []string{"BTCUSDT", "BUY", "1", "62000", "58000"},
			want: trading.OrderIntent{
				Symbol: "BTCUSDT", Side: trading.SideBuy,
				Type: trading.OrderTypeOCO, Quantity: decimal.NewFromInt(1),
				TakeProfitPrice: decimal.NewFromInt(62000), StopPrice: decimal.NewFromInt(58000),
			},
		},
		{
			name:      "twap",
			orderType: "TWAP",
			args:      []string{"BTCUSDT", "BUY", "10", "4", "15"},
			want: trading.OrderIntent{
				Symbol: "BTCUSDT", Side: trading.SideBuy,
				Type: trading.OrderTypeTwap, Quantity: decimal.NewFromInt(10),
				Chunks: 4, IntervalSec: 15,
			},
		},
		{
			name:      "grid is always buy side",
			orderType: "GRID",
			args:      []string{"BTCUSDT", "100", "200", "5", "1", "5"},
			want: trading.OrderIntent{
				Symbol: "BTCUSDT", Side: trading.SideBuy,
				Type: trading.OrderTypeGrid, Quantity: decimal.NewFromInt(1),
				LowerPrice: decimal.NewFromInt(100), UpperPrice: decimal.NewFromInt(200),
				Steps: 5, IntervalSec: 5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildIntent(tt.orderType, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Symbol, got.Symbol)
			assert.Equal(t, tt.want.Side, got.Side)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.True(t, tt.want.Quantity.Equal(got.Quantity))
			assert.True(t, tt.want.LimitPrice.Equal(got.LimitPrice))
			assert.True(t, tt.want.StopPrice.Equal(got.StopPrice))
			assert.True(t, tt.want.TakeProfitPrice.Equal(got.TakeProfitPrice))
			assert.True(t, tt.want.LowerPrice.Equal(got.LowerPrice))
			assert.True(t, tt.want.UpperPrice.Equal(got.UpperPrice))
			assert.Equal(t, tt.want.Steps, got.Steps)
			assert.Equal(t, tt.want.Chunks, got.Chunks)
			assert.Equal(t, tt.want.IntervalSec, got.IntervalSec)
		})
	}
}

func TestBuildIntentWrongArgCount(t *testing.T) {
	_, err := buildIntent("MARKET", []string{"BTCUSDT", "BUY"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MARKET expects 3 parameters, got 2")
}

func TestBuildIntentBadNumber(t *testing.T) {
	_, err := buildIntent("LIMIT", []string{"BTCUSDT", "BUY", "abc", "100"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUANTITY must be a valid number")
}

func TestBuildIntentUnknownType(t *testing.T) {
	_, err := buildIntent("ICEBERG", nil)
	assert.ErrorIs(t, err, errUnknownType)
}
