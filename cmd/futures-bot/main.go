package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"futures-bot/internal/configs"
	"futures-bot/internal/conncheck"
	"futures-bot/internal/logging"
	"futures-bot/internal/strategy"
	"futures-bot/internal/trading"
	"futures-bot/internal/trading/binance"
)

const defaultCheckSymbol = "BTCUSDT"

var errUnknownType = errors.New("unknown order type")

func printUsage() {
	fmt.Fprint(os.Stderr, `
Usage:
  futures-bot ORDER_TYPE [PARAMETERS]

Order Types & Example Usage:
  1. Market Order:
     futures-bot MARKET SYMBOL SIDE QUANTITY
  2. Limit Order:
     futures-bot LIMIT SYMBOL SIDE QUANTITY LIMIT_PRICE
  3. Stop-Limit Order:
     futures-bot STOP_LIMIT SYMBOL SIDE QUANTITY STOP_PRICE LIMIT_PRICE
  4. OCO Order:
     futures-bot OCO SYMBOL SIDE QUANTITY TAKE_PROFIT_PRICE STOP_PRICE
  5. TWAP Order:
     futures-bot TWAP SYMBOL SIDE TOTAL_QTY CHUNKS INTERVAL_SEC
  6. Grid Order:
     futures-bot GRID SYMBOL LOWER_PRICE UPPER_PRICE STEPS QTY_PER_ORDER INTERVAL_SEC
  7. Connection Check:
     futures-bot CHECK [SYMBOL]
`)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	orderType := strings.ToUpper(os.Args[1])

	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging setup error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	executor := binance.NewFuturesExecutor(cfg.APIKey, cfg.APISecret, cfg.Testnet)
	ctx := context.Background()

	if orderType == "CHECK" {
		symbol := defaultCheckSymbol
		if len(os.Args) > 2 {
			symbol = strings.ToUpper(os.Args[2])
		}
		checker := conncheck.New(executor, conncheck.BaseURL(cfg.Testnet), logger)
		if _, ok := checker.Run(ctx, symbol); !ok {
			os.Exit(1)
		}
		return
	}

	intent, err := buildIntent(orderType, os.Args[2:])
	if err != nil {
		if errors.Is(err, errUnknownType) {
			logger.Error("unknown order type", zap.String("type", orderType))
		} else {
			logger.Error("invalid arguments", zap.String("type", orderType), zap.Error(err))
		}
		printUsage()
		os.Exit(1)
	}

	engine := strategy.NewEngine(executor, executor, logger)
	if _, err := engine.Place(ctx, intent); err != nil {
		// Remote failures and anything unmodeled end here: logged with
		// context, reported, never a crash.
		logger.Error("error executing order", zap.String("type", orderType), zap.Error(err))
	}
}

func buildIntent(orderType string, args []string) (trading.OrderIntent, error) {
	switch orderType {
	case "MARKET":
		if len(args) != 3 {
			return trading.OrderIntent{}, argCountError("MARKET", 3, len(args))
		}
		qty, err := parseDecimal("QUANTITY", args[2])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		return trading.OrderIntent{
			Symbol:   strings.ToUpper(args[0]),
			Side:     trading.Side(strings.ToUpper(args[1])),
			Type:     trading.OrderTypeMarket,
			Quantity: qty,
		}, nil

	case "LIMIT":
		if len(args) != 4 {
			return trading.OrderIntent{}, argCountError("LIMIT", 4, len(args))
		}
		qty, err := parseDecimal("QUANTITY", args[2])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		limitPrice, err := parseDecimal("LIMIT_PRICE", args[3])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		return trading.OrderIntent{
			Symbol:     strings.ToUpper(args[0]),
			Side:       trading.Side(strings.ToUpper(args[1])),
			Type:       trading.OrderTypeLimit,
			Quantity:   qty,
			LimitPrice: limitPrice,
		}, nil

	case "STOP_LIMIT":
		if len(args) != 5 {
			return trading.OrderIntent{}, argCountError("STOP_LIMIT", 5, len(args))
		}
		qty, err := parseDecimal("QUANTITY", args[2])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		stopPrice, err := parseDecimal("STOP_PRICE", args[3])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		limitPrice, err := parseDecimal("LIMIT_PRICE", args[4])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		return trading.OrderIntent{
			Symbol:     strings.ToUpper(args[0]),
			Side:       trading.Side(strings.ToUpper(args[1])),
			Type:       trading.OrderTypeStopLimit,
			Quantity:   qty,
			StopPrice:  stopPrice,
			LimitPrice: limitPrice,
		}, nil

	case "OCO":
		if len(args) != 5 {
			return trading.OrderIntent{}, argCountError("OCO", 5, len(args))
		}
		qty, err := parseDecimal("QUANTITY", args[2])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		takeProfit, err := parseDecimal("TAKE_PROFIT_PRICE", args[3])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		stopPrice, err := parseDecimal("STOP_PRICE", args[4])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		return trading.OrderIntent{
			Symbol:          strings.ToUpper(args[0]),
			Side:            trading.Side(strings.ToUpper(args[1])),
			Type:            trading.OrderTypeOCO,
			Quantity:        qty,
			TakeProfitPrice: takeProfit,
			StopPrice:       stopPrice,
		}, nil

	case "TWAP":
		if len(args) != 5 {
			return trading.OrderIntent{}, argCountError("TWAP", 5, len(args))
		}
		totalQty, err := parseDecimal("TOTAL_QTY", args[2])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		chunks, err := parseCount("CHUNKS", args[3])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		interval, err := parseCount("INTERVAL_SEC", args[4])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		return trading.OrderIntent{
			Symbol:      strings.ToUpper(args[0]),
			Side:        trading.Side(strings.ToUpper(args[1])),
			Type:        trading.OrderTypeTwap,
			Quantity:    totalQty,
			Chunks:      chunks,
			IntervalSec: interval,
		}, nil

	case "GRID":
		if len(args) != 6 {
			return trading.OrderIntent{}, argCountError("GRID", 6, len(args))
		}
		lower, err := parseDecimal("LOWER_PRICE", args[1])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		upper, err := parseDecimal("UPPER_PRICE", args[2])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		steps, err := parseCount("STEPS", args[3])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		qtyPerOrder, err := parseDecimal("QTY_PER_ORDER", args[4])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		interval, err := parseCount("INTERVAL_SEC", args[5])
		if err != nil {
			return trading.OrderIntent{}, err
		}
		// A grid rests BUY limit orders only.
		return trading.OrderIntent{
			Symbol:      strings.ToUpper(args[0]),
			Side:        trading.SideBuy,
			Type:        trading.OrderTypeGrid,
			Quantity:    qtyPerOrder,
			LowerPrice:  lower,
			UpperPrice:  upper,
			Steps:       steps,
			IntervalSec: interval,
		}, nil

	default:
		return trading.OrderIntent{}, errUnknownType
	}
}

func argCountError(orderType string, want, got int) error {
	return fmt.Errorf("%s expects %d parameters, got %d", orderType, want, got)
}

func parseDecimal(name, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s must be a valid number, got %q", name, raw)
	}
	return v, nil
}

func parseCount(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}
