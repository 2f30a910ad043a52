// Package strategy composes validation, sequencing and submission for each
// order family. Multi-leg strategies (GRID, TWAP) run strictly
// sequentially with a deliberate inter-leg delay; a failed leg is logged
// and the sequence continues without retry or rollback.
package strategy

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"futures-bot/internal/risk"
	"futures-bot/internal/trading"
)

// SleepFunc suspends between leg submissions. Tests inject a no-op.
type SleepFunc func(ctx context.Context, d time.Duration) error

func waitDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LegResult is the outcome of one submission attempt.
type LegResult struct {
	Index  int
	Intent trading.OrderIntent
	Ack    trading.Ack
	Err    error
}

// Failed reports whether the leg's submission was rejected or errored.
func (l LegResult) Failed() bool {
	return l.Err != nil
}

// Report aggregates the outcome of one strategy invocation.
type Report struct {
	Intent     trading.OrderIntent
	Assessment risk.Assessment
	Legs       []LegResult
}

// Rejected reports whether validation stopped the strategy before any
// submission.
func (r Report) Rejected() bool {
	return !r.Assessment.OK
}

// FailedLegs counts the legs whose submission failed.
func (r Report) FailedLegs() int {
	n := 0
	for _, leg := range r.Legs {
		if leg.Failed() {
			n++
		}
	}
	return n
}

// Engine drives one order strategy per invocation. It holds no state
// beyond its collaborators; every invocation re-fetches live venue data.
type Engine struct {
	market    trading.MarketData
	submitter trading.OrderSubmitter
	logger    *zap.Logger
	sleep     SleepFunc
}

// NewEngine creates an engine around the given venue accessors.
func NewEngine(market trading.MarketData, submitter trading.OrderSubmitter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		market:    market,
		submitter: submitter,
		logger:    logger,
		sleep:     waitDelay,
	}
}

// Place validates the intent against freshly fetched venue state and, when
// accepted, submits its leg or legs. A validation rejection is reported in
// the Report, not as an error; the returned error covers only failures to
// obtain the state validation needs.
func (e *Engine) Place(ctx context.Context, intent trading.OrderIntent) (Report, error) {
	inputs, err := e.fetchInputs(ctx, intent.Symbol)
	if err != nil {
		return Report{Intent: intent}, err
	}

	assessment := risk.Validate(intent, inputs)
	e.logAssessment(intent, assessment)

	report := Report{Intent: intent, Assessment: assessment}
	if !assessment.OK {
		e.logger.Error("validation failed, order not placed",
			zap.String("symbol", intent.Symbol),
			zap.String("type", string(intent.Type)),
			zap.String("reason", assessment.Reason()),
		)
		return report, nil
	}

	switch intent.Type {
	case trading.OrderTypeTwap:
		report.Legs = e.runTwap(ctx, intent)
	case trading.OrderTypeGrid:
		report.Legs = e.runGrid(ctx, intent)
	default:
		report.Legs = []LegResult{e.submitLeg(ctx, 0, intent)}
	}

	e.logger.Info("strategy finished",
		zap.String("type", string(intent.Type)),
		zap.Int("legs", len(report.Legs)),
		zap.Int("failed", report.FailedLegs()),
	)
	return report, nil
}

// fetchInputs gathers the live state validation runs against. Price and
// balances are mandatory; missing symbol rules only disable the
// exchange-filter checks.
func (e *Engine) fetchInputs(ctx context.Context, symbol string) (risk.Inputs, error) {
	quote, err := e.market.GetPrice(ctx, symbol)
	if err != nil {
		return risk.Inputs{}, fmt.Errorf("fetch price: %w", err)
	}
	e.logger.Info("current price", zap.String("symbol", symbol), zap.String("price", quote.Price.String()))

	account, err := e.market.GetBalances(ctx)
	if err != nil {
		return risk.Inputs{}, fmt.Errorf("fetch balances: %w", err)
	}
	e.logger.Info("futures wallet balance",
		zap.String("asset", "USDT"),
		zap.String("balance", account.Balance("USDT").String()),
	)

	inputs := risk.Inputs{Account: account, Price: quote.Price}

	rules, err := e.market.GetSymbolRules(ctx, symbol)
	if err != nil {
		e.logger.Warn("symbol rules unavailable, skipping exchange-filter checks",
			zap.String("symbol", symbol), zap.Error(err))
		return inputs, nil
	}
	inputs.Rules = &rules
	return inputs, nil
}

func (e *Engine) logAssessment(intent trading.OrderIntent, a risk.Assessment) {
	for _, check := range a.Checks {
		if check.Passed {
			e.logger.Info(check.Detail, zap.String("check", check.Name))
		} else {
			e.logger.Error(check.Detail, zap.String("check", check.Name))
		}
	}
	if a.OK {
		e.logger.Info("all validations passed",
			zap.String("symbol", intent.Symbol),
			zap.String("type", string(intent.Type)),
		)
	}
}

// runTwap submits Chunks market orders of Quantity/Chunks each, in index
// order, separated by the configured interval. The price is re-fetched
// before each chunk for logging only; the submitted order is an
// unconditional market order.
func (e *Engine) runTwap(ctx context.Context, intent trading.OrderIntent) []LegResult {
	qty := ChunkQuantity(intent.Quantity, intent.Chunks)
	interval := time.Duration(intent.IntervalSec) * time.Second

	e.logger.Info("placing TWAP order",
		zap.Int("chunks", intent.Chunks),
		zap.String("qty_per_chunk", qty.String()),
		zap.Duration("interval", interval),
	)

	legs := make([]LegResult, 0, intent.Chunks)
	for i := 0; i < intent.Chunks; i++ {
		if i > 0 {
			if err := e.sleep(ctx, interval); err != nil {
				e.logger.Warn("TWAP interrupted", zap.Int("placed", i), zap.Error(err))
				return legs
			}
		}

		if quote, err := e.market.GetPrice(ctx, intent.Symbol); err == nil {
			e.logger.Info("chunk reference price",
				zap.Int("chunk", i+1),
				zap.String("price", quote.Price.String()),
			)
		}

		child := trading.OrderIntent{
			Symbol:   intent.Symbol,
			Side:     intent.Side,
			Type:     trading.OrderTypeMarket,
			Quantity: qty,
		}
		legs = append(legs, e.submitLeg(ctx, i, child))
	}
	return legs
}

// runGrid rests one BUY limit order of the intent quantity at each level,
// in index order, separated by the configured interval.
func (e *Engine) runGrid(ctx context.Context, intent trading.OrderIntent) []LegResult {
	levels := GridLevels(intent.LowerPrice, intent.UpperPrice, intent.Steps)
	interval := time.Duration(intent.IntervalSec) * time.Second

	e.logger.Info("placing grid order",
		zap.Int("levels", len(levels)),
		zap.String("lower", intent.LowerPrice.String()),
		zap.String("upper", intent.UpperPrice.String()),
		zap.String("qty_per_order", intent.Quantity.String()),
		zap.Duration("interval", interval),
	)

	legs := make([]LegResult, 0, len(levels))
	for i, level := range levels {
		if i > 0 {
			if err := e.sleep(ctx, interval); err != nil {
				e.logger.Warn("grid interrupted", zap.Int("placed", i), zap.Error(err))
				return legs
			}
		}

		child := trading.OrderIntent{
			Symbol:     intent.Symbol,
			Side:       trading.SideBuy,
			Type:       trading.OrderTypeLimit,
			Quantity:   intent.Quantity,
			LimitPrice: level,
		}
		legs = append(legs, e.submitLeg(ctx, i, child))
	}
	return legs
}

// submitLeg performs one one-shot submission. Failures become values on
// the leg result; they never abort a running sequence.
func (e *Engine) submitLeg(ctx context.Context, index int, child trading.OrderIntent) LegResult {
	ack, err := e.submitter.Submit(ctx, child)
	if err != nil {
		e.logger.Error("order submission failed",
			zap.Int("leg", index+1),
			zap.String("symbol", child.Symbol),
			zap.String("type", string(child.Type)),
			zap.Error(err),
		)
		return LegResult{Index: index, Intent: child, Err: err}
	}

	e.logger.Info("order placed",
		zap.Int("leg", index+1),
		zap.String("symbol", child.Symbol),
		zap.String("side", string(child.Side)),
		zap.String("type", string(child.Type)),
		zap.String("quantity", child.Quantity.String()),
		zap.Int64("order_id", ack.OrderID),
		zap.String("status", ack.Status),
		zap.String("executed_qty", ack.ExecutedQty.String()),
	)
	return LegResult{Index: index, Intent: child, Ack: ack}
}
