// Package risk holds the pre-trade order validation shared by every order
// family. Validation is pure decision logic: the caller fetches live
// balances, price and symbol rules first and passes them in, so identical
// inputs always produce the identical assessment.
package risk

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"futures-bot/internal/trading"
)

// Inputs carries the live venue state an assessment is made against.
type Inputs struct {
	Account trading.AccountSnapshot

	// Price is the latest traded price, used as the notional reference for
	// MARKET and TWAP orders. Zero when not fetched.
	Price decimal.Decimal

	// Rules enables the exchange-filter checks (lot size, min notional)
	// when present. A nil Rules skips those checks only.
	Rules *trading.SymbolRules
}

// Check is the outcome of one validation step, in evaluation order.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Assessment is the validation result: an accept/reject flag plus the
// ordered list of check outcomes. The list is for logging; callers branch
// on OK alone.
type Assessment struct {
	OK     bool
	Checks []Check
}

// Reason returns the detail of the first failed check, empty when accepted.
func (a Assessment) Reason() string {
	for _, c := range a.Checks {
		if !c.Passed {
			return c.Detail
		}
	}
	return ""
}

type validator struct {
	checks []Check
}

func (v *validator) pass(name, detail string) {
	v.checks = append(v.checks, Check{Name: name, Passed: true, Detail: detail})
}

func (v *validator) fail(name, detail string) Assessment {
	v.checks = append(v.checks, Check{Name: name, Passed: false, Detail: detail})
	return Assessment{OK: false, Checks: v.checks}
}

func (v *validator) accept() Assessment {
	return Assessment{OK: true, Checks: v.checks}
}

// Validate runs the fixed check sequence for the intent's order family and
// short-circuits on the first failure. No I/O happens here; rejection means
// the caller must not proceed to submission.
func Validate(intent trading.OrderIntent, in Inputs) Assessment {
	v := &validator{}

	// 1. Numeric fields must be strictly positive.
	for _, f := range positiveFields(intent) {
		if !f.value.IsPositive() {
			return v.fail(f.name, fmt.Sprintf("%s must be greater than zero, got %s", f.name, f.value))
		}
		v.pass(f.name, fmt.Sprintf("%s check passed: %s", f.name, f.value))
	}

	// 2. Count fields must be positive integers; a grid needs at least two
	// levels or the level spacing divides by zero.
	switch intent.Type {
	case trading.OrderTypeGrid:
		if intent.Steps < 2 {
			return v.fail("steps", fmt.Sprintf("grid requires at least 2 steps, got %d", intent.Steps))
		}
		v.pass("steps", fmt.Sprintf("steps check passed: %d", intent.Steps))
	case trading.OrderTypeTwap:
		if intent.Chunks <= 0 {
			return v.fail("chunks", fmt.Sprintf("chunks must be greater than zero, got %d", intent.Chunks))
		}
		v.pass("chunks", fmt.Sprintf("chunks check passed: %d", intent.Chunks))
	}

	// 3. Side must be BUY or SELL.
	if !intent.Side.Valid() {
		return v.fail("side", fmt.Sprintf("side must be BUY or SELL, got %q", intent.Side))
	}
	v.pass("side", "side check passed: "+string(intent.Side))

	// 4. Type-specific price ordering.
	switch intent.Type {
	case trading.OrderTypeOCO:
		if intent.Side == trading.SideBuy && intent.TakeProfitPrice.LessThanOrEqual(intent.StopPrice) {
			return v.fail("price ordering", fmt.Sprintf(
				"for BUY OCO, take-profit (%s) must be higher than stop (%s)",
				intent.TakeProfitPrice, intent.StopPrice))
		}
		if intent.Side == trading.SideSell && intent.TakeProfitPrice.GreaterThanOrEqual(intent.StopPrice) {
			return v.fail("price ordering", fmt.Sprintf(
				"for SELL OCO, take-profit (%s) must be lower than stop (%s)",
				intent.TakeProfitPrice, intent.StopPrice))
		}
		v.pass("price ordering", "take-profit/stop ordering check passed")
	case trading.OrderTypeGrid:
		if intent.LowerPrice.GreaterThanOrEqual(intent.UpperPrice) {
			return v.fail("price range", fmt.Sprintf(
				"lower price (%s) must be less than upper price (%s)",
				intent.LowerPrice, intent.UpperPrice))
		}
		v.pass("price range", "price range check passed")
	}

	// 5. Exchange filters, when symbol rules were fetched.
	if in.Rules != nil {
		if a, rejected := v.checkFilters(intent, in); rejected {
			return a
		}
	}

	// 6. Balance sufficiency against the computed notional exposure.
	return v.checkBalance(intent, in)
}

type namedValue struct {
	name  string
	value decimal.Decimal
}

func positiveFields(intent trading.OrderIntent) []namedValue {
	fields := []namedValue{{"quantity", intent.Quantity}}
	switch intent.Type {
	case trading.OrderTypeLimit:
		fields = append(fields, namedValue{"limit price", intent.LimitPrice})
	case trading.OrderTypeStopLimit:
		fields = append(fields,
			namedValue{"stop price", intent.StopPrice},
			namedValue{"limit price", intent.LimitPrice})
	case trading.OrderTypeOCO:
		fields = append(fields,
			namedValue{"take-profit price", intent.TakeProfitPrice},
			namedValue{"stop price", intent.StopPrice})
	case trading.OrderTypeGrid:
		fields = append(fields,
			namedValue{"lower price", intent.LowerPrice},
			namedValue{"upper price", intent.UpperPrice})
	}
	return fields
}

// legQuantity is the quantity of one submitted child order: the per-chunk
// quantity for TWAP, the intent quantity everywhere else. Splitting a TWAP
// can push the chunk below the lot-size minimum, so the filters run
// against the chunk, not the total.
func legQuantity(intent trading.OrderIntent) decimal.Decimal {
	if intent.Type == trading.OrderTypeTwap && intent.Chunks > 0 {
		return intent.Quantity.Div(decimal.NewFromInt(int64(intent.Chunks)))
	}
	return intent.Quantity
}

func (v *validator) checkFilters(intent trading.OrderIntent, in Inputs) (Assessment, bool) {
	rules := in.Rules
	qty := legQuantity(intent)

	if qty.LessThan(rules.MinQty) || qty.GreaterThan(rules.MaxQty) {
		return v.fail("lot size", fmt.Sprintf(
			"order quantity %s out of range [%s, %s]", qty, rules.MinQty, rules.MaxQty)), true
	}
	if rules.StepSize.IsPositive() && !qty.Mod(rules.StepSize).IsZero() {
		return v.fail("lot size", fmt.Sprintf(
			"order quantity %s not a multiple of step size %s", qty, rules.StepSize)), true
	}
	v.pass("lot size", fmt.Sprintf("lot size check passed: %s", qty))

	legNotional := qty.Mul(referencePrice(intent, in))
	if legNotional.LessThan(rules.MinNotional) {
		return v.fail("min notional", fmt.Sprintf(
			"order notional %s below minimum notional %s", legNotional, rules.MinNotional)), true
	}
	v.pass("min notional", fmt.Sprintf("min notional check passed: %s", legNotional))

	return Assessment{}, false
}

func (v *validator) checkBalance(intent trading.OrderIntent, in Inputs) Assessment {
	base, quote := assets(intent.Symbol, in.Rules)

	// MARKET and TWAP price their notional off the live ticker, so a
	// missing or zero quote cannot be accepted.
	if intent.Type == trading.OrderTypeMarket || intent.Type == trading.OrderTypeTwap {
		if !in.Price.IsPositive() {
			return v.fail("current price", fmt.Sprintf("no valid current price for %s", intent.Symbol))
		}
		v.pass("current price", fmt.Sprintf("current price check passed: %s", in.Price))
	}

	if intent.Side == trading.SideSell {
		available := in.Account.Balance(base)
		if available.LessThan(intent.Quantity) {
			return v.fail("balance", fmt.Sprintf(
				"insufficient %s balance %s for order quantity %s", base, available, intent.Quantity))
		}
		v.pass("balance", fmt.Sprintf("balance check passed: %s %s available", available, base))
		return v.accept()
	}

	notional := Notional(intent, in.Price)
	available := in.Account.Balance(quote)
	if available.LessThan(notional) {
		return v.fail("balance", fmt.Sprintf(
			"insufficient %s balance %s for order notional %s", quote, available, notional))
	}
	v.pass("balance", fmt.Sprintf("balance check passed: notional %s within available %s %s", notional, available, quote))
	return v.accept()
}

// Notional computes the quote-asset exposure of the intent. For a grid it
// is approximated at the average leg price; for OCO it is the conservative
// worst case of the two trigger prices.
func Notional(intent trading.OrderIntent, livePrice decimal.Decimal) decimal.Decimal {
	switch intent.Type {
	case trading.OrderTypeLimit:
		return intent.Quantity.Mul(intent.LimitPrice)
	case trading.OrderTypeStopLimit:
		return intent.Quantity.Mul(intent.LimitPrice)
	case trading.OrderTypeOCO:
		reference := intent.TakeProfitPrice
		if intent.StopPrice.GreaterThan(reference) {
			reference = intent.StopPrice
		}
		return intent.Quantity.Mul(reference)
	case trading.OrderTypeGrid:
		average := intent.LowerPrice.Add(intent.UpperPrice).Div(decimal.NewFromInt(2))
		return intent.Quantity.Mul(average).Mul(decimal.NewFromInt(int64(intent.Steps)))
	default: // MARKET, TWAP
		return intent.Quantity.Mul(livePrice)
	}
}

func referencePrice(intent trading.OrderIntent, in Inputs) decimal.Decimal {
	switch intent.Type {
	case trading.OrderTypeLimit, trading.OrderTypeStopLimit:
		return intent.LimitPrice
	case trading.OrderTypeOCO:
		if intent.StopPrice.GreaterThan(intent.TakeProfitPrice) {
			return intent.StopPrice
		}
		return intent.TakeProfitPrice
	case trading.OrderTypeGrid:
		return intent.LowerPrice.Add(intent.UpperPrice).Div(decimal.NewFromInt(2))
	default:
		return in.Price
	}
}

// assets resolves the base and quote asset of a symbol, preferring the
// exchange rules and falling back to the USDT-suffix naming convention
// (e.g. BTCUSDT).
func assets(symbol string, rules *trading.SymbolRules) (base, quote string) {
	if rules != nil && rules.BaseAsset != "" && rules.QuoteAsset != "" {
		return rules.BaseAsset, rules.QuoteAsset
	}
	if strings.HasSuffix(symbol, "USDT") {
		return strings.TrimSuffix(symbol, "USDT"), "USDT"
	}
	if len(symbol) > 4 {
		return symbol[:len(symbol)-4], symbol[len(symbol)-4:]
	}
	return symbol, "USDT"
}
