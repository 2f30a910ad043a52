// Package conncheck verifies connectivity and credentials before any real
// order is attempted. The unauthenticated REST probes run first so a
// network failure is distinguishable from a credential failure.
package conncheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"futures-bot/internal/trading"
)

const (
	mainnetBaseURL = "https://fapi.binance.com"
	testnetBaseURL = "https://testnet.binancefuture.com"
)

// BaseURL returns the futures REST base URL for the chosen environment.
func BaseURL(testnet bool) string {
	if testnet {
		return testnetBaseURL
	}
	return mainnetBaseURL
}

// Step is the outcome of one connectivity check.
type Step struct {
	Name   string
	Passed bool
	Detail string
}

// Checker probes the venue in fixed order: raw reachability, server time,
// then the signed endpoints the order flow depends on.
type Checker struct {
	http    *resty.Client
	baseURL string
	market  trading.MarketData
	logger  *zap.Logger
}

// New creates a Checker against the given REST base URL. The market
// accessor supplies the signed calls.
func New(market trading.MarketData, baseURL string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		http:    resty.New().SetTimeout(10 * time.Second),
		baseURL: baseURL,
		market:  market,
		logger:  logger,
	}
}

// Run executes every check regardless of earlier failures and reports
// whether all of them passed.
func (c *Checker) Run(ctx context.Context, symbol string) ([]Step, bool) {
	steps := []Step{
		c.ping(ctx),
		c.serverTime(ctx),
		c.symbolRules(ctx, symbol),
		c.price(ctx, symbol),
		c.balance(ctx),
	}

	ok := true
	for _, step := range steps {
		if step.Passed {
			c.logger.Info(step.Detail, zap.String("check", step.Name))
		} else {
			c.logger.Error(step.Detail, zap.String("check", step.Name))
			ok = false
		}
	}
	return steps, ok
}

func (c *Checker) ping(ctx context.Context) Step {
	resp, err := c.http.R().SetContext(ctx).Get(c.baseURL + "/fapi/v1/ping")
	if err != nil {
		return Step{Name: "ping", Detail: fmt.Sprintf("REST endpoint unreachable: %v", err)}
	}
	if resp.StatusCode() != http.StatusOK {
		return Step{Name: "ping", Detail: fmt.Sprintf("unexpected status code: %d", resp.StatusCode())}
	}
	return Step{Name: "ping", Passed: true, Detail: "REST endpoint reachable"}
}

func (c *Checker) serverTime(ctx context.Context) Step {
	resp, err := c.http.R().SetContext(ctx).Get(c.baseURL + "/fapi/v1/time")
	if err != nil {
		return Step{Name: "server time", Detail: fmt.Sprintf("failed to fetch server time: %v", err)}
	}
	if resp.StatusCode() != http.StatusOK {
		return Step{Name: "server time", Detail: fmt.Sprintf("unexpected status code: %d", resp.StatusCode())}
	}

	var result struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return Step{Name: "server time", Detail: fmt.Sprintf("failed to decode response: %v", err)}
	}

	drift := time.Since(time.UnixMilli(result.ServerTime)).Round(time.Millisecond)
	return Step{
		Name:   "server time",
		Passed: true,
		Detail: fmt.Sprintf("server time %d, local drift %s", result.ServerTime, drift),
	}
}

func (c *Checker) symbolRules(ctx context.Context, symbol string) Step {
	rules, err := c.market.GetSymbolRules(ctx, symbol)
	if err != nil {
		return Step{Name: "symbol rules", Detail: fmt.Sprintf("failed to fetch symbol rules: %v", err)}
	}
	return Step{
		Name:   "symbol rules",
		Passed: true,
		Detail: fmt.Sprintf("%s filters: minQty=%s stepSize=%s minNotional=%s",
			rules.Symbol, rules.MinQty, rules.StepSize, rules.MinNotional),
	}
}

func (c *Checker) price(ctx context.Context, symbol string) Step {
	quote, err := c.market.GetPrice(ctx, symbol)
	if err != nil {
		return Step{Name: "price", Detail: fmt.Sprintf("failed to fetch price: %v", err)}
	}
	return Step{
		Name:   "price",
		Passed: true,
		Detail: fmt.Sprintf("%s current price: %s", quote.Symbol, quote.Price),
	}
}

func (c *Checker) balance(ctx context.Context) Step {
	account, err := c.market.GetBalances(ctx)
	if err != nil {
		return Step{Name: "account", Detail: fmt.Sprintf("failed to fetch account balances (check credentials): %v", err)}
	}
	return Step{
		Name:   "account",
		Passed: true,
		Detail: fmt.Sprintf("USDT futures wallet balance: %s", account.Balance("USDT")),
	}
}
