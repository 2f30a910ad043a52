package configs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration, loaded from the environment with an
// optional local .env file.
type Config struct {
	// 交易所配置
	APIKey    string
	APISecret string
	Testnet   bool

	// 日志配置
	LogFile  string
	LogLevel string
}

// Load reads configuration from a .env file (when present) and the process
// environment. Missing credentials are a fatal configuration error: no
// order logic may run without them.
func Load() (*Config, error) {
	// Absence of .env is fine; real deployments export the variables.
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		APISecret: os.Getenv("BINANCE_API_SECRET"),
		Testnet:   true,
		LogFile:   "bot.log",
		LogLevel:  "info",
	}

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET must be set in environment variables")
	}

	if v := os.Getenv("BINANCE_TESTNET"); v != "" {
		testnet, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BINANCE_TESTNET value %q: %w", v, err)
		}
		cfg.Testnet = testnet
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
