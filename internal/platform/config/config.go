package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaultHistoryCSVURL is a format string; %s is replaced with the currency
// unit whose history is fetched.
const defaultHistoryCSVURL = "https://api.blockchain.info/charts/market-price?format=csv&currency=%s"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Rate source endpoints
	DailyFixingURL   string
	LiveQuoteURLs    []string
	HistoryCSVURL    string
	HTTPFetchTimeout time.Duration

	// Reconciliation
	ReconcileQueueSize int

	// API rate limiting, in ulule/limiter notation (e.g. "100-M")
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DAILY_FIXING_URL", "https://www.cbr.ru/scripts/XML_daily.asp")
	viper.SetDefault("LIVE_QUOTE_URLS", "https://blockchain.info/ticker,https://api.coindesk.com/v1/bpi/currentprice.json")
	viper.SetDefault("HISTORY_CSV_URL", defaultHistoryCSVURL)
	viper.SetDefault("HTTP_FETCH_TIMEOUT", "10s")
	viper.SetDefault("RECONCILE_QUEUE_SIZE", 256)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.DailyFixingURL = viper.GetString("DAILY_FIXING_URL")
	cfg.HistoryCSVURL = viper.GetString("HISTORY_CSV_URL")
	if strings.Count(cfg.HistoryCSVURL, "%s") != 1 {
		cfg.HistoryCSVURL = defaultHistoryCSVURL
		log.Printf("Warning: HISTORY_CSV_URL needs exactly one %%s for the currency unit, using default.\n")
	}
	for _, u := range strings.Split(viper.GetString("LIVE_QUOTE_URLS"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			cfg.LiveQuoteURLs = append(cfg.LiveQuoteURLs, u)
		}
	}

	cfg.HTTPFetchTimeout = viper.GetDuration("HTTP_FETCH_TIMEOUT")
	if cfg.HTTPFetchTimeout <= 0 {
		cfg.HTTPFetchTimeout = 10 * time.Second
		log.Println("Warning: invalid HTTP_FETCH_TIMEOUT, using 10s.")
	}

	cfg.ReconcileQueueSize = viper.GetInt("RECONCILE_QUEUE_SIZE")
	if cfg.ReconcileQueueSize <= 0 {
		cfg.ReconcileQueueSize = 256
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
