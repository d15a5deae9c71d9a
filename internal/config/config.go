package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string // postgres URL, or a sqlite file path for local use
	RedisURL            string // price cache; empty disables caching
	BrokerGatewayURL    string // base URL of the local brokerage gateway
	BrokerAccountID     string
	PriceCacheTTL       time.Duration
	RebalanceCashFloor  float64 // notional cash baseline used when portfolio value is smaller
	FrontendURLEndsWith string
	DevPassword         string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" {
		dbURL = "data/indexry.db"
	}

	ttl := viper.GetDuration("PRICE_CACHE_TTL")
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	floor := viper.GetFloat64("REBALANCE_CASH_FLOOR")
	if floor == 0 {
		floor = 100000
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		BrokerGatewayURL:    brokerGatewayURL(viper.GetString("BROKER_GATEWAY_URL")),
		BrokerAccountID:     viper.GetString("BROKER_ACCOUNT_ID"),
		PriceCacheTTL:       ttl,
		RebalanceCashFloor:  floor,
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
	}, nil
}

func brokerGatewayURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "https://127.0.0.1:5000"
	}
	return strings.TrimRight(s, "/")
}
