package marketdata

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Quoter resolves a raw price for a symbol from an upstream source.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (float64, bool)
}

// Service is the price oracle: a Quoter behind a short-lived Redis cache.
// A nil Rdb disables caching and every lookup hits the Quoter.
type Service struct {
	Quoter Quoter
	Rdb    *redis.Client
	TTL    time.Duration
}

const cacheKeyPrefix = "price:"

// Price resolves the current price for a symbol. Returns false when the
// upstream has no quote; cache failures fall through to the Quoter.
func (s *Service) Price(ctx context.Context, symbol string) (float64, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, false
	}

	if s.Rdb != nil {
		val, err := s.Rdb.Get(ctx, cacheKeyPrefix+symbol).Result()
		if err == nil {
			if price, perr := strconv.ParseFloat(val, 64); perr == nil {
				return price, true
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("price cache read failed")
		}
	}

	price, ok := s.Quoter.Quote(ctx, symbol)
	if !ok {
		return 0, false
	}

	if s.Rdb != nil {
		if err := s.Rdb.Set(ctx, cacheKeyPrefix+symbol, strconv.FormatFloat(price, 'f', -1, 64), s.TTL).Err(); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("price cache write failed")
		}
	}
	return price, true
}

// Prices resolves prices for a batch of symbols. Symbols without a quote are
// simply absent from the result.
func (s *Service) Prices(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		if price, ok := s.Price(ctx, symbol); ok {
			prices[strings.ToUpper(strings.TrimSpace(symbol))] = price
		}
	}
	return prices
}

// MockQuoter produces a deterministic price per symbol in [10, 500).
// It stands in for a real market data provider; the hash keeps prices
// stable across calls so sizing math is reproducible.
type MockQuoter struct{}

func (MockQuoter) Quote(ctx context.Context, symbol string) (float64, bool) {
	if symbol == "" {
		return 0, false
	}
	hash := 0
	for _, r := range symbol {
		hash += int(r)
	}
	price := 10 + float64(hash%490)
	return math.Round(price*100) / 100, true
}
