package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQuoter struct {
	prices map[string]float64
	calls  int
}

func (q *countingQuoter) Quote(ctx context.Context, symbol string) (float64, bool) {
	q.calls++
	p, ok := q.prices[symbol]
	return p, ok
}

func setup(t *testing.T, quoter Quoter) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Service{Quoter: quoter, Rdb: rdb, TTL: 5 * time.Minute}, mr
}

func TestPrice_CachesWithinTTL(t *testing.T) {
	quoter := &countingQuoter{prices: map[string]float64{"AAPL": 150.5}}
	svc, _ := setup(t, quoter)

	price, ok := svc.Price(context.Background(), "aapl")
	require.True(t, ok)
	assert.Equal(t, 150.5, price)
	assert.Equal(t, 1, quoter.calls)

	price, ok = svc.Price(context.Background(), "AAPL")
	require.True(t, ok)
	assert.Equal(t, 150.5, price)
	assert.Equal(t, 1, quoter.calls, "second lookup should hit the cache")
}

func TestPrice_RefetchesAfterTTL(t *testing.T) {
	quoter := &countingQuoter{prices: map[string]float64{"AAPL": 150.5}}
	svc, mr := setup(t, quoter)

	_, _ = svc.Price(context.Background(), "AAPL")
	mr.FastForward(6 * time.Minute)

	_, ok := svc.Price(context.Background(), "AAPL")
	require.True(t, ok)
	assert.Equal(t, 2, quoter.calls)
}

func TestPrice_MissingQuote(t *testing.T) {
	quoter := &countingQuoter{prices: map[string]float64{}}
	svc, _ := setup(t, quoter)

	_, ok := svc.Price(context.Background(), "ZZZZ")
	assert.False(t, ok)
}

func TestPrice_NilRedisSkipsCache(t *testing.T) {
	quoter := &countingQuoter{prices: map[string]float64{"AAPL": 150.5}}
	svc := &Service{Quoter: quoter, TTL: 5 * time.Minute}

	_, _ = svc.Price(context.Background(), "AAPL")
	_, ok := svc.Price(context.Background(), "AAPL")
	require.True(t, ok)
	assert.Equal(t, 2, quoter.calls)
}

func TestPrices_SkipsUnresolvableSymbols(t *testing.T) {
	quoter := &countingQuoter{prices: map[string]float64{"AAPL": 150.5, "MSFT": 400}}
	svc, _ := setup(t, quoter)

	prices := svc.Prices(context.Background(), []string{"AAPL", "ZZZZ", "msft"})
	assert.Len(t, prices, 2)
	assert.Equal(t, 150.5, prices["AAPL"])
	assert.Equal(t, 400.0, prices["MSFT"])
}

func TestMockQuoter_DeterministicAndBounded(t *testing.T) {
	q := MockQuoter{}
	first, ok := q.Quote(context.Background(), "AAPL")
	require.True(t, ok)
	second, _ := q.Quote(context.Background(), "AAPL")
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 10.0)
	assert.Less(t, first, 500.0)

	_, ok = q.Quote(context.Background(), "")
	assert.False(t, ok)
}
