package rebalance

import (
	"context"
	"strings"
	"testing"

	"indexry-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubPrices struct {
	prices map[string]float64
}

func (s stubPrices) Price(ctx context.Context, symbol string) (float64, bool) {
	p, ok := s.prices[strings.ToUpper(symbol)]
	return p, ok
}

func (s stubPrices) Prices(ctx context.Context, symbols []string) map[string]float64 {
	out := map[string]float64{}
	for _, symbol := range symbols {
		if p, ok := s.Price(ctx, symbol); ok {
			out[strings.ToUpper(symbol)] = p
		}
	}
	return out
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Index{}, &domain.Holding{}, &domain.RebalancePlan{}, &domain.Trade{},
	))
	return db
}

func createIndex(t *testing.T, db *gorm.DB) *domain.Index {
	t.Helper()
	idx := &domain.Index{Name: "Tech Leaders"}
	require.NoError(t, idx.SetRules([]domain.Rule{{Type: domain.RuleManual, Symbols: []string{"MSFT", "GOOGL"}}}))
	require.NoError(t, db.Create(idx).Error)
	return idx
}

func TestPlan_FloorAppliesForSmallPortfolio(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"AAPL": 150, "MSFT": 400, "GOOGL": 200}},
		CashFloor: 100000,
	}

	holdings := []domain.Holding{{IndexID: idx.ID, Symbol: "AAPL", Quantity: 100, LastPrice: 150}}
	result, err := planner.Plan(context.Background(), idx, holdings, []string{"MSFT", "GOOGL"})
	require.NoError(t, err)

	// 100 AAPL at 150 is 15,000, below the floor; sizing uses 100,000.
	assert.Equal(t, 100000.0, result.TotalValue)

	require.Len(t, result.Orders, 3)
	assert.Equal(t, "AAPL", result.Orders[0].Symbol)
	assert.Equal(t, domain.SideSell, result.Orders[0].Side)
	assert.Equal(t, 100.0, result.Orders[0].Quantity)

	// Each target gets $50,000 notional: floor(50000/400)=125, floor(50000/200)=250.
	assert.Equal(t, "MSFT", result.Orders[1].Symbol)
	assert.Equal(t, domain.SideBuy, result.Orders[1].Side)
	assert.Equal(t, 125.0, result.Orders[1].Quantity)
	assert.Equal(t, "GOOGL", result.Orders[2].Symbol)
	assert.Equal(t, domain.SideBuy, result.Orders[2].Side)
	assert.Equal(t, 250.0, result.Orders[2].Quantity)
}

func TestPlan_WeightsSumToOne(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"A": 10, "B": 20, "C": 30}},
		CashFloor: 100000,
	}

	result, err := planner.Plan(context.Background(), idx, nil, []string{"A", "B", "C"})
	require.NoError(t, err)

	sum := 0.0
	for _, w := range result.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPlan_PersistsPlanAndPendingTrades(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"MSFT": 400, "GOOGL": 200}},
		CashFloor: 100000,
	}

	result, err := planner.Plan(context.Background(), idx, nil, []string{"MSFT", "GOOGL"})
	require.NoError(t, err)

	var plan domain.RebalancePlan
	require.NoError(t, db.Where("id = ?", result.Plan.ID).First(&plan).Error)
	assert.Equal(t, domain.PlanPending, plan.Status)
	assert.Equal(t, 100000.0, plan.TotalValueBefore)
	assert.Nil(t, plan.TotalValueAfter)

	orders, err := plan.ParsedOrders()
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	var planTrades []domain.Trade
	require.NoError(t, db.Where("rebalance_id = ?", plan.ID).Order("created_at").Find(&planTrades).Error)
	require.Len(t, planTrades, 2)
	for i, trade := range planTrades {
		assert.Equal(t, domain.TradePending, trade.Status)
		assert.Equal(t, orders[i].Symbol, trade.Symbol)
		assert.Equal(t, orders[i].Side, trade.Side)
		assert.Equal(t, orders[i].Quantity, trade.Quantity)
		assert.Equal(t, idx.ID, trade.IndexID)
	}
}

func TestPlan_NoOrderWhenAlreadyAtTarget(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"AAPL": 200}},
		CashFloor: 100000,
	}

	// 1000 AAPL at 200 is 200,000 (above the floor); target is exactly 1000.
	holdings := []domain.Holding{{IndexID: idx.ID, Symbol: "AAPL", Quantity: 1000, LastPrice: 200}}
	result, err := planner.Plan(context.Background(), idx, holdings, []string{"AAPL"})
	require.NoError(t, err)

	assert.Equal(t, 200000.0, result.TotalValue)
	assert.Empty(t, result.Orders)
}

func TestPlan_ExitSellsIndependentOfPriceAvailability(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{}},
		CashFloor: 100000,
	}

	holdings := []domain.Holding{
		{IndexID: idx.ID, Symbol: "AAPL", Quantity: 50, LastPrice: 150},
		{IndexID: idx.ID, Symbol: "TSLA", Quantity: 10, LastPrice: 250},
	}
	result, err := planner.Plan(context.Background(), idx, holdings, []string{"MSFT"})
	require.NoError(t, err)

	// No prices resolve: targets cannot be sized, but every holding outside
	// the target set is still sold in full.
	require.Len(t, result.Orders, 2)
	for _, order := range result.Orders {
		assert.Equal(t, domain.SideSell, order.Side)
	}
	assert.Equal(t, "AAPL", result.Orders[0].Symbol)
	assert.Equal(t, 50.0, result.Orders[0].Quantity)
	assert.Equal(t, "TSLA", result.Orders[1].Symbol)
	assert.Equal(t, 10.0, result.Orders[1].Quantity)
}

func TestPlan_LastPriceFallbackForValuation(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"MSFT": 500}},
		CashFloor: 1000,
	}

	// AAPL has no fresh quote; its last observed price carries the valuation.
	holdings := []domain.Holding{{IndexID: idx.ID, Symbol: "AAPL", Quantity: 1000, LastPrice: 150}}
	result, err := planner.Plan(context.Background(), idx, holdings, []string{"MSFT"})
	require.NoError(t, err)

	assert.Equal(t, 150000.0, result.TotalValue)
	require.Len(t, result.Orders, 2)
	assert.Equal(t, domain.SideSell, result.Orders[0].Side)
	assert.Equal(t, "MSFT", result.Orders[1].Symbol)
	assert.Equal(t, 300.0, result.Orders[1].Quantity) // floor(150000/500)
}

func TestPlan_NoDuplicateOrdersPerSymbol(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"MSFT": 400, "GOOGL": 200}},
		CashFloor: 100000,
	}

	result, err := planner.Plan(context.Background(), idx, nil, []string{"MSFT", "msft", "GOOGL", "MSFT"})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, order := range result.Orders {
		assert.False(t, seen[order.Symbol], "duplicate order for %s", order.Symbol)
		seen[order.Symbol] = true
	}
	assert.Len(t, result.Orders, 2)
	assert.InDelta(t, 0.5, result.Weights["MSFT"], 1e-9)
}

func TestPlan_EmptyTargetsSellsEverything(t *testing.T) {
	db := setupDB(t)
	idx := createIndex(t, db)
	planner := &Planner{
		DB:        db,
		Prices:    stubPrices{prices: map[string]float64{"AAPL": 150}},
		CashFloor: 100000,
	}

	holdings := []domain.Holding{{IndexID: idx.ID, Symbol: "AAPL", Quantity: 100, LastPrice: 150}}
	result, err := planner.Plan(context.Background(), idx, holdings, nil)
	require.NoError(t, err)

	require.Len(t, result.Orders, 1)
	assert.Equal(t, domain.SideSell, result.Orders[0].Side)
	assert.Empty(t, result.Weights)
}
