package rebalance

import (
	"context"
	"math"
	"strings"
	"time"

	"indexry-backend/internal/domain"

	"gorm.io/gorm"
)

// PriceSource is what the planner and executor need from the price oracle.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (float64, bool)
	Prices(ctx context.Context, symbols []string) map[string]float64
}

// PlanResult is a freshly created rebalance plan with its derived inputs.
type PlanResult struct {
	Plan       *domain.RebalancePlan
	Orders     []domain.Order
	Trades     []domain.Trade
	TotalValue float64
	Weights    map[string]float64
}

// Planner derives the order list that moves an index from its current
// holdings toward an equal-weight allocation over the target symbols, and
// persists the plan with one pending trade per order.
type Planner struct {
	DB     *gorm.DB
	Prices PriceSource

	// CashFloor is the notional baseline used for sizing when the portfolio's
	// current value is smaller (unfunded or nearly empty accounts).
	CashFloor float64
}

// Plan computes and persists a rebalance plan.
//
// Exit sells (holdings outside the target set) are emitted first, then the
// buy/sell delta per target symbol. Target symbols with no resolvable price
// are skipped during sizing; a plan with no resolvable prices at all still
// succeeds with whatever orders could be derived. The sequencing gives a
// human reviewer sell-proceeds-before-buys intuition but no capital
// constraint is enforced.
func (p *Planner) Plan(ctx context.Context, index *domain.Index, holdings []domain.Holding, targetSymbols []string) (*PlanResult, error) {
	targets := normalizeSymbols(targetSymbols)

	union := make([]string, 0, len(holdings)+len(targets))
	inUnion := map[string]bool{}
	for _, h := range holdings {
		symbol := strings.ToUpper(h.Symbol)
		if !inUnion[symbol] {
			inUnion[symbol] = true
			union = append(union, symbol)
		}
	}
	for _, symbol := range targets {
		if !inUnion[symbol] {
			inUnion[symbol] = true
			union = append(union, symbol)
		}
	}

	prices := p.Prices.Prices(ctx, union)

	totalValue := 0.0
	currentQty := map[string]float64{}
	for _, h := range holdings {
		symbol := strings.ToUpper(h.Symbol)
		price, ok := prices[symbol]
		if !ok {
			price = h.LastPrice
		}
		totalValue += h.Quantity * price
		currentQty[symbol] = h.Quantity
	}
	if totalValue < p.CashFloor {
		totalValue = p.CashFloor
	}

	weights := make(map[string]float64, len(targets))
	if len(targets) > 0 {
		weight := 1 / float64(len(targets))
		for _, symbol := range targets {
			weights[symbol] = weight
		}
	}

	var orders []domain.Order

	// Exit positions that are not part of the target universe.
	for _, h := range holdings {
		symbol := strings.ToUpper(h.Symbol)
		if _, targeted := weights[symbol]; !targeted {
			orders = append(orders, domain.Order{
				Symbol:    symbol,
				Side:      domain.SideSell,
				Quantity:  h.Quantity,
				OrderType: domain.OrderMarket,
			})
		}
	}

	// Adjust each target position toward its weight.
	for _, symbol := range targets {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		targetQty := math.Floor(totalValue * weights[symbol] / price)
		delta := targetQty - currentQty[symbol]
		switch {
		case delta > 0:
			orders = append(orders, domain.Order{
				Symbol:    symbol,
				Side:      domain.SideBuy,
				Quantity:  delta,
				OrderType: domain.OrderMarket,
			})
		case delta < 0:
			orders = append(orders, domain.Order{
				Symbol:    symbol,
				Side:      domain.SideSell,
				Quantity:  -delta,
				OrderType: domain.OrderMarket,
			})
		}
	}

	plan := domain.RebalancePlan{
		IndexID:          index.ID,
		Status:           domain.PlanPending,
		TotalValueBefore: totalValue,
	}
	if err := plan.SetOrders(orders); err != nil {
		return nil, err
	}

	var planTrades []domain.Trade
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		// Explicit creation timestamps keep the trade drain order identical
		// to the order emission sequence even when rows share a clock tick.
		base := time.Now().UTC()
		for i, order := range orders {
			trade := domain.Trade{
				IndexID:     index.ID,
				RebalanceID: &plan.ID,
				Symbol:      order.Symbol,
				Side:        order.Side,
				Quantity:    order.Quantity,
				Status:      domain.TradePending,
				CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
			}
			if err := tx.Create(&trade).Error; err != nil {
				return err
			}
			planTrades = append(planTrades, trade)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PlanResult{
		Plan:       &plan,
		Orders:     orders,
		Trades:     planTrades,
		TotalValue: totalValue,
		Weights:    weights,
	}, nil
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := map[string]bool{}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
