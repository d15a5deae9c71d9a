package rebalance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"indexry-backend/internal/application/holdings"
	"indexry-backend/internal/application/trades"
	"indexry-backend/internal/broker"
	"indexry-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	// ErrPlanNotFoundOrExecuted means the plan does not exist or has already
	// been claimed by an execution.
	ErrPlanNotFoundOrExecuted = errors.New("rebalancing not found or already executed")

	// ErrVenueNotConnected means real-venue execution was requested without a
	// live broker connection. Connecting is the caller's job, not a retry here.
	ErrVenueNotConnected = errors.New("broker not connected")
)

// Executor drains a pending plan's trades sequentially against the execution
// venue (or a mock fill path) and reconciles holdings per outcome.
//
// One trade's failure never aborts the run: the error is recorded on the
// trade and the loop moves on. The plan always finalizes as completed;
// partial failure is visible only through the individual trade statuses.
type Executor struct {
	DB       *gorm.DB
	Prices   PriceSource
	Venue    broker.Venue
	Holdings *holdings.Service
	Trades   *trades.Service
}

// Execute runs a pending plan. With useVenue the venue must already report a
// connected state; otherwise orders are acknowledged locally with synthetic
// fill ids. Exactly one call can claim a given plan: the pending→executing
// transition is a compare-and-swap, so a concurrent or repeated call fails
// with ErrPlanNotFoundOrExecuted.
func (e *Executor) Execute(ctx context.Context, planID, indexID uuid.UUID, useVenue bool) error {
	if useVenue && (e.Venue == nil || e.Venue.Status() != broker.StatusConnected) {
		return ErrVenueNotConnected
	}

	claim := e.DB.WithContext(ctx).
		Model(&domain.RebalancePlan{}).
		Where("id = ? AND status = ?", planID, domain.PlanPending).
		Update("status", domain.PlanExecuting)
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		return ErrPlanNotFoundOrExecuted
	}

	pending, err := e.Trades.PendingByPlan(ctx, planID)
	if err != nil {
		return err
	}

	for _, trade := range pending {
		e.executeTrade(ctx, indexID, trade, useVenue)
	}

	totalAfter, err := e.Holdings.TotalMarketValue(ctx, indexID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return e.DB.WithContext(ctx).
		Model(&domain.RebalancePlan{}).
		Where("id = ?", planID).
		Updates(map[string]interface{}{
			"status":            domain.PlanCompleted,
			"executed_at":       now,
			"total_value_after": totalAfter,
		}).Error
}

func (e *Executor) executeTrade(ctx context.Context, indexID uuid.UUID, trade domain.Trade, useVenue bool) {
	price, ok := e.Prices.Price(ctx, trade.Symbol)
	if !ok {
		log.Warn().
			Str("trade_id", trade.ID.String()).
			Str("symbol", trade.Symbol).
			Msg("no price available, trade skipped")
		if err := e.Trades.UpdateStatus(ctx, trade.ID, domain.TradeSkipped, trades.StatusUpdate{}); err != nil {
			log.Error().Err(err).Str("trade_id", trade.ID.String()).Msg("trade status update failed")
		}
		return
	}

	status := domain.TradeFilled
	var brokerOrderID string
	var execErr error

	if useVenue {
		result, err := e.Venue.PlaceOrder(ctx, broker.OrderRequest{
			Symbol:    trade.Symbol,
			Side:      trade.Side,
			Quantity:  trade.Quantity,
			OrderType: domain.OrderMarket,
		})
		if err != nil {
			status = domain.TradeError
			execErr = err
			log.Error().Err(err).
				Str("symbol", trade.Symbol).
				Str("side", trade.Side).
				Msg("order placement failed")
		} else {
			brokerOrderID = result.OrderID
			if result.Status == broker.OutcomeSubmitted {
				status = domain.TradeSubmitted
			}
		}
	} else {
		brokerOrderID = fmt.Sprintf("mock_%d_%s", time.Now().UnixMilli(), trade.ID)
	}

	update := trades.StatusUpdate{Price: &price}
	if brokerOrderID != "" {
		update.BrokerOrderID = &brokerOrderID
	}
	if execErr != nil {
		msg := execErr.Error()
		update.Error = &msg
	}
	if err := e.Trades.UpdateStatus(ctx, trade.ID, status, update); err != nil {
		log.Error().Err(err).Str("trade_id", trade.ID.String()).Msg("trade status update failed")
		return
	}

	if status == domain.TradeError {
		return
	}

	var reconcileErr error
	if trade.Side == domain.SideBuy {
		reconcileErr = e.Holdings.ApplyBuy(ctx, indexID, trade.Symbol, trade.Quantity, price)
	} else {
		reconcileErr = e.Holdings.ApplySell(ctx, indexID, trade.Symbol, trade.Quantity, price)
	}
	if reconcileErr != nil {
		log.Error().Err(reconcileErr).
			Str("trade_id", trade.ID.String()).
			Str("symbol", trade.Symbol).
			Msg("holdings reconciliation failed")
	}
}
