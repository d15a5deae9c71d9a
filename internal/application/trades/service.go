package trades

import (
	"context"
	"time"

	"indexry-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service encapsulates trade queries and status transitions.
type Service struct {
	DB *gorm.DB
}

// ListByIndex returns an index's trades, newest first.
func (s *Service) ListByIndex(ctx context.Context, indexID uuid.UUID) ([]domain.Trade, error) {
	var trades []domain.Trade
	if err := s.DB.WithContext(ctx).
		Where("index_id = ?", indexID).
		Order("created_at DESC").
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// ListByPlan returns a plan's trades in creation order.
func (s *Service) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.Trade, error) {
	var trades []domain.Trade
	if err := s.DB.WithContext(ctx).
		Where("rebalance_id = ?", planID).
		Order("created_at").
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// PendingByPlan returns a plan's still-pending trades in creation order.
func (s *Service) PendingByPlan(ctx context.Context, planID uuid.UUID) ([]domain.Trade, error) {
	var trades []domain.Trade
	if err := s.DB.WithContext(ctx).
		Where("rebalance_id = ? AND status = ?", planID, domain.TradePending).
		Order("created_at").
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// StatusUpdate carries the optional fields recorded with a status transition.
type StatusUpdate struct {
	Price         *float64
	BrokerOrderID *string
	Error         *string
}

// UpdateStatus transitions a trade and records fill details. The executed
// timestamp is set only when the trade reaches filled.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, u StatusUpdate) error {
	updates := map[string]interface{}{"status": status}
	if u.Price != nil {
		updates["price"] = *u.Price
	}
	if u.BrokerOrderID != nil {
		updates["broker_order_id"] = *u.BrokerOrderID
	}
	if u.Error != nil {
		updates["error"] = *u.Error
	}
	if status == domain.TradeFilled {
		updates["executed_at"] = time.Now().UTC()
	}
	return s.DB.WithContext(ctx).
		Model(&domain.Trade{}).
		Where("id = ?", id).
		Updates(updates).Error
}
