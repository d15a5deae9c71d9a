package holdings

import (
	"context"
	"errors"
	"strings"

	"indexry-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrHoldingNotFound = errors.New("holding not found")

// Service is the holdings ledger: per-(index, symbol) positions, read by the
// planner and mutated only from trade outcomes.
type Service struct {
	DB *gorm.DB
}

// List returns all holdings of an index, ordered by symbol.
func (s *Service) List(ctx context.Context, indexID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).
		Where("index_id = ?", indexID).
		Order("symbol").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// Get returns one holding by index and symbol.
func (s *Service) Get(ctx context.Context, indexID uuid.UUID, symbol string) (*domain.Holding, error) {
	var holding domain.Holding
	err := s.DB.WithContext(ctx).
		Where("index_id = ? AND symbol = ?", indexID, strings.ToUpper(symbol)).
		First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldingNotFound
		}
		return nil, err
	}
	return &holding, nil
}

// ApplyBuy increases a position by the filled quantity, creating the holding
// when absent. Market value is recomputed at the fill price.
func (s *Service) ApplyBuy(ctx context.Context, indexID uuid.UUID, symbol string, quantity, price float64) error {
	symbol = strings.ToUpper(symbol)
	holding, err := s.Get(ctx, indexID, symbol)
	if errors.Is(err, ErrHoldingNotFound) {
		return s.DB.WithContext(ctx).Create(&domain.Holding{
			IndexID:     indexID,
			Symbol:      symbol,
			Quantity:    quantity,
			LastPrice:   price,
			MarketValue: quantity * price,
		}).Error
	}
	if err != nil {
		return err
	}
	holding.Quantity += quantity
	holding.LastPrice = price
	holding.MarketValue = holding.Quantity * price
	return s.DB.WithContext(ctx).Save(holding).Error
}

// ApplySell decreases a position by the filled quantity. A sell that meets or
// exceeds the remaining position deletes the holding; nothing is ever kept at
// zero or negative quantity. Selling a symbol with no holding is a no-op.
func (s *Service) ApplySell(ctx context.Context, indexID uuid.UUID, symbol string, quantity, price float64) error {
	holding, err := s.Get(ctx, indexID, strings.ToUpper(symbol))
	if errors.Is(err, ErrHoldingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if holding.Quantity > quantity {
		holding.Quantity -= quantity
		holding.LastPrice = price
		holding.MarketValue = holding.Quantity * price
		return s.DB.WithContext(ctx).Save(holding).Error
	}
	return s.DB.WithContext(ctx).Delete(holding).Error
}

// TotalMarketValue sums the market value of an index's holdings.
func (s *Service) TotalMarketValue(ctx context.Context, indexID uuid.UUID) (float64, error) {
	holdings, err := s.List(ctx, indexID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, h := range holdings {
		total += h.MarketValue
	}
	return total, nil
}
