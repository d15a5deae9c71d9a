package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trade statuses. A trade transitions out of pending exactly once.
// Partial and Failed exist in the schema for compatibility with older rows
// but are not produced by the current execution path.
const (
	TradePending   = "pending"
	TradeFilled    = "filled"
	TradeSubmitted = "submitted"
	TradeError     = "error"
	TradeSkipped   = "skipped"
	TradePartial   = "partial"
	TradeFailed    = "failed"
)

// Trade is one persisted order within a rebalance plan, tracked through its
// execution outcome.
type Trade struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	IndexID       uuid.UUID  `gorm:"column:index_id;type:uuid;not null;index" json:"index_id"`
	RebalanceID   *uuid.UUID `gorm:"column:rebalance_id;type:uuid;index" json:"rebalance_id,omitempty"`
	Symbol        string     `gorm:"column:symbol;not null" json:"symbol"`
	Side          string     `gorm:"column:side;type:varchar(4);not null" json:"side"`
	Quantity      float64    `gorm:"column:quantity;not null" json:"quantity"`
	Price         *float64   `gorm:"column:price" json:"price,omitempty"`
	Status        string     `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	BrokerOrderID *string    `gorm:"column:broker_order_id" json:"broker_order_id,omitempty"`
	Error         *string    `gorm:"column:error" json:"error,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	ExecutedAt    *time.Time `gorm:"column:executed_at" json:"executed_at,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}

func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
