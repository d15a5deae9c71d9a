package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rebalance plan lifecycle. A plan is created pending, claimed as executing by
// exactly one executor, and finalized completed.
const (
	PlanPending   = "pending"
	PlanExecuting = "executing"
	PlanCompleted = "completed"
)

// Order sides and types.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderMarket = "market"
	OrderLimit  = "limit"
)

// Order is one buy/sell instruction inside a rebalance plan. Orders are not
// persisted on their own; they live in the plan's JSON column and become
// Trade rows when the plan is created.
type Order struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Quantity   float64 `json:"quantity"`
	OrderType  string  `json:"order_type"`
	LimitPrice float64 `json:"limit_price,omitempty"`
}

// RebalancePlan is a persisted set of orders moving an index from its current
// holdings toward its target allocation. The order list is frozen at creation;
// only status, timestamps and the after-value change later.
type RebalancePlan struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	IndexID          uuid.UUID      `gorm:"column:index_id;type:uuid;not null;index" json:"index_id"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	Orders           datatypes.JSON `gorm:"column:orders" json:"orders"`
	TotalValueBefore float64        `gorm:"column:total_value_before;not null;default:0" json:"total_value_before"`
	TotalValueAfter  *float64       `gorm:"column:total_value_after" json:"total_value_after,omitempty"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
	ExecutedAt       *time.Time     `gorm:"column:executed_at" json:"executed_at,omitempty"`
}

func (RebalancePlan) TableName() string {
	return "rebalance_plans"
}

func (p *RebalancePlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ParsedOrders decodes the frozen order list.
func (p *RebalancePlan) ParsedOrders() ([]Order, error) {
	if len(p.Orders) == 0 {
		return nil, nil
	}
	var orders []Order
	if err := json.Unmarshal(p.Orders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrders encodes the order list into the JSON column.
func (p *RebalancePlan) SetOrders(orders []Order) error {
	b, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	p.Orders = datatypes.JSON(b)
	return nil
}
