package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holding is the current position in one symbol within one index.
// A holding driven to zero quantity is deleted, never kept at zero.
type Holding struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	IndexID       uuid.UUID `gorm:"column:index_id;type:uuid;not null;index" json:"index_id"`
	Symbol        string    `gorm:"column:symbol;not null" json:"symbol"`
	Quantity      float64   `gorm:"column:quantity;not null;default:0" json:"quantity"`
	TargetWeight  float64   `gorm:"column:target_weight;not null;default:0" json:"target_weight"`
	CurrentWeight float64   `gorm:"column:current_weight;not null;default:0" json:"current_weight"`
	LastPrice     float64   `gorm:"column:last_price;not null;default:0" json:"last_price"`
	MarketValue   float64   `gorm:"column:market_value;not null;default:0" json:"market_value"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
