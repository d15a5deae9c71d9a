package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rule types an index can be built from. Only manual rules resolve to a
// tradable universe today; the ranking types are stored but not yet rankable.
const (
	RuleManual    = "manual"
	RuleTopN      = "top_n"
	RuleMarketCap = "market_cap"
	RuleMomentum  = "momentum"
)

// Rule is one construction rule of an index. Manual rules carry an explicit
// symbol list; ranking rules carry a count.
type Rule struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols,omitempty"`
	Count   int      `json:"count,omitempty"`
}

// Index is a user-defined target portfolio.
type Index struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Rules       datatypes.JSON `gorm:"column:rules" json:"rules"`
	TotalValue  float64        `gorm:"column:total_value;not null;default:0" json:"total_value"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Index) TableName() string {
	return "indices"
}

func (i *Index) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ParsedRules decodes the rules JSON column. An empty column decodes to nil.
func (i *Index) ParsedRules() ([]Rule, error) {
	if len(i.Rules) == 0 {
		return nil, nil
	}
	var rules []Rule
	if err := json.Unmarshal(i.Rules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SetRules encodes rules into the JSON column.
func (i *Index) SetRules(rules []Rule) error {
	b, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	i.Rules = datatypes.JSON(b)
	return nil
}
