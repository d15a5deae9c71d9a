package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"indexry-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrIndexNotFound        = errors.New("index not found")
	ErrRuleTypeNotSupported = errors.New("rule type not supported")
)

// Service encapsulates index CRUD and rule resolution.
type Service struct {
	DB *gorm.DB
}

// Create persists a new index with its construction rules.
func (s *Service) Create(ctx context.Context, name, description string, rules []domain.Rule) (*domain.Index, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name is required")
	}
	idx := domain.Index{
		Name:        name,
		Description: description,
	}
	if err := idx.SetRules(rules); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(&idx).Error; err != nil {
		return nil, err
	}
	return &idx, nil
}

// List returns all indices, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Index, error) {
	var indices []domain.Index
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&indices).Error; err != nil {
		return nil, err
	}
	return indices, nil
}

// Get returns one index by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Index, error) {
	var idx domain.Index
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&idx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndexNotFound
		}
		return nil, err
	}
	return &idx, nil
}

// UpdateParams carries the mutable fields of an index; nil means unchanged.
type UpdateParams struct {
	Name        *string
	Description *string
	Rules       []domain.Rule
	TotalValue  *float64
}

// Update applies the given changes to an index.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*domain.Index, error) {
	idx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		idx.Name = *p.Name
	}
	if p.Description != nil {
		idx.Description = *p.Description
	}
	if p.Rules != nil {
		if err := idx.SetRules(p.Rules); err != nil {
			return nil, err
		}
	}
	if p.TotalValue != nil {
		idx.TotalValue = *p.TotalValue
	}
	if err := s.DB.WithContext(ctx).Save(idx).Error; err != nil {
		return nil, err
	}
	return idx, nil
}

// Delete removes an index and all its dependent records as a unit.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var idx domain.Index
		if err := tx.Where("id = ?", id).First(&idx).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIndexNotFound
			}
			return err
		}
		if err := tx.Where("index_id = ?", id).Delete(&domain.Holding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("index_id = ?", id).Delete(&domain.Trade{}).Error; err != nil {
			return err
		}
		if err := tx.Where("index_id = ?", id).Delete(&domain.RebalancePlan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&idx).Error
	})
}

// TargetSymbols resolves an index's rules to its target universe. Manual rules
// contribute their symbol lists (uppercased, deduped, order preserved). The
// ranking rule types have no ranking engine yet and are reported as
// unsupported rather than silently resolved to a placeholder universe.
func TargetSymbols(idx *domain.Index) ([]string, error) {
	rules, err := idx.ParsedRules()
	if err != nil {
		return nil, err
	}
	var symbols []string
	seen := map[string]bool{}
	for _, rule := range rules {
		switch rule.Type {
		case domain.RuleManual:
			for _, s := range rule.Symbols {
				s = strings.ToUpper(strings.TrimSpace(s))
				if s == "" || seen[s] {
					continue
				}
				seen[s] = true
				symbols = append(symbols, s)
			}
		case domain.RuleTopN, domain.RuleMarketCap, domain.RuleMomentum:
			return nil, fmt.Errorf("%w: %s", ErrRuleTypeNotSupported, rule.Type)
		default:
			return nil, fmt.Errorf("%w: %s", ErrRuleTypeNotSupported, rule.Type)
		}
	}
	return symbols, nil
}
