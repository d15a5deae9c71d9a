package indexes

import (
	"context"
	"testing"

	"indexry-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Index{}, &domain.Holding{}, &domain.RebalancePlan{}, &domain.Trade{},
	))
	return &Service{DB: db}, db
}

func TestCreateAndGetRoundtrip(t *testing.T) {
	svc, _ := setup(t)
	rules := []domain.Rule{{Type: domain.RuleManual, Symbols: []string{"AAPL", "MSFT"}}}

	created, err := svc.Create(context.Background(), "Tech", "big tech", rules)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech", got.Name)
	parsed, err := got.ParsedRules()
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, []string{"AAPL", "MSFT"}, parsed[0].Symbols)
}

func TestCreate_RequiresName(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Create(context.Background(), "  ", "", nil)
	assert.Error(t, err)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestUpdate_PartialChanges(t *testing.T) {
	svc, _ := setup(t)
	created, err := svc.Create(context.Background(), "Tech", "old", nil)
	require.NoError(t, err)

	name := "Tech 2"
	value := 12345.0
	updated, err := svc.Update(context.Background(), created.ID, UpdateParams{Name: &name, TotalValue: &value})
	require.NoError(t, err)
	assert.Equal(t, "Tech 2", updated.Name)
	assert.Equal(t, "old", updated.Description)
	assert.Equal(t, 12345.0, updated.TotalValue)
}

func TestDelete_CascadesToAllDependents(t *testing.T) {
	svc, db := setup(t)
	created, err := svc.Create(context.Background(), "Tech", "", nil)
	require.NoError(t, err)

	plan := &domain.RebalancePlan{IndexID: created.ID, Status: domain.PlanPending}
	require.NoError(t, db.Create(plan).Error)
	require.NoError(t, db.Create(&domain.Holding{IndexID: created.ID, Symbol: "AAPL", Quantity: 1}).Error)
	require.NoError(t, db.Create(&domain.Trade{
		IndexID: created.ID, RebalanceID: &plan.ID, Symbol: "AAPL",
		Side: domain.SideBuy, Quantity: 1, Status: domain.TradePending,
	}).Error)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	for _, model := range []interface{}{&domain.Holding{}, &domain.Trade{}, &domain.RebalancePlan{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("index_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := setup(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), ErrIndexNotFound)
}

func TestTargetSymbols_ManualRules(t *testing.T) {
	idx := &domain.Index{Name: "x"}
	require.NoError(t, idx.SetRules([]domain.Rule{
		{Type: domain.RuleManual, Symbols: []string{"aapl", "MSFT", " aapl "}},
		{Type: domain.RuleManual, Symbols: []string{"GOOGL", "MSFT"}},
	}))

	symbols, err := TargetSymbols(idx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, symbols)
}

func TestTargetSymbols_RankingRulesUnsupported(t *testing.T) {
	for _, ruleType := range []string{domain.RuleTopN, domain.RuleMarketCap, domain.RuleMomentum} {
		idx := &domain.Index{Name: "x"}
		require.NoError(t, idx.SetRules([]domain.Rule{{Type: ruleType, Count: 10}}))
		_, err := TargetSymbols(idx)
		assert.ErrorIs(t, err, ErrRuleTypeNotSupported, ruleType)
	}
}

func TestTargetSymbols_NoRules(t *testing.T) {
	idx := &domain.Index{Name: "x"}
	symbols, err := TargetSymbols(idx)
	require.NoError(t, err)
	assert.Empty(t, symbols)
}
