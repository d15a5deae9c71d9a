package rebalance

import (
	"errors"

	holdsvc "indexry-backend/internal/application/holdings"
	indexsvc "indexry-backend/internal/application/indexes"
	rebalsvc "indexry-backend/internal/application/rebalance"
	"indexry-backend/internal/domain"
	"indexry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handlers struct {
	DB       *gorm.DB
	Indexes  *indexsvc.Service
	Holdings *holdsvc.Service
	Planner  *rebalsvc.Planner
	Executor *rebalsvc.Executor
}

type rebalanceRequest struct {
	Action      string `json:"action"`
	RebalanceID string `json:"rebalance_id"`
	UseBroker   bool   `json:"use_broker"`
}

// Rebalance handles POST /api/v1/indices/:id/rebalance with
// action "calculate" (create a plan) or "execute" (run a pending plan).
func (h *Handlers) Rebalance(c *fiber.Ctx) error {
	indexID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}

	var req rebalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	switch req.Action {
	case "calculate":
		return h.calculate(c, indexID)
	case "execute":
		return h.execute(c, indexID, req)
	default:
		return response.Error(c, `Invalid action. Use "calculate" or "execute"`, fiber.StatusBadRequest, nil)
	}
}

func (h *Handlers) calculate(c *fiber.Ctx, indexID uuid.UUID) error {
	idx, err := h.Indexes.Get(c.Context(), indexID)
	if err != nil {
		if errors.Is(err, indexsvc.ErrIndexNotFound) {
			return response.Error(c, "Index not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to fetch index", fiber.StatusInternalServerError, nil)
	}

	targetSymbols, err := indexsvc.TargetSymbols(idx)
	if err != nil {
		if errors.Is(err, indexsvc.ErrRuleTypeNotSupported) {
			return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
		}
		return response.Error(c, "Failed to resolve index rules", fiber.StatusInternalServerError, nil)
	}

	holdings, err := h.Holdings.List(c.Context(), indexID)
	if err != nil {
		return response.Error(c, "Failed to fetch holdings", fiber.StatusInternalServerError, nil)
	}

	result, err := h.Planner.Plan(c.Context(), idx, holdings, targetSymbols)
	if err != nil {
		return response.Error(c, "Failed to calculate rebalancing", fiber.StatusInternalServerError, nil)
	}

	return response.Success(c, "Rebalancing calculated", fiber.Map{
		"rebalance_id":       result.Plan.ID,
		"orders":             result.Orders,
		"total_value":        result.TotalValue,
		"target_allocations": result.Weights,
	}, nil)
}

func (h *Handlers) execute(c *fiber.Ctx, indexID uuid.UUID, req rebalanceRequest) error {
	if req.RebalanceID == "" {
		return response.Error(c, "rebalance_id is required", fiber.StatusBadRequest, nil)
	}
	planID, err := uuid.Parse(req.RebalanceID)
	if err != nil {
		return response.Error(c, "Invalid rebalance_id", fiber.StatusBadRequest, nil)
	}

	if err := h.Executor.Execute(c.Context(), planID, indexID, req.UseBroker); err != nil {
		switch {
		case errors.Is(err, rebalsvc.ErrPlanNotFoundOrExecuted):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, rebalsvc.ErrVenueNotConnected):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Failed to execute rebalancing", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Rebalancing executed successfully", nil, nil)
}

// Plans handles GET /api/v1/indices/:id/rebalancings.
func (h *Handlers) Plans(c *fiber.Ctx) error {
	indexID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}
	var plans []domain.RebalancePlan
	if err := h.DB.WithContext(c.Context()).
		Where("index_id = ?", indexID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return response.Error(c, "Failed to fetch rebalancings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Rebalancings fetched", plans, nil)
}
