package indexes

import (
	"errors"

	indexsvc "indexry-backend/internal/application/indexes"
	"indexry-backend/internal/domain"
	"indexry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *indexsvc.Service
}

type indexRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Rules       []domain.Rule `json:"rules"`
	TotalValue  *float64      `json:"total_value"`
}

// Create handles POST /api/v1/indices.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req indexRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Name == "" {
		return response.Error(c, "name is required", fiber.StatusBadRequest, nil)
	}
	idx, err := h.Service.Create(c.Context(), req.Name, req.Description, req.Rules)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Index created", idx, nil)
}

// List handles GET /api/v1/indices.
func (h *Handlers) List(c *fiber.Ctx) error {
	indices, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Failed to fetch indices", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Indices fetched", indices, nil)
}

// Get handles GET /api/v1/indices/:id.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}
	idx, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, indexsvc.ErrIndexNotFound) {
			return response.Error(c, "Index not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to fetch index", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Index fetched", idx, nil)
}

// Update handles PUT /api/v1/indices/:id.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}
	var req indexRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	params := indexsvc.UpdateParams{
		Rules:      req.Rules,
		TotalValue: req.TotalValue,
	}
	if req.Name != "" {
		params.Name = &req.Name
	}
	if req.Description != "" {
		params.Description = &req.Description
	}
	idx, err := h.Service.Update(c.Context(), id, params)
	if err != nil {
		if errors.Is(err, indexsvc.ErrIndexNotFound) {
			return response.Error(c, "Index not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to update index", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Index updated", idx, nil)
}

// Delete handles DELETE /api/v1/indices/:id. Dependent holdings, trades and
// rebalance plans go with the index in one transaction.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, indexsvc.ErrIndexNotFound) {
			return response.Error(c, "Index not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to delete index", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Index deleted", nil, nil)
}
