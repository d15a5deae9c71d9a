package holdings

import (
	holdsvc "indexry-backend/internal/application/holdings"
	"indexry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *holdsvc.Service
}

// ByIndex handles GET /api/v1/indices/:id/holdings.
func (h *Handlers) ByIndex(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}
	holdings, err := h.Service.List(c.Context(), id)
	if err != nil {
		return response.Error(c, "Failed to fetch holdings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holdings fetched", holdings, nil)
}
