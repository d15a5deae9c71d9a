package trades

import (
	tradesvc "indexry-backend/internal/application/trades"
	"indexry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *tradesvc.Service
}

// ByIndex handles GET /api/v1/indices/:id/trades.
func (h *Handlers) ByIndex(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid index id", fiber.StatusBadRequest, nil)
	}
	trades, err := h.Service.ListByIndex(c.Context(), id)
	if err != nil {
		return response.Error(c, "Failed to fetch trades", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Trades fetched", trades, nil)
}
