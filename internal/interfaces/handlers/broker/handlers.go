package broker

import (
	brokerclient "indexry-backend/internal/broker"
	"indexry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Venue brokerclient.Venue
}

// Connect handles POST /api/v1/broker/connect.
func (h *Handlers) Connect(c *fiber.Ctx) error {
	if err := h.Venue.Connect(c.Context()); err != nil {
		return response.Error(c, "Failed to connect to broker", fiber.StatusInternalServerError,
			fiber.Map{"reason": err.Error()})
	}
	return response.Success(c, "Connected to broker", fiber.Map{"status": h.Venue.Status()}, nil)
}

// Status handles GET /api/v1/broker/connect.
func (h *Handlers) Status(c *fiber.Ctx) error {
	return response.Success(c, "Broker status", fiber.Map{"status": h.Venue.Status()}, nil)
}

// Disconnect handles DELETE /api/v1/broker/connect.
func (h *Handlers) Disconnect(c *fiber.Ctx) error {
	h.Venue.Disconnect()
	return response.Success(c, "Disconnected from broker", fiber.Map{"status": h.Venue.Status()}, nil)
}

// Positions handles GET /api/v1/broker/positions.
func (h *Handlers) Positions(c *fiber.Ctx) error {
	positions, err := h.Venue.Positions(c.Context())
	if err != nil {
		if err == brokerclient.ErrNotConnected {
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		}
		return response.Error(c, "Failed to fetch positions", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Positions fetched", positions, nil)
}

// Portfolio handles GET /api/v1/broker/portfolio.
func (h *Handlers) Portfolio(c *fiber.Ctx) error {
	portfolio, err := h.Venue.Portfolio(c.Context())
	if err != nil {
		if err == brokerclient.ErrNotConnected {
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		}
		return response.Error(c, "Failed to fetch portfolio", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Portfolio fetched", portfolio, nil)
}
