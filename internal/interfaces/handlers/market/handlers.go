package market

import (
	"strings"
	"time"

	"indexry-backend/internal/marketdata"
	"indexry-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Prices *marketdata.Service
}

type priceData struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Timestamp     string  `json:"timestamp"`
}

// GetPrices handles GET /api/v1/market/prices?symbols=AAPL,MSFT.
func (h *Handlers) GetPrices(c *fiber.Ctx) error {
	symbolsParam := c.Query("symbols")
	if symbolsParam == "" {
		return response.Error(c, "symbols parameter is required", fiber.StatusBadRequest, nil)
	}

	symbols := strings.Split(symbolsParam, ",")
	prices := h.Prices.Prices(c.Context(), symbols)

	now := time.Now().UTC().Format(time.RFC3339)
	data := make([]priceData, 0, len(prices))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if price, ok := prices[symbol]; ok {
			data = append(data, priceData{
				Symbol:    symbol,
				Price:     price,
				Timestamp: now,
			})
		}
	}
	return response.Success(c, "Prices fetched", data, nil)
}
