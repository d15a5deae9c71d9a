package broker

import (
	"context"
	"errors"
)

// Connection states reported by a venue.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Order outcomes reported by a venue.
const (
	OutcomeSubmitted = "submitted"
	OutcomeFilled    = "filled"
)

// ErrNotConnected is returned by venue calls that require an open connection.
var ErrNotConnected = errors.New("broker: not connected")

// OrderRequest describes an order to place with the venue.
type OrderRequest struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Quantity   float64 `json:"quantity"`
	OrderType  string  `json:"order_type"`
	LimitPrice float64 `json:"limit_price,omitempty"`
}

// OrderResult is the venue's acknowledgement of a placed order.
type OrderResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Position is an open position as reported by the venue.
type Position struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"average_cost"`
}

// PortfolioEntry is a valued position as reported by the venue.
type PortfolioEntry struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	MarketPrice   float64 `json:"market_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// Venue is the brokerage connection: connect/disconnect lifecycle, order
// placement and position queries. Implementations must be safe for use from
// multiple requests; a handle is injected wherever it is needed rather than
// shared through a package-level singleton.
type Venue interface {
	Connect(ctx context.Context) error
	Disconnect()
	Status() Status
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	Positions(ctx context.Context) ([]Position, error)
	Portfolio(ctx context.Context) ([]PortfolioEntry, error)
}
