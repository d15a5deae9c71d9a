package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// GatewayClient is a Venue backed by a local brokerage gateway's REST API
// (IBKR Client Portal style: an authenticated gateway process on localhost).
type GatewayClient struct {
	BaseURL   string
	AccountID string
	Client    *http.Client

	mu     sync.Mutex
	status Status
}

type gatewayAuthStatus struct {
	Authenticated bool `json:"authenticated"`
	Connected     bool `json:"connected"`
}

type gatewayOrderAck struct {
	OrderID     string `json:"order_id"`
	ID          string `json:"id"` // some gateway versions use "id"
	OrderStatus string `json:"order_status"`
}

type gatewayPosition struct {
	ContractDesc string  `json:"contractDesc"`
	Position     float64 `json:"position"`
	AvgCost      float64 `json:"avgCost"`
	MktPrice     float64 `json:"mktPrice"`
	MktValue     float64 `json:"mktValue"`
	UnrealizedPnl float64 `json:"unrealizedPnl"`
}

func (g *GatewayClient) httpClient() *http.Client {
	if g.Client == nil {
		g.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return g.Client
}

func (g *GatewayClient) setStatus(s Status) {
	g.mu.Lock()
	g.status = s
	g.mu.Unlock()
}

// Status returns the last observed connection state.
func (g *GatewayClient) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == "" {
		return StatusDisconnected
	}
	return g.status
}

// Connect verifies the gateway session is authenticated and marks the client
// connected. The gateway itself owns the brokerage session; this call only
// confirms it is live.
func (g *GatewayClient) Connect(ctx context.Context) error {
	if g.Status() == StatusConnected {
		return nil
	}
	g.setStatus(StatusConnecting)

	var auth gatewayAuthStatus
	if err := g.doJSON(ctx, http.MethodPost, "/v1/api/iserver/auth/status", nil, &auth); err != nil {
		g.setStatus(StatusDisconnected)
		return err
	}
	if !auth.Authenticated {
		g.setStatus(StatusDisconnected)
		return fmt.Errorf("broker: gateway session not authenticated")
	}
	g.setStatus(StatusConnected)
	return nil
}

// Disconnect drops the local connection state. The gateway session stays up.
func (g *GatewayClient) Disconnect() {
	g.setStatus(StatusDisconnected)
}

// PlaceOrder submits a market or limit order through the gateway.
func (g *GatewayClient) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if g.Status() != StatusConnected {
		return OrderResult{}, ErrNotConnected
	}

	body := map[string]interface{}{
		"orders": []map[string]interface{}{{
			"ticker":    req.Symbol,
			"side":      strings.ToUpper(req.Side),
			"quantity":  req.Quantity,
			"orderType": strings.ToUpper(req.OrderType),
			"tif":       "DAY",
		}},
	}
	if req.OrderType == "limit" && req.LimitPrice > 0 {
		body["orders"].([]map[string]interface{})[0]["price"] = req.LimitPrice
	}

	var acks []gatewayOrderAck
	path := fmt.Sprintf("/v1/api/iserver/account/%s/orders", g.AccountID)
	if err := g.doJSON(ctx, http.MethodPost, path, body, &acks); err != nil {
		return OrderResult{}, err
	}
	if len(acks) == 0 {
		return OrderResult{}, fmt.Errorf("broker: gateway returned no order acknowledgement")
	}

	ack := acks[0]
	orderID := ack.OrderID
	if orderID == "" {
		orderID = ack.ID
	}
	status := OutcomeSubmitted
	if strings.EqualFold(ack.OrderStatus, "Filled") {
		status = OutcomeFilled
	}
	return OrderResult{OrderID: orderID, Status: status}, nil
}

// Positions returns open positions for the configured account.
func (g *GatewayClient) Positions(ctx context.Context) ([]Position, error) {
	raw, err := g.fetchPositions(ctx)
	if err != nil {
		return nil, err
	}
	positions := make([]Position, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, Position{
			Symbol:      p.ContractDesc,
			Quantity:    p.Position,
			AverageCost: p.AvgCost,
		})
	}
	return positions, nil
}

// Portfolio returns valued positions for the configured account.
func (g *GatewayClient) Portfolio(ctx context.Context) ([]PortfolioEntry, error) {
	raw, err := g.fetchPositions(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]PortfolioEntry, 0, len(raw))
	for _, p := range raw {
		entries = append(entries, PortfolioEntry{
			Symbol:        p.ContractDesc,
			Quantity:      p.Position,
			MarketPrice:   p.MktPrice,
			MarketValue:   p.MktValue,
			UnrealizedPnL: p.UnrealizedPnl,
		})
	}
	return entries, nil
}

func (g *GatewayClient) fetchPositions(ctx context.Context) ([]gatewayPosition, error) {
	if g.Status() != StatusConnected {
		return nil, ErrNotConnected
	}
	var raw []gatewayPosition
	path := fmt.Sprintf("/v1/api/portfolio/%s/positions/0", g.AccountID)
	if err := g.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (g *GatewayClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if g.BaseURL == "" {
		return fmt.Errorf("broker: gateway URL is not set")
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(g.BaseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("broker: gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("broker: gateway error: status %d body: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("broker: gateway response decode: %w", err)
		}
	}
	return nil
}
