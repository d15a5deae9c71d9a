package broker

import (
	"context"
	"fmt"
	"sync"
)

// Mock is an in-memory Venue for tests and dry runs. Orders for symbols in
// Fail are rejected; everything else is acknowledged with OrderStatus
// (submitted unless set otherwise).
type Mock struct {
	Fail        map[string]error
	OrderStatus string

	mu        sync.Mutex
	connected bool
	seq       int
	Placed    []OrderRequest
}

func (m *Mock) Connect(ctx context.Context) error {
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) Disconnect() {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
}

func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		return StatusConnected
	}
	return StatusDisconnected
}

func (m *Mock) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return OrderResult{}, ErrNotConnected
	}
	if err, ok := m.Fail[req.Symbol]; ok {
		return OrderResult{}, err
	}
	m.seq++
	m.Placed = append(m.Placed, req)
	status := m.OrderStatus
	if status == "" {
		status = OutcomeSubmitted
	}
	return OrderResult{OrderID: fmt.Sprintf("sim_%d", m.seq), Status: status}, nil
}

func (m *Mock) Positions(ctx context.Context) ([]Position, error) {
	if m.Status() != StatusConnected {
		return nil, ErrNotConnected
	}
	return []Position{}, nil
}

func (m *Mock) Portfolio(ctx context.Context) ([]PortfolioEntry, error) {
	if m.Status() != StatusConnected {
		return nil, ErrNotConnected
	}
	return []PortfolioEntry{}, nil
}
