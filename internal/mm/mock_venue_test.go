package mm

import (
	"context"
	"fmt"
	"sync"

	"github.com/betbot/gomm/clob/types"
)

// mockVenue fakes the execution venue with call tracking and per-method
// error injection.
type mockVenue struct {
	mu sync.Mutex

	Balances  map[string]float64 // tokenID -> shares
	Midpoints map[string]float64 // tokenID -> mid, missing = absent

	Calls       map[string]int
	ErrorOnNext map[string]error

	Placed    []placedOrder
	Cancelled [][]string
	nextID    int
}

type placedOrder struct {
	TokenID string
	Side    types.Side
	Price   float64
	Size    float64
}

func newMockVenue() *mockVenue {
	return &mockVenue{
		Balances:    make(map[string]float64),
		Midpoints:   make(map[string]float64),
		Calls:       make(map[string]int),
		ErrorOnNext: make(map[string]error),
	}
}

func (m *mockVenue) trackCall(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
	if err, ok := m.ErrorOnNext[name]; ok {
		delete(m.ErrorOnNext, name)
		return err
	}
	return nil
}

func (m *mockVenue) PlaceLimitOrder(_ context.Context, tokenID string, side types.Side, price, size float64, _ string, _ bool) (string, error) {
	if err := m.trackCall("PlaceLimitOrder"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("order-%d", m.nextID)
	m.Placed = append(m.Placed, placedOrder{TokenID: tokenID, Side: side, Price: price, Size: size})
	return id, nil
}

func (m *mockVenue) CancelOrders(_ context.Context, orderIDs []string) error {
	if err := m.trackCall("CancelOrders"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled = append(m.Cancelled, orderIDs)
	return nil
}

func (m *mockVenue) CancelAll(_ context.Context) error {
	return m.trackCall("CancelAll")
}

func (m *mockVenue) GetConditionalBalance(_ context.Context, tokenID string) (float64, error) {
	if err := m.trackCall("GetConditionalBalance"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Balances[tokenID], nil
}

func (m *mockVenue) GetMidpoint(_ context.Context, tokenID string) (float64, bool, error) {
	if err := m.trackCall("GetMidpoint"); err != nil {
		return 0, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mid, ok := m.Midpoints[tokenID]
	return mid, ok, nil
}

func (m *mockVenue) lastPlaced() placedOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Placed[len(m.Placed)-1]
}
