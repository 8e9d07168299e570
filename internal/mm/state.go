package mm

import (
	"time"

	"github.com/betbot/gomm/internal/discovery"
)

// ExitSlot tracks the single resting exit order for one inventory side.
type ExitSlot struct {
	OrderID       string
	Price         float64   // price the resting exit was placed at
	CooldownUntil time.Time // suppress placement until then after a benign race
}

func (e *ExitSlot) clear() {
	e.OrderID = ""
	e.Price = 0
}

// QuotedMarket is the per-market quoting state. One record per tracked
// market, owned exclusively by the cycle processor between cycles.
type QuotedMarket struct {
	Market discovery.Market

	// Quoting-mode orders, at most one per side.
	BidOrderID string
	AskOrderID string

	// MidAtPlacement is the drift baseline for the currently open quotes.
	MidAtPlacement float64

	// EntryBidPrice and EntryAskPrice are the prices the standing quotes were
	// placed at, the cost-basis anchors for exit pricing.
	EntryBidPrice float64
	EntryAskPrice float64

	// InventorySince is when inventory was first observed nonzero; zero time
	// while flat. EntryMid is the midpoint at that moment.
	InventorySince time.Time
	EntryMid       float64

	YesExit ExitSlot
	NoExit  ExitSlot
}

// HasInventory reports whether any side currently holds a real position.
func (q *QuotedMarket) HasInventory() bool {
	return !q.InventorySince.IsZero()
}

// HasActiveExits reports whether any exit order is resting.
func (q *QuotedMarket) HasActiveExits() bool {
	return q.YesExit.OrderID != "" || q.NoExit.OrderID != ""
}

// OpenOrderIDs collects every resting order id for this market.
func (q *QuotedMarket) OpenOrderIDs() []string {
	var ids []string
	for _, id := range []string{q.BidOrderID, q.AskOrderID, q.YesExit.OrderID, q.NoExit.OrderID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ClearOrders forgets every order id without touching inventory tracking.
func (q *QuotedMarket) ClearOrders() {
	q.BidOrderID = ""
	q.AskOrderID = ""
	q.YesExit.clear()
	q.NoExit.clear()
}

// clearInventory resets the inventory trace after the position is gone.
func (q *QuotedMarket) clearInventory() {
	q.InventorySince = time.Time{}
	q.EntryMid = 0
	q.YesExit.CooldownUntil = time.Time{}
	q.NoExit.CooldownUntil = time.Time{}
}
