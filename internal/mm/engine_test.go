package mm

import (
	"context"
	"testing"
	"time"

	"github.com/betbot/gomm/internal/discovery"
)

func newTestEngine(venue *mockVenue, shutdownTime string) *Engine {
	orders := NewOrderManager(venue, false)
	pricing := Pricing{SpreadPct: 0.8, Escalation: 1800 * time.Second, StopLossPct: 0.05}
	proc := NewProcessor(orders, pricing, 0.02, 0.05, 1.0, 3*time.Second)
	return NewEngine(NewFetcher(venue, 3), proc, orders, time.Second, shutdownTime)
}

func TestEngineTrackSkipsNoIncentive(t *testing.T) {
	e := newTestEngine(newMockVenue(), "")
	m1 := testMarket("0.01", 0.05)
	m2 := testMarket("0.01", 0)
	m2.Ticker = "TSLA"

	e.Track([]discovery.Market{m1, m2})
	if len(e.QuotedMarkets()) != 1 {
		t.Fatalf("tracked %d markets, want 1", len(e.QuotedMarkets()))
	}
	if e.QuotedMarkets()[0].Market.Ticker != "AAPL" {
		t.Errorf("wrong market tracked: %s", e.QuotedMarkets()[0].Market.Ticker)
	}
}

func TestEnginePlaceInitialQuotes(t *testing.T) {
	venue := newMockVenue()
	venue.Midpoints["yes-token"] = 0.50
	e := newTestEngine(venue, "")
	e.Track([]discovery.Market{testMarket("0.01", 0.05)})

	if err := e.PlaceInitialQuotes(context.Background()); err != nil {
		t.Fatalf("PlaceInitialQuotes: %v", err)
	}
	if len(venue.Placed) != 2 {
		t.Errorf("placed %d orders, want 2", len(venue.Placed))
	}
}

func TestEnginePlaceInitialQuotesFatalWhenNonePlace(t *testing.T) {
	venue := newMockVenue() // no midpoint: nothing can be priced
	e := newTestEngine(venue, "")
	e.Track([]discovery.Market{testMarket("0.01", 0.05)})

	if err := e.PlaceInitialQuotes(context.Background()); err == nil {
		t.Fatal("expected fatal error when no quotes place")
	}
}

func TestEngineCancelAllQuoted(t *testing.T) {
	venue := newMockVenue()
	e := newTestEngine(venue, "")
	e.Track([]discovery.Market{testMarket("0.01", 0.05)})
	q := e.QuotedMarkets()[0]
	q.BidOrderID = "bid-1"
	q.YesExit.OrderID = "exit-1"

	e.CancelAllQuoted(context.Background())

	if len(venue.Cancelled) != 1 || len(venue.Cancelled[0]) != 2 {
		t.Fatalf("expected one sweep of 2 orders, got %v", venue.Cancelled)
	}
	if len(q.OpenOrderIDs()) != 0 {
		t.Errorf("orders not cleared after sweep")
	}
}

func TestEnginePastCutoff(t *testing.T) {
	e := newTestEngine(newMockVenue(), "15:50")

	tests := []struct {
		etClock string
		want    bool
	}{
		{"2026-02-11 15:49", false},
		{"2026-02-11 15:50", true},
		{"2026-02-11 16:30", true},
		{"2026-02-11 09:00", false},
	}
	for _, tt := range tests {
		clock, err := time.ParseInLocation("2006-01-02 15:04", tt.etClock, etLocation)
		if err != nil {
			t.Fatal(err)
		}
		e.now = func() time.Time { return clock }
		if got := e.pastCutoff(); got != tt.want {
			t.Errorf("pastCutoff at %s ET = %v, want %v", tt.etClock, got, tt.want)
		}
	}
}

func TestEngineNoCutoffConfigured(t *testing.T) {
	e := newTestEngine(newMockVenue(), "")
	if e.pastCutoff() {
		t.Error("cutoff triggered with no shutdown time configured")
	}
}
