package mm

import (
	"math"
	"testing"
	"testing/quick"
	"time"

	"github.com/betbot/gomm/internal/discovery"
)

func testMarket(tick string, maxSpread float64) discovery.Market {
	return discovery.Market{
		Ticker:             "AAPL",
		YesTokenID:         "yes-token",
		NoTokenID:          "no-token",
		MaxIncentiveSpread: maxSpread,
		MinIncentiveSize:   100,
		TickSize:           tick,
	}
}

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		price float64
		tick  string
		want  float64
	}{
		{0.4637, "0.01", 0.46},
		{0.4655, "0.01", 0.47},
		{0.4637, "0.001", 0.464},
		{0.5, "0.01", 0.5},
		{0.123456, "0.0001", 0.1235},
	}
	for _, tt := range tests {
		if got := RoundToTick(tt.price, tt.tick); got != tt.want {
			t.Errorf("RoundToTick(%v, %q) = %v, want %v", tt.price, tt.tick, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.2, 0.01, 0.99); got != 0.99 {
		t.Errorf("Clamp high = %v, want 0.99", got)
	}
	if got := Clamp(-0.5, 0.01, 0.99); got != 0.01 {
		t.Errorf("Clamp low = %v, want 0.01", got)
	}
	if got := Clamp(0.5, 0.01, 0.99); got != 0.5 {
		t.Errorf("Clamp mid = %v, want 0.5", got)
	}
}

func TestQuotesScenario(t *testing.T) {
	// mid=0.50, maxSpread=0.05, SPREAD_PCT=0.8 -> half-spread 0.04.
	p := Pricing{SpreadPct: 0.8}
	bid, ask := p.Quotes(testMarket("0.01", 0.05), 0.50)
	if bid != 0.46 {
		t.Errorf("bid = %v, want 0.46", bid)
	}
	if ask != 0.54 {
		t.Errorf("ask = %v, want 0.54", ask)
	}
}

func TestQuotesCollapseFallback(t *testing.T) {
	// Half-spread 0.0032 rounds both sides onto the mid at a 0.01 tick; the
	// quotes must fall back to one tick either side.
	p := Pricing{SpreadPct: 0.8}
	bid, ask := p.Quotes(testMarket("0.01", 0.004), 0.50)
	if bid >= ask {
		t.Fatalf("collapse not resolved: bid %v >= ask %v", bid, ask)
	}
	if got := ask - bid; math.Abs(got-0.02) > 1e-9 {
		t.Errorf("fallback width = %v, want 0.02", got)
	}
}

func TestQuotesProperties(t *testing.T) {
	p := Pricing{SpreadPct: 0.8}
	ticks := []string{"0.01", "0.001"}

	property := func(midRaw uint16, maxSpreadRaw uint8, tickIdx uint8) bool {
		mid := 0.02 + float64(midRaw%9600)/10000.0 // [0.02, 0.98)
		tick := ticks[int(tickIdx)%len(ticks)]
		// Keep the half-spread at or above the tick so the non-fallback
		// branch is exercised; the fallback has its own test.
		halfSpread := TickFloat(tick) + float64(maxSpreadRaw%50)/1000.0
		maxSpread := halfSpread / p.SpreadPct

		bid, ask := p.Quotes(testMarket(tick, maxSpread), mid)
		if bid >= ask {
			return false
		}
		if bid < 0.001 || ask > 0.999 {
			return false
		}
		tickF := TickFloat(tick)
		for _, price := range []float64{bid, ask} {
			if price == 0.001 || price == 0.999 {
				continue // clamped, not tick-aligned by design
			}
			steps := price / tickF
			if math.Abs(steps-math.Round(steps)) > 1e-6 {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestSize(t *testing.T) {
	m := testMarket("0.01", 0.05)
	if got := (Pricing{}).Size(m); got != 100 {
		t.Errorf("Size = %v, want market minimum 100", got)
	}
	if got := (Pricing{SizeOverride: 5}).Size(m); got != 5 {
		t.Errorf("Size with override = %v, want 5", got)
	}
}

func TestExitPriceDecay(t *testing.T) {
	// entryBid=0.46, half-spread 0.04, escalation 1800s.
	p := Pricing{SpreadPct: 0.8, Escalation: 1800 * time.Second, StopLossPct: 0.05}
	m := testMarket("0.01", 0.05)

	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0.50},                 // full profit
		{900 * time.Second, 0.48}, // half decayed
		{1800 * time.Second, 0.46},
		{3600 * time.Second, 0.46}, // clamped at breakeven
	}
	for _, tt := range tests {
		got := p.ExitPrice(m, 0.50, tt.elapsed, 0.50, 0.46, InventoryYes)
		if got != tt.want {
			t.Errorf("ExitPrice(elapsed=%s) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestExitPriceNoSide(t *testing.T) {
	// NO entry cost is 1 - ask. entryAsk=0.54 -> cost 0.46 in NO space.
	p := Pricing{SpreadPct: 0.8, Escalation: 1800 * time.Second, StopLossPct: 0.05}
	m := testMarket("0.01", 0.05)

	got := p.ExitPrice(m, 0.50, 0, 0.50, 0.54, InventoryNo)
	if got != 0.50 {
		t.Errorf("NO exit at t=0 = %v, want 0.50", got)
	}
	got = p.ExitPrice(m, 0.50, 1800*time.Second, 0.50, 0.54, InventoryNo)
	if got != 0.46 {
		t.Errorf("NO exit at full decay = %v, want 0.46", got)
	}
}

func TestExitPriceStopLoss(t *testing.T) {
	p := Pricing{SpreadPct: 0.8, Escalation: 1800 * time.Second, StopLossPct: 0.05}
	m := testMarket("0.01", 0.05)

	// entryMid=0.50, mid=0.47 is a 6% adverse move for a YES holder: snap to
	// the current mid regardless of elapsed time.
	got := p.ExitPrice(m, 0.47, 0, 0.50, 0.46, InventoryYes)
	if got != 0.47 {
		t.Errorf("YES stop-loss exit = %v, want 0.47", got)
	}

	// For a NO holder the adverse direction is the mid rising.
	got = p.ExitPrice(m, 0.53, 0, 0.50, 0.54, InventoryNo)
	if got != 0.47 {
		t.Errorf("NO stop-loss exit = %v, want 0.47 (1-0.53)", got)
	}
}

func TestExitPriceStopLossProperty(t *testing.T) {
	p := Pricing{SpreadPct: 0.8, Escalation: 1800 * time.Second, StopLossPct: 0.05}
	m := testMarket("0.01", 0.05)

	// Whenever the adverse move reaches the threshold, the exit equals the
	// tick-rounded current mid no matter how much time has passed.
	property := func(elapsedSec uint16, adverseRaw uint8) bool {
		entryMid := 0.50
		adverse := 0.05 + float64(adverseRaw%40)/100.0 // >= stop loss fraction
		mid := entryMid * (1 - adverse)
		got := p.ExitPrice(m, mid, time.Duration(elapsedSec)*time.Second, entryMid, 0.46, InventoryYes)
		want := Clamp(RoundToTick(mid, m.TickSize), 0.01, 0.99)
		return got == want
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 1000}); err != nil {
		t.Error(err)
	}
}

func TestExitPriceMonotoneDecay(t *testing.T) {
	p := Pricing{SpreadPct: 0.8, Escalation: 1800 * time.Second, StopLossPct: 0.05}
	m := testMarket("0.001", 0.05)

	prev := math.Inf(1)
	for sec := 0; sec <= 2400; sec += 60 {
		got := p.ExitPrice(m, 0.50, time.Duration(sec)*time.Second, 0.50, 0.46, InventoryYes)
		if got > prev {
			t.Fatalf("exit price rose from %v to %v at %ds", prev, got, sec)
		}
		prev = got
	}
}
