package mm

import (
	"math"
	"strconv"
	"time"

	"github.com/betbot/gomm/internal/discovery"
)

// InventorySide names which token a position is held in.
type InventorySide int

const (
	InventoryYes InventorySide = iota
	InventoryNo
)

func (s InventorySide) String() string {
	if s == InventoryNo {
		return "NO"
	}
	return "YES"
}

// Pricing holds the quoting parameters and exposes the pure price math.
type Pricing struct {
	SpreadPct    float64       // fraction of the market's max incentive spread
	SizeOverride float64       // fixed size in shares, 0 = market minimum
	Escalation   time.Duration // exit decay horizon, full profit to breakeven
	StopLossPct  float64       // adverse mid move fraction triggering stop-loss
}

// TickFloat parses a tick size string, defaulting to 0.01 on garbage so the
// math never divides by zero.
func TickFloat(tickSize string) float64 {
	tick, err := strconv.ParseFloat(tickSize, 64)
	if err != nil || tick <= 0 {
		return 0.01
	}
	return tick
}

// RoundToTick snaps a price to the nearest tick multiple, held to 4 decimal
// places to keep float drift out of repeated comparisons.
func RoundToTick(price float64, tickSize string) float64 {
	tick := TickFloat(tickSize)
	return math.Round(math.Round(price/tick)*tick*10000) / 10000
}

// Clamp bounds a price to [lo, hi].
func Clamp(price, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, price))
}

// Quotes computes the resting bid and ask around the midpoint. Both are
// tick-rounded and clamped to [0.001, 0.999]; if rounding collapses them the
// quotes fall back to one tick either side of the mid, so bid < ask holds for
// any tick size at or below the half-spread.
func (p Pricing) Quotes(m discovery.Market, midpoint float64) (bid, ask float64) {
	halfSpread := m.MaxIncentiveSpread * p.SpreadPct
	bid = Clamp(RoundToTick(midpoint-halfSpread, m.TickSize), 0.001, 0.999)
	ask = Clamp(RoundToTick(midpoint+halfSpread, m.TickSize), 0.001, 0.999)

	if bid >= ask {
		tick := TickFloat(m.TickSize)
		bid = Clamp(midpoint-tick, 0.001, 0.999)
		ask = Clamp(midpoint+tick, 0.001, 0.999)
	}
	return bid, ask
}

// Size returns the order size in shares: the exchange minimum incentivized
// size, or the fixed override when set. Sizing deliberately ignores available
// capital; see the configuration docs.
func (p Pricing) Size(m discovery.Market) float64 {
	if p.SizeOverride > 0 {
		return p.SizeOverride
	}
	return m.MinIncentiveSize
}

// ExitPrice computes the time-decaying exit price for a held position.
//
// The target starts at entry price plus the full half-spread (the profit the
// quote was placed to earn) and decays linearly to breakeven as elapsed
// approaches the escalation horizon. NO positions run the same math in
// NO-token space, where the entry cost is 1 minus the ask entry price.
// If the midpoint has moved against the position by StopLossPct or more
// relative to entryMid, the target snaps to the current mid and escalation is
// abandoned. Result is tick-rounded and clamped to [0.01, 0.99].
func (p Pricing) ExitPrice(m discovery.Market, mid float64, elapsed time.Duration, entryMid, entryPrice float64, side InventorySide) float64 {
	halfSpread := m.MaxIncentiveSpread * p.SpreadPct
	t := Clamp(elapsed.Seconds()/p.Escalation.Seconds(), 0, 1)

	var target float64
	switch side {
	case InventoryNo:
		target = (1 - entryPrice) + halfSpread*(1-t)
		if entryMid > 0 && (mid-entryMid)/entryMid >= p.StopLossPct {
			target = 1 - mid
		}
	default:
		target = entryPrice + halfSpread*(1-t)
		if entryMid > 0 && (entryMid-mid)/entryMid >= p.StopLossPct {
			target = mid
		}
	}
	return Clamp(RoundToTick(target, m.TickSize), 0.01, 0.99)
}
