package mm

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	clobclient "github.com/betbot/gomm/clob/client"
	"github.com/betbot/gomm/clob/types"
)

// Processor is the per-market cycle state machine. It owns each QuotedMarket
// exclusively between cycles (single writer) and never lets a venue failure
// escape: every transition leaves the state usable for the next cycle.
type Processor struct {
	orders  *OrderManager
	pricing Pricing

	RefreshThreshold float64       // fractional mid drift before cancel+re-place
	MinQuotableMid   float64       // park the market below this midpoint
	DustThreshold    float64       // shares below this are not a position
	ExitCooldown     time.Duration // wait after a benign balance race

	log *logrus.Entry
	now func() time.Time
}

func NewProcessor(orders *OrderManager, pricing Pricing, refreshThreshold, minQuotableMid, dustThreshold float64, exitCooldown time.Duration) *Processor {
	return &Processor{
		orders:           orders,
		pricing:          pricing,
		RefreshThreshold: refreshThreshold,
		MinQuotableMid:   minQuotableMid,
		DustThreshold:    dustThreshold,
		ExitCooldown:     exitCooldown,
		log:              logrus.WithField("component", "cycle"),
		now:              time.Now,
	}
}

// ProcessCycle advances one market by one poll cycle given fresh reads.
// Transitions run in a fixed order; any unknown input degrades to the safest
// no-op for the affected transition rather than failing the cycle.
func (p *Processor) ProcessCycle(ctx context.Context, q *QuotedMarket, data MarketData) {
	log := p.log.WithField("market", q.Market.Ticker)
	now := p.now()

	balancesKnown := data.YesBalance != nil && data.NoBalance != nil

	// A transient balance failure must not cancel live exit orders.
	if !balancesKnown && q.HasActiveExits() {
		log.Warn("balance read missing with exits resting, skipping cycle")
		return
	}
	if data.Midpoint == nil {
		log.Warn("midpoint unknown, skipping cycle")
		return
	}
	mid := *data.Midpoint

	// Near a price boundary no valid two-sided quote exists: park the market.
	if mid < p.MinQuotableMid {
		if ids := q.OpenOrderIDs(); len(ids) > 0 {
			if err := p.orders.Cancel(ctx, q.Market.Ticker, ids); err == nil {
				q.ClearOrders()
			}
		}
		log.Infof("mid %.4f below quotable floor %.4f, parked", mid, p.MinQuotableMid)
		return
	}

	// Holding inventory with unknown balances: nothing below is safe.
	if !balancesKnown && q.HasInventory() {
		log.Warn("balance read missing while holding inventory, skipping cycle")
		return
	}

	yesBal := deref(data.YesBalance)
	noBal := deref(data.NoBalance)

	if balancesKnown {
		p.trackInventory(ctx, q, yesBal, noBal, mid, now, log)
	}

	p.manageQuotes(ctx, q, yesBal, noBal, mid, log)

	if balancesKnown && q.HasInventory() {
		p.manageExit(ctx, q, InventoryYes, yesBal, mid, now, log)
		p.manageExit(ctx, q, InventoryNo, noBal, mid, now, log)
	}
}

// trackInventory stamps or clears the inventory trace on transitions.
func (p *Processor) trackInventory(ctx context.Context, q *QuotedMarket, yesBal, noBal, mid float64, now time.Time, log *logrus.Entry) {
	held := yesBal >= p.DustThreshold || noBal >= p.DustThreshold

	switch {
	case held && !q.HasInventory():
		q.InventorySince = now
		q.EntryMid = mid
		log.Infof("inventory detected (yes=%.2f no=%.2f), entry mid %.4f", yesBal, noBal, mid)

	case !held && q.HasInventory():
		// Exit filled, or a delayed balance read caught up. Stale exit orders
		// are cancelled; their ids survive a failed cancel for the next cycle.
		var stale []string
		if q.YesExit.OrderID != "" {
			stale = append(stale, q.YesExit.OrderID)
		}
		if q.NoExit.OrderID != "" {
			stale = append(stale, q.NoExit.OrderID)
		}
		if len(stale) > 0 {
			if err := p.orders.Cancel(ctx, q.Market.Ticker, stale); err != nil {
				return
			}
			q.YesExit.clear()
			q.NoExit.clear()
		}
		q.clearInventory()
		log.Info("inventory cleared")
	}
}

// manageQuotes keeps the wanted quote sides resting and fresh. A side is
// wanted only while its inventory is below the dust threshold; holding
// inventory on a side means stop adding to that exposure.
func (p *Processor) manageQuotes(ctx context.Context, q *QuotedMarket, yesBal, noBal, mid float64, log *logrus.Entry) {
	wantBid := yesBal < p.DustThreshold
	wantAsk := noBal < p.DustThreshold

	if !wantBid && q.BidOrderID != "" {
		if err := p.orders.Cancel(ctx, q.Market.Ticker, []string{q.BidOrderID}); err == nil {
			q.BidOrderID = ""
			log.Info("bid cancelled, YES inventory held")
		}
	}
	if !wantAsk && q.AskOrderID != "" {
		if err := p.orders.Cancel(ctx, q.Market.Ticker, []string{q.AskOrderID}); err == nil {
			q.AskOrderID = ""
			log.Info("ask cancelled, NO inventory held")
		}
	}

	drifted := false
	if q.MidAtPlacement > 0 {
		driftPct := math.Abs(mid-q.MidAtPlacement) / q.MidAtPlacement
		if driftPct > p.RefreshThreshold {
			drifted = true
			log.Infof("mid drift %.1f%% (open %.4f now %.4f), refreshing", driftPct*100, q.MidAtPlacement, mid)
		}
	}

	needBid := wantBid && (q.BidOrderID == "" || drifted)
	needAsk := wantAsk && (q.AskOrderID == "" || drifted)
	if !needBid && !needAsk {
		return
	}

	// Refresh both wanted sides together to avoid a transient one-sided
	// window, and never place before the stale orders are confirmed gone.
	var stale []string
	if wantBid && q.BidOrderID != "" {
		stale = append(stale, q.BidOrderID)
	}
	if wantAsk && q.AskOrderID != "" {
		stale = append(stale, q.AskOrderID)
	}
	if len(stale) > 0 {
		if err := p.orders.Cancel(ctx, q.Market.Ticker, stale); err != nil {
			log.Warnf("quote cancel failed, deferring re-place: %v", err)
			return
		}
		if wantBid {
			q.BidOrderID = ""
		}
		if wantAsk {
			q.AskOrderID = ""
		}
	}

	bid, ask := p.pricing.Quotes(q.Market, mid)
	size := p.pricing.Size(q.Market)

	if wantBid {
		id, err := p.orders.Place(ctx, q.Market.Ticker+" bid", q.Market.YesTokenID,
			types.SideBuy, bid, size, q.Market.TickSize, q.Market.NegRisk)
		if err != nil {
			log.Errorf("bid place failed: %v", err)
		} else {
			q.BidOrderID = id
			q.EntryBidPrice = bid
		}
	}
	if wantAsk {
		// The ask rests as a NO-token buy at the complement price, which is
		// equivalent to selling YES at the ask.
		noPrice := RoundToTick(1-ask, q.Market.TickSize)
		id, err := p.orders.Place(ctx, q.Market.Ticker+" ask", q.Market.NoTokenID,
			types.SideBuy, noPrice, size, q.Market.TickSize, q.Market.NegRisk)
		if err != nil {
			log.Errorf("ask place failed: %v", err)
		} else {
			q.AskOrderID = id
			q.EntryAskPrice = ask
		}
	}
	q.MidAtPlacement = mid
}

// manageExit keeps one side's exit order resting at the current target
// price, repricing when the target moves by a tick or more.
func (p *Processor) manageExit(ctx context.Context, q *QuotedMarket, side InventorySide, balance, mid float64, now time.Time, log *logrus.Entry) {
	if balance < p.DustThreshold {
		return
	}

	slot := &q.YesExit
	tokenID := q.Market.YesTokenID
	entryPrice := q.EntryBidPrice
	if side == InventoryNo {
		slot = &q.NoExit
		tokenID = q.Market.NoTokenID
		entryPrice = q.EntryAskPrice
	}
	if now.Before(slot.CooldownUntil) {
		return
	}
	if entryPrice == 0 {
		// Position predates this process (or the quote fill was never
		// anchored); fall back to the mid observed at detection.
		entryPrice = q.EntryMid
	}

	target := p.pricing.ExitPrice(q.Market, mid, now.Sub(q.InventorySince), q.EntryMid, entryPrice, side)
	label := q.Market.Ticker + "/" + side.String()

	if slot.OrderID != "" {
		tick := TickFloat(q.Market.TickSize)
		if math.Abs(target-slot.Price) < tick-1e-9 {
			return // resting exit is still at the right price
		}
		if err := p.orders.Cancel(ctx, label, []string{slot.OrderID}); err != nil {
			return
		}
		slot.clear()
	}

	shares := math.Floor(balance*100) / 100
	if shares <= 0 {
		return
	}
	id, err := p.orders.Place(ctx, label+" exit", tokenID, types.SideSell, target, shares, q.Market.TickSize, q.Market.NegRisk)
	if err != nil {
		if clobclient.IsNotEnoughBalance(err) {
			// The position was sold or settled between the balance read and
			// this placement. Resolved, not an error.
			slot.CooldownUntil = now.Add(p.ExitCooldown)
			log.Infof("exit race on %s, balance already gone, cooldown %s", label, p.ExitCooldown)
			return
		}
		log.Errorf("%s exit place failed: %v", label, err)
		return
	}
	slot.OrderID = id
	slot.Price = target
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
