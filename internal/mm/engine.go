package mm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gomm/internal/discovery"
	"github.com/betbot/gomm/pkg/sigchan"
)

// Engine runs the top-level poll loop: one bounded-parallel fetch pass, then
// one sequential cycle-processing pass per market, every poll interval, until
// shutdown or the daily cutoff.
type Engine struct {
	fetcher   *Fetcher
	processor *Processor
	orders    *OrderManager

	quoted       []*QuotedMarket
	pollInterval time.Duration
	shutdownTime string // ET "HH:MM", empty disables the cutoff
	wake         *sigchan.Chan

	log *logrus.Entry
	now func() time.Time
}

func NewEngine(fetcher *Fetcher, processor *Processor, orders *OrderManager, pollInterval time.Duration, shutdownTime string) *Engine {
	return &Engine{
		fetcher:      fetcher,
		processor:    processor,
		orders:       orders,
		pollInterval: pollInterval,
		shutdownTime: shutdownTime,
		wake:         sigchan.New(1),
		log:          logrus.WithField("component", "engine"),
		now:          time.Now,
	}
}

// Track registers markets for quoting. Markets with no incentive spread set
// cannot earn rewards and are skipped.
func (e *Engine) Track(markets []discovery.Market) {
	for _, m := range markets {
		if m.MaxIncentiveSpread <= 0 {
			e.log.Warnf("%s: no incentive spread set, skipping", m.Ticker)
			continue
		}
		e.quoted = append(e.quoted, &QuotedMarket{Market: m})
	}
}

// QuotedMarkets exposes the tracked states, for status printing.
func (e *Engine) QuotedMarkets() []*QuotedMarket {
	return e.quoted
}

// PlaceInitialQuotes runs one fetch+process pass to get the first quotes
// resting. Failing to place a single order anywhere is fatal: the process
// has nothing to manage.
func (e *Engine) PlaceInitialQuotes(ctx context.Context) error {
	if len(e.quoted) == 0 {
		return errors.New("no markets to quote")
	}
	e.runCycle(ctx)

	open := 0
	for _, q := range e.quoted {
		open += len(q.OpenOrderIDs())
	}
	if open == 0 {
		return errors.New("no quotes placed")
	}
	e.log.Infof("placed initial quotes on %d markets (%d orders)", len(e.quoted), open)
	return nil
}

// Run iterates poll cycles until ctx is cancelled or the daily cutoff
// passes. The cutoff performs the cancel sweep itself; interrupt-driven
// shutdown leaves the sweep to the registered shutdown handler.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-e.wake.C():
			e.log.Info("wake signal, running cycle early")
		}

		if e.pastCutoff() {
			e.log.Infof("daily cutoff %s ET reached, cancelling all orders", e.shutdownTime)
			e.CancelAllQuoted(ctx)
			return nil
		}
		e.runCycle(ctx)
	}
}

// Kick requests an immediate cycle without waiting out the poll interval.
// Safe from any goroutine; extra kicks coalesce.
func (e *Engine) Kick() {
	e.wake.Emit()
}

// runCycle is one full pass: fetch everything, then process each market.
// The fetch completes fully before processing begins, so no lock is needed
// on the state records.
func (e *Engine) runCycle(ctx context.Context) {
	cycleID := uuid.NewString()[:8]
	log := e.log.WithField("cycle", cycleID)

	data := e.fetcher.Fetch(ctx, e.quoted)
	for i, q := range e.quoted {
		e.processOne(ctx, q, data[i], log)
	}
}

// processOne isolates a single market: a panic or error there must never
// abort the other markets or the loop.
func (e *Engine) processOne(ctx context.Context, q *QuotedMarket, data MarketData, log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic processing %s: %v", q.Market.Ticker, r)
		}
	}()
	e.processor.ProcessCycle(ctx, q, data)
}

// CancelAllQuoted is the best-effort shutdown sweep: every resting order
// across every market, bulk cancel with cancel-all fallback.
func (e *Engine) CancelAllQuoted(ctx context.Context) {
	var ids []string
	for _, q := range e.quoted {
		ids = append(ids, q.OpenOrderIDs()...)
	}
	if len(ids) == 0 {
		e.log.Info("no orders to cancel")
		return
	}
	if err := e.orders.Cancel(ctx, "all", ids); err != nil {
		e.log.Errorf("shutdown sweep failed: %v", err)
		return
	}
	for _, q := range e.quoted {
		q.ClearOrders()
	}
	e.log.Infof("cancelled %d orders across %d markets", len(ids), len(e.quoted))
}

var etLocation = mustLoadET()

func mustLoadET() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}

// pastCutoff reports whether the ET wall clock has passed the configured
// daily shutdown time.
func (e *Engine) pastCutoff() bool {
	if e.shutdownTime == "" {
		return false
	}
	cutoff, err := time.Parse("15:04", e.shutdownTime)
	if err != nil {
		return false
	}
	now := e.now().In(etLocation)
	today := time.Date(now.Year(), now.Month(), now.Day(), cutoff.Hour(), cutoff.Minute(), 0, 0, etLocation)
	return !now.Before(today)
}
