package mm

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/betbot/gomm/clob/types"
)

// CancelStrategy is the two-step cancel: a bulk cancel of specific ids, and
// a venue-wide cancel-all used only when the bulk step fails. The steps are
// plain funcs so tests can inject a failing first step.
type CancelStrategy struct {
	CancelBatch func(ctx context.Context, orderIDs []string) error
	CancelAll   func(ctx context.Context) error
}

// Cancel runs the bulk step and falls back to cancel-all on failure, logging
// both outcomes. Returns nil when either step succeeded.
func (s CancelStrategy) Cancel(ctx context.Context, log *logrus.Entry, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if err := s.CancelBatch(ctx, orderIDs); err == nil {
		log.Infof("cancelled %d orders", len(orderIDs))
		return nil
	} else if s.CancelAll == nil {
		return err
	} else {
		log.Warnf("bulk cancel failed: %v, falling back to cancel-all", err)
	}

	if err := s.CancelAll(ctx); err != nil {
		log.Errorf("cancel-all also failed: %v", err)
		return err
	}
	log.Info("cancel-all succeeded")
	return nil
}

// OrderManager wraps the venue's place/cancel primitives with logging and
// the fallback cancel strategy. Placement failures are reported, never
// escalated past the caller's slot.
type OrderManager struct {
	venue  Venue
	cancel CancelStrategy
	log    *logrus.Entry
	dryRun bool
}

func NewOrderManager(venue Venue, dryRun bool) *OrderManager {
	return &OrderManager{
		venue: venue,
		cancel: CancelStrategy{
			CancelBatch: venue.CancelOrders,
			CancelAll:   venue.CancelAll,
		},
		log:    logrus.WithField("component", "orders"),
		dryRun: dryRun,
	}
}

// Place submits one resting limit order and returns its id. label names the
// market/side for the decision log.
func (om *OrderManager) Place(ctx context.Context, label, tokenID string, side types.Side, price, size float64, tickSize string, negRisk bool) (string, error) {
	if om.dryRun {
		om.log.Infof("%s DRY %s %.2f @ $%.3f", label, side, size, price)
		return "dry-run", nil
	}
	orderID, err := om.venue.PlaceLimitOrder(ctx, tokenID, side, price, size, tickSize, negRisk)
	if err != nil {
		return "", err
	}
	om.log.Infof("%s %s %.2f @ $%.3f -> order %s", label, side, size, price, orderID)
	return orderID, nil
}

// Cancel cancels the given ids with the two-step strategy.
func (om *OrderManager) Cancel(ctx context.Context, label string, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if om.dryRun {
		om.log.Infof("%s DRY cancel %d orders", label, len(orderIDs))
		return nil
	}
	return om.cancel.Cancel(ctx, om.log.WithField("market", label), orderIDs)
}
