package mm

import (
	"context"

	"github.com/betbot/gomm/clob/types"
)

// Venue is the narrow execution interface the market maker consumes. The
// clob client satisfies it; tests substitute a mock.
type Venue interface {
	// PlaceLimitOrder rests a GTC order and returns the venue order id.
	PlaceLimitOrder(ctx context.Context, tokenID string, side types.Side, price, size float64, tickSize string, negRisk bool) (string, error)
	// CancelOrders cancels the given ids in one bulk request.
	CancelOrders(ctx context.Context, orderIDs []string) error
	// CancelAll cancels every open order for the account.
	CancelAll(ctx context.Context) error
	// GetConditionalBalance returns held shares for a token.
	GetConditionalBalance(ctx context.Context, tokenID string) (float64, error)
	// GetMidpoint returns the midpoint, with ok=false when the venue has no
	// usable mid (near a price boundary).
	GetMidpoint(ctx context.Context, tokenID string) (float64, bool, error)
}
