package client

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/gomm/clob/types"
)

// The exchange contracts denominate both USDC and conditional tokens in
// 6-decimal raw units.
const onchainDecimals = 6

// priceDecimals returns the number of price decimals allowed by a tick size
// string such as "0.01" or "0.001".
func priceDecimals(tickSize string) (int32, error) {
	tick, err := decimal.NewFromString(strings.TrimSpace(tickSize))
	if err != nil || tick.Sign() <= 0 {
		return 0, errors.Errorf("invalid tick size %q", tickSize)
	}
	return -tick.Exponent(), nil
}

// orderAmounts converts a human price/size into raw maker/taker amounts.
//
// BUY:  maker = collateral spent, taker = shares received.
// SELL: maker = shares sold, taker = collateral received.
// Share amounts are truncated, never rounded up: a sell that rounds above the
// held balance is rejected by the venue with a balance/allowance error.
func orderAmounts(side types.Side, price, size float64, tickSize string) (maker, taker string, err error) {
	decs, err := priceDecimals(tickSize)
	if err != nil {
		return "", "", err
	}

	p := decimal.NewFromFloat(price).Round(decs)
	if p.Sign() <= 0 {
		return "", "", errors.Errorf("price %v rounds to zero at tick %s", price, tickSize)
	}
	// Order sizes allow at most 2 decimals.
	s := decimal.NewFromFloat(size).Truncate(2)
	if s.Sign() <= 0 {
		return "", "", errors.Errorf("size %v truncates to zero", size)
	}

	shares := s.Shift(onchainDecimals).Truncate(0)
	collateral := p.Mul(s).Shift(onchainDecimals).Truncate(0)
	if shares.Sign() <= 0 || collateral.Sign() <= 0 {
		return "", "", errors.Errorf("order %v @ %v too small", size, price)
	}

	switch side {
	case types.SideBuy:
		return collateral.String(), shares.String(), nil
	case types.SideSell:
		return shares.String(), collateral.String(), nil
	default:
		return "", "", errors.Errorf("invalid side %q", side)
	}
}

// rawToShares converts a raw 6-decimal balance string into shares.
func rawToShares(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "parse balance %q", raw)
	}
	f, _ := d.Shift(-onchainDecimals).Float64()
	return f, nil
}
