package client

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/gomm/clob/types"
)

func nowUnix() int64 { return time.Now().Unix() }

// GetMidpoint fetches the current midpoint for a token. A zero or missing
// mid is reported as (0, false): near-boundary markets legitimately have no
// usable midpoint.
func (c *Client) GetMidpoint(ctx context.Context, tokenID string) (float64, bool, error) {
	if err := c.rateLimiter.Wait(ctx, "clob:data:get"); err != nil {
		return 0, false, err
	}

	var mid types.MidpointResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token_id", tokenID).
		SetResult(&mid).
		Get("/midpoint")
	if err != nil {
		return 0, false, errors.Wrap(err, "get midpoint")
	}
	if resp.IsError() {
		return 0, false, httpError(resp, "/midpoint")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(mid.Mid), 64)
	if err != nil || v <= 0 {
		return 0, false, nil
	}
	return v, true, nil
}

// GetConditionalBalance returns the share balance for a conditional token.
func (c *Client) GetConditionalBalance(ctx context.Context, tokenID string) (float64, error) {
	resp, err := c.getBalanceAllowance(ctx, types.AssetTypeConditional, tokenID)
	if err != nil {
		return 0, err
	}
	return rawToShares(resp.Balance)
}

// GetCollateralBalance returns the USDC balance available for trading.
func (c *Client) GetCollateralBalance(ctx context.Context) (float64, error) {
	resp, err := c.getBalanceAllowance(ctx, types.AssetTypeCollateral, "")
	if err != nil {
		return 0, err
	}
	return rawToShares(resp.Balance)
}

// RefreshBalanceAllowance forces the CLOB to resync its cached on-chain
// balance and allowance for a token. Run once per token before quoting.
func (c *Client) RefreshBalanceAllowance(ctx context.Context, tokenID string) error {
	_, err := c.balanceAllowanceCall(ctx, "/balance-allowance/update", types.AssetTypeConditional, tokenID)
	return err
}

func (c *Client) getBalanceAllowance(ctx context.Context, assetType types.AssetType, tokenID string) (*types.BalanceAllowanceResponse, error) {
	return c.balanceAllowanceCall(ctx, "/balance-allowance", assetType, tokenID)
}

func (c *Client) balanceAllowanceCall(ctx context.Context, path string, assetType types.AssetType, tokenID string) (*types.BalanceAllowanceResponse, error) {
	if err := c.rateLimiter.Wait(ctx, "clob:data:get"); err != nil {
		return nil, err
	}
	headers, err := c.l2Headers(nowUnix(), "GET", path, nil)
	if err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("asset_type", string(assetType)).
		SetQueryParam("signature_type", strconv.Itoa(int(c.sigType)))
	if tokenID != "" {
		req.SetQueryParam("token_id", tokenID)
	}

	var out types.BalanceAllowanceResponse
	resp, err := req.SetResult(&out).Get(path)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", path)
	}
	if resp.IsError() {
		return nil, httpError(resp, path)
	}
	return &out, nil
}

// GetTickSize returns the token's tick size, cached after the first call.
func (c *Client) GetTickSize(ctx context.Context, tokenID string) (string, error) {
	if v, ok := c.tickSize.Get(tokenID); ok && v != "" {
		return v, nil
	}

	if err := c.rateLimiter.Wait(ctx, "clob:data:get"); err != nil {
		return "", err
	}
	var out types.TickSizeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token_id", tokenID).
		SetResult(&out).
		Get("/tick-size")
	if err != nil {
		return "", errors.Wrap(err, "get tick size")
	}
	if resp.IsError() {
		return "", httpError(resp, "/tick-size")
	}
	if out.MinimumTickSize == "" {
		return "", errors.New("tick size missing in response")
	}

	c.tickSize.Set(tokenID, out.MinimumTickSize, 0)
	return out.MinimumTickSize, nil
}

// GetNegRisk reports whether the token's market settles through the neg-risk
// adapter, cached after the first call.
func (c *Client) GetNegRisk(ctx context.Context, tokenID string) (bool, error) {
	if v, ok := c.negRisk.Get(tokenID); ok {
		return v, nil
	}

	if err := c.rateLimiter.Wait(ctx, "clob:data:get"); err != nil {
		return false, err
	}
	var out types.NegRiskResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token_id", tokenID).
		SetResult(&out).
		Get("/neg-risk")
	if err != nil {
		return false, errors.Wrap(err, "get neg risk")
	}
	if resp.IsError() {
		return false, httpError(resp, "/neg-risk")
	}

	c.negRisk.Set(tokenID, out.NegRisk, 0)
	return out.NegRisk, nil
}

// GetFeeRateBps returns the maker fee rate for a token, cached.
func (c *Client) GetFeeRateBps(ctx context.Context, tokenID string) (int, error) {
	if v, ok := c.feeRate.Get(tokenID); ok {
		return v, nil
	}

	if err := c.rateLimiter.Wait(ctx, "clob:data:get"); err != nil {
		return 0, err
	}
	var out struct {
		BaseFee int `json:"base_fee"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token_id", tokenID).
		SetResult(&out).
		Get("/fee-rate")
	if err != nil {
		return 0, errors.Wrap(err, "get fee rate")
	}
	if resp.IsError() {
		return 0, httpError(resp, "/fee-rate")
	}

	c.feeRate.Set(tokenID, out.BaseFee, 0)
	return out.BaseFee, nil
}
