package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"

	orderbuilder "github.com/polymarket/go-order-utils/pkg/builder"
	ordermodel "github.com/polymarket/go-order-utils/pkg/model"
	"github.com/pkg/errors"

	"github.com/betbot/gomm/clob/types"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// signedOrderJSON is the wire shape the /order endpoint expects.
type signedOrderJSON struct {
	Salt          int64      `json:"salt"`
	Maker         string     `json:"maker"`
	Signer        string     `json:"signer"`
	Taker         string     `json:"taker"`
	TokenID       string     `json:"tokenId"`
	MakerAmount   string     `json:"makerAmount"`
	TakerAmount   string     `json:"takerAmount"`
	Expiration    string     `json:"expiration"`
	Nonce         string     `json:"nonce"`
	FeeRateBps    string     `json:"feeRateBps"`
	Side          types.Side `json:"side"`
	SignatureType int        `json:"signatureType"`
	Signature     string     `json:"signature"`
}

type postOrderPayload struct {
	Order     signedOrderJSON `json:"order"`
	Owner     string          `json:"owner"`
	OrderType types.OrderType `json:"orderType"`
	DeferExec bool            `json:"deferExec"`
}

// PlaceLimitOrder signs and posts a GTC limit order, returning the venue
// order id. negRisk selects the NegRiskCTFExchange verifying contract.
func (c *Client) PlaceLimitOrder(ctx context.Context, tokenID string, side types.Side, price, size float64, tickSize string, negRisk bool) (string, error) {
	creds, err := c.apiCreds()
	if err != nil {
		return "", err
	}
	if err := c.rateLimiter.Wait(ctx, "clob:order:post"); err != nil {
		return "", err
	}

	makerAmt, takerAmt, err := orderAmounts(side, price, size, tickSize)
	if err != nil {
		return "", err
	}

	sideEnum := ordermodel.BUY
	if side == types.SideSell {
		sideEnum = ordermodel.SELL
	}
	contract := ordermodel.CTFExchange
	if negRisk {
		contract = ordermodel.NegRiskCTFExchange
	}

	feeBps, err := c.GetFeeRateBps(ctx, tokenID)
	if err != nil {
		// The base fee is 0 on nearly every market; a transient failure
		// here should not block quoting.
		feeBps = 0
	}

	od := &ordermodel.OrderData{
		Maker:         c.funder.Hex(),
		Taker:         zeroAddress,
		TokenId:       tokenID,
		MakerAmount:   makerAmt,
		TakerAmount:   takerAmt,
		FeeRateBps:    strconv.Itoa(feeBps),
		Nonce:         "0",
		Signer:        c.signer.Hex(),
		Expiration:    "0",
		Side:          sideEnum,
		SignatureType: ordermodel.SignatureType(c.sigType),
	}

	builder := orderbuilder.NewExchangeOrderBuilderImpl(big.NewInt(int64(c.chainID)), rand.Int63)
	signed, err := builder.BuildSignedOrder(c.privateKey, od, contract)
	if err != nil {
		return "", errors.Wrap(err, "sign order")
	}

	payload := postOrderPayload{
		Owner:     creds.Key,
		OrderType: types.OrderTypeGTC,
		DeferExec: false,
		Order: signedOrderJSON{
			Salt:          signed.Salt.Int64(),
			Maker:         signed.Maker.Hex(),
			Signer:        signed.Signer.Hex(),
			Taker:         signed.Taker.Hex(),
			TokenID:       signed.TokenId.String(),
			MakerAmount:   signed.MakerAmount.String(),
			TakerAmount:   signed.TakerAmount.String(),
			Expiration:    signed.Expiration.String(),
			Nonce:         signed.Nonce.String(),
			FeeRateBps:    signed.FeeRateBps.String(),
			Side:          side,
			SignatureType: int(signed.SignatureType.Int64()),
			Signature:     "0x" + fmt.Sprintf("%x", signed.Signature),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal order")
	}

	headers, err := c.l2Headers(c.authTimestamp(ctx), "POST", "/order", body)
	if err != nil {
		return "", err
	}

	var orderResp types.OrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&orderResp).
		Post("/order")
	if err != nil {
		return "", errors.Wrap(err, "post order")
	}
	if resp.IsError() {
		err := httpError(resp, "/order")
		if IsNotEnoughBalance(err) {
			return "", errors.Wrap(ErrNotEnoughBalance, err.Error())
		}
		return "", err
	}
	if !orderResp.Success || orderResp.ErrorMsg != "" {
		if IsNotEnoughBalance(errors.New(orderResp.ErrorMsg)) {
			return "", errors.Wrap(ErrNotEnoughBalance, orderResp.ErrorMsg)
		}
		return "", errors.Errorf("order rejected: %s", orderResp.ErrorMsg)
	}
	return orderResp.OrderID, nil
}

// CancelOrders cancels the given order ids in one request. Ids the venue no
// longer knows (already filled or cancelled) do not fail the call.
func (c *Client) CancelOrders(ctx context.Context, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if err := c.rateLimiter.Wait(ctx, "clob:order:cancel"); err != nil {
		return err
	}

	body, err := json.Marshal(orderIDs)
	if err != nil {
		return errors.Wrap(err, "marshal cancel")
	}
	headers, err := c.l2Headers(c.authTimestamp(ctx), "DELETE", "/orders", body)
	if err != nil {
		return err
	}

	var cancelResp types.CancelResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&cancelResp).
		Delete("/orders")
	if err != nil {
		return errors.Wrap(err, "cancel orders")
	}
	if resp.IsError() {
		return httpError(resp, "/orders")
	}
	return nil
}

// CancelAll cancels every open order for this account. Last-resort sweep.
func (c *Client) CancelAll(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx, "clob:order:cancel"); err != nil {
		return err
	}
	headers, err := c.l2Headers(c.authTimestamp(ctx), "DELETE", "/cancel-all", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		Delete("/cancel-all")
	if err != nil {
		return errors.Wrap(err, "cancel all")
	}
	if resp.IsError() {
		return httpError(resp, "/cancel-all")
	}
	return nil
}

// authTimestamp is the local clock; the CLOB tolerates small skew and the
// /time endpoint is available for callers that need to resync.
func (c *Client) authTimestamp(_ context.Context) int64 {
	return nowUnix()
}
