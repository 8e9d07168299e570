package client

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/gomm/clob/types"
)

type apiKeyRaw struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// CreateOrDeriveApiKey returns working L2 credentials for the signing key.
// Derive is attempted first so a repeated nonce never fails the create path.
func (c *Client) CreateOrDeriveApiKey(ctx context.Context, nonce uint64) (types.ApiKeyCreds, error) {
	if creds, err := c.DeriveApiKey(ctx, nonce); err == nil && creds.Key != "" {
		return creds, nil
	}
	return c.CreateApiKey(ctx, nonce)
}

// CreateApiKey registers a new API key for the signing wallet.
func (c *Client) CreateApiKey(ctx context.Context, nonce uint64) (types.ApiKeyCreds, error) {
	headers, err := c.l1Headers(time.Now().Unix(), nonce)
	if err != nil {
		return types.ApiKeyCreds{}, err
	}

	var raw apiKeyRaw
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetResult(&raw).
		Post("/auth/api-key")
	if err != nil {
		return types.ApiKeyCreds{}, errors.Wrap(err, "create api key")
	}
	if resp.IsError() {
		return types.ApiKeyCreds{}, httpError(resp, "/auth/api-key")
	}
	return types.ApiKeyCreds{Key: raw.APIKey, Secret: raw.Secret, Passphrase: raw.Passphrase}, nil
}

// DeriveApiKey recovers the existing API key for the signing wallet.
func (c *Client) DeriveApiKey(ctx context.Context, nonce uint64) (types.ApiKeyCreds, error) {
	headers, err := c.l1Headers(time.Now().Unix(), nonce)
	if err != nil {
		return types.ApiKeyCreds{}, err
	}

	var raw apiKeyRaw
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetResult(&raw).
		Get("/auth/derive-api-key")
	if err != nil {
		return types.ApiKeyCreds{}, errors.Wrap(err, "derive api key")
	}
	if resp.IsError() {
		return types.ApiKeyCreds{}, httpError(resp, "/auth/derive-api-key")
	}
	return types.ApiKeyCreds{Key: raw.APIKey, Secret: raw.Secret, Passphrase: raw.Passphrase}, nil
}
