package client

import (
	"context"
	"crypto/ecdsa"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/gomm/clob/signing"
	"github.com/betbot/gomm/clob/types"
	"github.com/betbot/gomm/pkg/cache"
	"github.com/betbot/gomm/pkg/ratelimit"
)

const DefaultHost = "https://clob.polymarket.com"

// Client talks to the Polymarket CLOB REST API. It owns the signing key,
// the L2 API credentials, and per-endpoint rate limiting. All methods are
// safe for concurrent use.
type Client struct {
	host        string
	http        *resty.Client
	chainID     types.Chain
	privateKey  *ecdsa.PrivateKey
	signer      common.Address
	funder      common.Address
	sigType     types.SignatureType
	rateLimiter *ratelimit.Manager

	mu    sync.RWMutex
	creds *types.ApiKeyCreds

	tickSize *cache.Memory[string, string]
	negRisk  *cache.Memory[string, bool]
	feeRate  *cache.Memory[string, int]
}

// Market metadata is stable for the life of a daily market.
const metadataTTL = 6 * time.Hour

// NewClient builds a client for the given host and signing key. The funder is
// the address that holds funds; for proxy wallets it differs from the signer
// and sigType should be SignatureTypeGnosisSafe.
func NewClient(host string, chainID types.Chain, privateKey *ecdsa.PrivateKey, funder common.Address, sigType types.SignatureType) (*Client, error) {
	if privateKey == nil {
		return nil, errors.New("private key required")
	}
	if host == "" {
		host = DefaultHost
	}
	host = strings.TrimRight(host, "/")

	signer := crypto.PubkeyToAddress(privateKey.PublicKey)
	if (funder == common.Address{}) {
		funder = signer
	}

	// resty reads proxy settings from the environment. The retry policy
	// honors Retry-After on 429s since the CLOB rate limits aggressively.
	httpc := resty.New().
		SetBaseURL(host).
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", "gomm-clob").
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() == 429
		}).
		SetRetryAfter(func(c *resty.Client, resp *resty.Response) (time.Duration, error) {
			if ra := resp.Header().Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					return time.Duration(secs) * time.Second, nil
				}
			}
			return 2 * time.Second, nil
		})

	return &Client{
		host:        host,
		http:        httpc,
		chainID:     chainID,
		privateKey:  privateKey,
		signer:      signer,
		funder:      funder,
		sigType:     sigType,
		rateLimiter: ratelimit.NewManager(),
		tickSize:    cache.New[string, string](metadataTTL),
		negRisk:     cache.New[string, bool](metadataTTL),
		feeRate:     cache.New[string, int](metadataTTL),
	}, nil
}

func (c *Client) SignerAddress() common.Address { return c.signer }
func (c *Client) FunderAddress() common.Address { return c.funder }

// SetApiCreds installs L2 credentials after derivation or from config.
func (c *Client) SetApiCreds(creds types.ApiKeyCreds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = &creds
}

func (c *Client) HasApiCreds() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds != nil && c.creds.Key != "" && c.creds.Secret != "" && c.creds.Passphrase != ""
}

func (c *Client) apiCreds() (*types.ApiKeyCreds, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.creds == nil || c.creds.Key == "" {
		return nil, errors.New("api creds not set")
	}
	return c.creds, nil
}

// GetServerTime returns the CLOB server clock (unix seconds).
func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/time")
	if err != nil {
		return 0, errors.Wrap(err, "get server time")
	}
	if resp.IsError() {
		return 0, httpError(resp, "/time")
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(resp.Body())), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse server time")
	}
	return ts, nil
}

// l1Headers builds the wallet-signature auth headers used by the key
// management endpoints.
func (c *Client) l1Headers(timestamp int64, nonce uint64) (map[string]string, error) {
	sig, err := signing.BuildClobAuthSignature(c.privateKey, c.signer, int64(c.chainID), timestamp, nonce)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"POLY_ADDRESS":   c.signer.Hex(),
		"POLY_SIGNATURE": sig,
		"POLY_TIMESTAMP": strconv.FormatInt(timestamp, 10),
		"POLY_NONCE":     strconv.FormatUint(nonce, 10),
	}, nil
}

// l2Headers builds the HMAC auth headers for trading and data endpoints.
// requestPath must match what the server sees, without the query string.
func (c *Client) l2Headers(timestamp int64, method, requestPath string, body []byte) (map[string]string, error) {
	creds, err := c.apiCreds()
	if err != nil {
		return nil, err
	}
	sig, err := signing.BuildHmacSignature(creds.Secret, timestamp, method, requestPath, body)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"POLY_ADDRESS":    c.signer.Hex(),
		"POLY_SIGNATURE":  sig,
		"POLY_TIMESTAMP":  strconv.FormatInt(timestamp, 10),
		"POLY_API_KEY":    creds.Key,
		"POLY_PASSPHRASE": creds.Passphrase,
	}, nil
}

func httpError(resp *resty.Response, path string) error {
	body := strings.TrimSpace(string(resp.Body()))
	return errors.Errorf("clob %s: status %d: %s", path, resp.StatusCode(), body)
}
