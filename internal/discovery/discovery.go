package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/gomm/pkg/ratelimit"
)

const DefaultHost = "https://gamma-api.polymarket.com"

// Market describes one daily up-or-down market, immutable once discovered.
type Market struct {
	Ticker             string
	Question           string
	ConditionID        string
	YesTokenID         string
	NoTokenID          string
	MaxIncentiveSpread float64 // price units, e.g. 0.055
	MinIncentiveSize   float64 // minimum shares per side for rewards
	TickSize           string  // decimal string, e.g. "0.001"
	NegRisk            bool
}

// Client resolves tickers into live markets through the Gamma API.
type Client struct {
	http   *resty.Client
	limits *ratelimit.Manager
	log    *logrus.Entry
	now    func() time.Time
}

func NewClient(host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(host, "/")).
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", "gomm-discovery"),
		limits: ratelimit.NewManager(),
		log:    logrus.WithField("component", "discovery"),
		now:    time.Now,
	}
}

// gammaEvent is the subset of the events/slug payload we read.
type gammaEvent struct {
	Title   string        `json:"title"`
	Markets []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	ConditionID           string      `json:"conditionId"`
	ClobTokenIDs          string      `json:"clobTokenIds"` // JSON-encoded string array
	RewardsMaxSpread      json.Number `json:"rewardsMaxSpread"`
	RewardsMinSize        json.Number `json:"rewardsMinSize"`
	OrderPriceMinTickSize json.Number `json:"orderPriceMinTickSize"`
	NegRisk               bool        `json:"negRisk"`
}

var etLocation = mustLoadET()

func mustLoadET() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}

// BuildSlug builds the Gamma event slug for a ticker's daily market on the
// given date, e.g. "aapl-up-or-down-on-february-11-2026". The date rolls in
// Eastern Time because that is the exchange's trading day.
func BuildSlug(ticker string, now time.Time) string {
	et := now.In(etLocation)
	month := strings.ToLower(et.Format("January"))
	return fmt.Sprintf("%s-up-or-down-on-%s-%d-%d",
		strings.ToLower(ticker), month, et.Day(), et.Year())
}

// ResolveMarkets finds today's daily up-or-down market for each ticker.
// Tickers with no live event today are skipped with a warning, not an error;
// the caller decides whether an empty result is fatal.
func (c *Client) ResolveMarkets(ctx context.Context, tickers []string) ([]Market, error) {
	markets := make([]Market, 0, len(tickers))
	for _, ticker := range tickers {
		slug := BuildSlug(ticker, c.now())
		m, err := c.resolveSlug(ctx, ticker, slug)
		if err != nil {
			c.log.WithField("ticker", ticker).Warnf("discovery failed: %v", err)
			continue
		}
		if m == nil {
			continue
		}
		c.log.Infof("found: %s | spread=%.3f | min_size=%.0f | tick=%s",
			m.Question, m.MaxIncentiveSpread, m.MinIncentiveSize, m.TickSize)
		markets = append(markets, *m)
	}
	return markets, nil
}

func (c *Client) resolveSlug(ctx context.Context, ticker, slug string) (*Market, error) {
	if err := c.limits.Wait(ctx, "gamma:events:get"); err != nil {
		return nil, err
	}

	var event gammaEvent
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&event).
		Get("/events/slug/" + slug)
	if err != nil {
		return nil, errors.Wrap(err, "gamma request")
	}
	if resp.StatusCode() == 404 {
		c.log.WithField("ticker", ticker).Warnf("no event found (slug: %s)", slug)
		return nil, nil
	}
	if resp.IsError() {
		return nil, errors.Errorf("gamma %s: status %d", slug, resp.StatusCode())
	}
	if len(event.Markets) == 0 {
		c.log.Warnf("event %q has no markets", event.Title)
		return nil, nil
	}

	return parseMarket(ticker, event.Title, event.Markets[0])
}

// parseMarket converts a Gamma market record. rewardsMaxSpread comes back in
// cents and is converted to price units here.
func parseMarket(ticker, title string, gm gammaMarket) (*Market, error) {
	if gm.ClobTokenIDs == "" {
		return nil, errors.New("no clobTokenIds")
	}
	var tokenIDs []string
	if err := json.Unmarshal([]byte(gm.ClobTokenIDs), &tokenIDs); err != nil {
		return nil, errors.Wrapf(err, "parse clobTokenIds %q", gm.ClobTokenIDs)
	}
	if len(tokenIDs) < 2 {
		return nil, errors.Errorf("expected 2 token ids, got %d", len(tokenIDs))
	}

	maxSpreadCents, _ := gm.RewardsMaxSpread.Float64()
	minSize, _ := gm.RewardsMinSize.Float64()

	tickSize := gm.OrderPriceMinTickSize.String()
	if tickSize == "" || tickSize == "0" {
		tickSize = "0.01"
	}

	return &Market{
		Ticker:             ticker,
		Question:           title,
		ConditionID:        gm.ConditionID,
		YesTokenID:         tokenIDs[0],
		NoTokenID:          tokenIDs[1],
		MaxIncentiveSpread: maxSpreadCents / 100.0,
		MinIncentiveSize:   minSize,
		TickSize:           tickSize,
		NegRisk:            gm.NegRisk,
	}, nil
}
