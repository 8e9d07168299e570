package mm

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/betbot/gomm/pkg/syncgroup"
)

// MarketData is one cycle's reads for a market. Nil means the read failed
// and the field is unknown this cycle.
type MarketData struct {
	YesBalance *float64
	NoBalance  *float64
	Midpoint   *float64
}

// Fetcher gathers balances and midpoints for every tracked market with a
// bounded number of venue calls in flight. The bound throttles against the
// venue's rate limits; it is not needed for correctness.
type Fetcher struct {
	venue Venue
	sem   *semaphore.Weighted
	log   *logrus.Entry
}

func NewFetcher(venue Venue, concurrency int64) *Fetcher {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Fetcher{
		venue: venue,
		sem:   semaphore.NewWeighted(concurrency),
		log:   logrus.WithField("component", "fetch"),
	}
}

// Fetch issues three reads per market (YES balance, NO balance, midpoint) as
// independent units of work and blocks until all complete. A failed read
// leaves its field nil without affecting the others. Results are returned in
// input order.
func (f *Fetcher) Fetch(ctx context.Context, quoted []*QuotedMarket) []MarketData {
	results := make([]MarketData, len(quoted))

	sg := syncgroup.New()
	queue := func(label string, assign func(*float64), read func() (float64, bool, error)) {
		sg.Add(func() {
			if err := f.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer f.sem.Release(1)

			v, ok, err := read()
			if err != nil {
				f.log.Warnf("%s read failed: %v", label, err)
				return
			}
			if ok {
				assign(&v)
			}
		})
	}

	for i, qm := range quoted {
		i, m := i, qm.Market
		queue(m.Ticker+"/YES balance", func(v *float64) { results[i].YesBalance = v }, func() (float64, bool, error) {
			b, err := f.venue.GetConditionalBalance(ctx, m.YesTokenID)
			return b, err == nil, err
		})
		queue(m.Ticker+"/NO balance", func(v *float64) { results[i].NoBalance = v }, func() (float64, bool, error) {
			b, err := f.venue.GetConditionalBalance(ctx, m.NoTokenID)
			return b, err == nil, err
		})
		queue(m.Ticker+"/midpoint", func(v *float64) { results[i].Midpoint = v }, func() (float64, bool, error) {
			return f.venue.GetMidpoint(ctx, m.YesTokenID)
		})
	}
	sg.Run()
	sg.Wait()
	return results
}
