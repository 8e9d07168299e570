package mm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestFetchCollectsAllFields(t *testing.T) {
	venue := newMockVenue()
	venue.Balances["yes-token"] = 100
	venue.Balances["no-token"] = 2.5
	venue.Midpoints["yes-token"] = 0.52

	f := NewFetcher(venue, 3)
	data := f.Fetch(context.Background(), []*QuotedMarket{{Market: testMarket("0.01", 0.05)}})

	if len(data) != 1 {
		t.Fatalf("expected 1 result, got %d", len(data))
	}
	d := data[0]
	if d.YesBalance == nil || *d.YesBalance != 100 {
		t.Errorf("YesBalance = %v, want 100", d.YesBalance)
	}
	if d.NoBalance == nil || *d.NoBalance != 2.5 {
		t.Errorf("NoBalance = %v, want 2.5", d.NoBalance)
	}
	if d.Midpoint == nil || *d.Midpoint != 0.52 {
		t.Errorf("Midpoint = %v, want 0.52", d.Midpoint)
	}
}

func TestFetchPartialFailure(t *testing.T) {
	venue := newMockVenue()
	venue.Balances["yes-token"] = 100
	venue.Midpoints["yes-token"] = 0.52
	venue.ErrorOnNext["GetConditionalBalance"] = errors.New("timeout")

	f := NewFetcher(venue, 1) // serial, so the injected error hits the first balance read
	data := f.Fetch(context.Background(), []*QuotedMarket{{Market: testMarket("0.01", 0.05)}})

	d := data[0]
	failed := 0
	if d.YesBalance == nil {
		failed++
	}
	if d.NoBalance == nil {
		failed++
	}
	if failed != 1 {
		t.Errorf("expected exactly one absent balance, got %d", failed)
	}
	if d.Midpoint == nil || *d.Midpoint != 0.52 {
		t.Errorf("midpoint lost with a failed balance read: %v", d.Midpoint)
	}
}

func TestFetchAbsentMidpoint(t *testing.T) {
	venue := newMockVenue() // no midpoint configured: venue reports ok=false
	f := NewFetcher(venue, 3)

	data := f.Fetch(context.Background(), []*QuotedMarket{{Market: testMarket("0.01", 0.05)}})
	if data[0].Midpoint != nil {
		t.Errorf("Midpoint = %v, want absent", *data[0].Midpoint)
	}
}

func TestFetchInputOrder(t *testing.T) {
	venue := newMockVenue()
	m1 := testMarket("0.01", 0.05)
	m2 := testMarket("0.01", 0.05)
	m2.Ticker = "TSLA"
	m2.YesTokenID = "tsla-yes"
	m2.NoTokenID = "tsla-no"
	venue.Midpoints["yes-token"] = 0.40
	venue.Midpoints["tsla-yes"] = 0.60

	f := NewFetcher(venue, 2)
	data := f.Fetch(context.Background(), []*QuotedMarket{{Market: m1}, {Market: m2}})

	if data[0].Midpoint == nil || *data[0].Midpoint != 0.40 {
		t.Errorf("result 0 midpoint = %v, want 0.40", data[0].Midpoint)
	}
	if data[1].Midpoint == nil || *data[1].Midpoint != 0.60 {
		t.Errorf("result 1 midpoint = %v, want 0.60", data[1].Midpoint)
	}
}
