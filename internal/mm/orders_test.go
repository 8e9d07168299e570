package mm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestCancelStrategyBulkSucceeds(t *testing.T) {
	bulkCalls, allCalls := 0, 0
	s := CancelStrategy{
		CancelBatch: func(context.Context, []string) error { bulkCalls++; return nil },
		CancelAll:   func(context.Context) error { allCalls++; return nil },
	}

	if err := s.Cancel(context.Background(), testLog(), []string{"a", "b"}); err != nil {
		t.Fatalf("Cancel returned %v", err)
	}
	if bulkCalls != 1 || allCalls != 0 {
		t.Errorf("calls = bulk %d / all %d, want 1 / 0", bulkCalls, allCalls)
	}
}

func TestCancelStrategyFallsBackToCancelAll(t *testing.T) {
	allCalls := 0
	s := CancelStrategy{
		CancelBatch: func(context.Context, []string) error { return errors.New("bulk rejected") },
		CancelAll:   func(context.Context) error { allCalls++; return nil },
	}

	if err := s.Cancel(context.Background(), testLog(), []string{"a"}); err != nil {
		t.Fatalf("fallback should have recovered, got %v", err)
	}
	if allCalls != 1 {
		t.Errorf("CancelAll calls = %d, want 1", allCalls)
	}
}

func TestCancelStrategyBothFail(t *testing.T) {
	s := CancelStrategy{
		CancelBatch: func(context.Context, []string) error { return errors.New("bulk rejected") },
		CancelAll:   func(context.Context) error { return errors.New("still down") },
	}
	if err := s.Cancel(context.Background(), testLog(), []string{"a"}); err == nil {
		t.Fatal("expected error when both steps fail")
	}
}

func TestCancelStrategyEmptyIsNoop(t *testing.T) {
	s := CancelStrategy{
		CancelBatch: func(context.Context, []string) error { t.Fatal("bulk called"); return nil },
		CancelAll:   func(context.Context) error { t.Fatal("cancel-all called"); return nil },
	}
	if err := s.Cancel(context.Background(), testLog(), nil); err != nil {
		t.Fatalf("empty cancel returned %v", err)
	}
}

func TestOrderManagerDryRunPlacesNothing(t *testing.T) {
	venue := newMockVenue()
	om := NewOrderManager(venue, true)

	id, err := om.Place(context.Background(), "AAPL bid", "yes-token", "BUY", 0.46, 100, "0.01", false)
	if err != nil {
		t.Fatalf("dry-run place returned %v", err)
	}
	if id == "" {
		t.Error("dry-run must still return an id for state tracking")
	}
	if venue.Calls["PlaceLimitOrder"] != 0 {
		t.Error("dry-run hit the venue")
	}

	if err := om.Cancel(context.Background(), "AAPL", []string{"x"}); err != nil {
		t.Fatalf("dry-run cancel returned %v", err)
	}
	if venue.Calls["CancelOrders"] != 0 {
		t.Error("dry-run cancel hit the venue")
	}
}
