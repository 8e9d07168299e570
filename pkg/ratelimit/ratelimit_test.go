package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketDrains(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d denied with tokens available", i)
		}
	}
	if tb.Allow() {
		t.Error("request allowed on an empty bucket")
	}
	if got := tb.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestSlidingWindowCapsAndRecovers(t *testing.T) {
	sw := NewSlidingWindow(2, 50*time.Millisecond)
	if !sw.Allow() || !sw.Allow() {
		t.Fatal("requests denied under the limit")
	}
	if sw.Allow() {
		t.Error("request allowed over the window limit")
	}

	time.Sleep(60 * time.Millisecond)
	if !sw.Allow() {
		t.Error("request denied after the window rolled")
	}
}

func TestManagerFallback(t *testing.T) {
	m := NewManager()
	if !m.Allow("unknown:endpoint") {
		t.Error("fallback limiter denied the first request")
	}
	if !m.Allow("clob:order:post") {
		t.Error("order limiter denied the first request")
	}
	if m.Remaining("clob:order:post") != 2399 {
		t.Errorf("order budget = %d, want 2399 after one request", m.Remaining("clob:order:post"))
	}
}

func TestWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	tb.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tb.Wait(ctx); err == nil {
		t.Error("Wait returned nil on an exhausted bucket with an expiring context")
	}
}
