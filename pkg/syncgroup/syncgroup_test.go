package syncgroup

import (
	"sync/atomic"
	"testing"
)

func TestRunWaitsForAll(t *testing.T) {
	g := New()
	var count int64
	for i := 0; i < 10; i++ {
		g.Add(func() { atomic.AddInt64(&count, 1) })
	}
	g.Run()
	g.Wait()
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestNilAndEmpty(t *testing.T) {
	g := New()
	g.Add(nil)
	g.Run()
	g.Wait() // must not hang or panic
}

func TestReuseAfterWait(t *testing.T) {
	g := New()
	var count int64
	g.Add(func() { atomic.AddInt64(&count, 1) })
	g.Run()
	g.Wait()

	g.Add(func() { atomic.AddInt64(&count, 1) })
	g.Run()
	g.Wait()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
