package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLRU(maxSize int, ttl time.Duration) (*LRU[int], *time.Time) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	c := NewLRU[int](maxSize, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	// "b" is now least recently used and goes first.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("Stats() = %d, %d", hits, misses)
	}
}

func TestLRU_Expiry(t *testing.T) {
	c, now := newTestLRU(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	*now = now.Add(30 * time.Second)
	c.Set("b", 3) // refreshes b's deadline

	*now = now.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0", n)
	}

	*now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRU_ZeroTTLDisables(t *testing.T) {
	c, _ := newTestLRU(10, 0)
	c.Set("a", 1)
	if c.Len() != 0 {
		t.Error("zero ttl must not store entries")
	}
}

func TestLRU_GetOrLoadAndPurge(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	calls := 0
	load := func() (int, error) { calls++; return 42, nil }

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("k", load)
		if err != nil || v != 42 {
			t.Fatalf("GetOrLoad() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrLoad() error = %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors must not be cached")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
	c.GetOrLoad("k", load)
	if calls != 2 {
		t.Errorf("loader called %d times after purge, want 2", calls)
	}
}

func TestJanitor(t *testing.T) {
	c, now := newTestLRU(10, time.Minute)
	c.Set("a", 1)
	*now = now.Add(2 * time.Minute)

	j := NewJanitor(c)
	if n := j.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go j.Run(ctx, time.Millisecond)
	cancel()
	select {
	case <-j.Done():
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
