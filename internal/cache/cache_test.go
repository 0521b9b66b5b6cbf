package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache[V any](d time.Duration) (*Cache[V], *clock) {
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := New[V](d)
	c.now = clk.Now
	return c, clk
}

func TestSetGet(t *testing.T) {
	c, clk := newTestCache[string](time.Minute)

	c.Set("a", "alpha", 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "alpha", v)

	clk.Advance(2 * time.Minute)
	_, ok = c.Get("a")
	require.False(t, ok)
}

func TestForever(t *testing.T) {
	c, clk := newTestCache[int](time.Minute)

	c.Set("n", 3, -1)
	clk.Advance(24 * time.Hour)

	v, ok := c.Get("n")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestSetUntil(t *testing.T) {
	c, clk := newTestCache[struct{}](time.Minute)

	c.SetUntil("past", struct{}{}, clk.Now().Add(-time.Second))
	require.False(t, c.Has("past"))

	c.SetUntil("future", struct{}{}, clk.Now().Add(time.Hour))
	require.True(t, c.Has("future"))

	clk.Advance(time.Hour + time.Second)
	require.False(t, c.Has("future"))
}

func TestDeleteAndSweep(t *testing.T) {
	c, clk := newTestCache[int](time.Minute)

	c.Set("gone", 1, 0)
	c.Delete("gone")
	require.False(t, c.Has("gone"))

	c.Set("old", 1, time.Second)
	clk.Advance(time.Minute)

	// enough writes to trigger a sweep
	for i := range sweepEvery {
		c.Set(fmt.Sprintf("k%d", i), i, 0)
	}

	_, stored := c.items.Load("old")
	require.False(t, stored)
}

func TestDefaultDuration(t *testing.T) {
	c := New[int](0)
	require.Equal(t, 10*time.Minute, c.defaultDuration)
}

func TestUpdateConcurrent(t *testing.T) {
	c, _ := newTestCache[int](time.Minute)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan int, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- c.Update("admin", func(n int, _ bool) int { return n + 1 }, 0)
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for n := range results {
		require.False(t, seen[n], "value %d returned twice", n)
		seen[n] = true
	}
	require.Len(t, seen, workers)

	v, ok := c.Get("admin")
	require.True(t, ok)
	require.Equal(t, workers, v)
}

func TestUpdateExpired(t *testing.T) {
	c, clk := newTestCache[int](time.Minute)

	c.Set("admin", 7, 0)
	clk.Advance(2 * time.Minute)

	got := c.Update("admin", func(n int, found bool) int {
		require.False(t, found)
		return n + 1
	}, 0)
	require.Equal(t, 1, got)
}
