package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheNew(t *testing.T) {
	c := New[int](10)
	if got := c.Len(); got != 0 {
		t.Fatalf("expected empty cache, got %d", got)
	}
	if got := c.Capacity(); got != 10 {
		t.Fatalf("expected capacity 10, got %d", got)
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := New[int](0)
	if got := c.Capacity(); got != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, got)
	}
}

func TestCacheSetGet(t *testing.T) {
	c := New[*string](4)
	v := "a.b.c"
	c.Set("a.b.c", &v)
	if got := c.Len(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	got, ok := c.Get("a.b.c")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != &v {
		t.Fatal("expected same pointer")
	}
}

func TestCacheMiss(t *testing.T) {
	c := New[int](4)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := New[int](3)
	for i, k := range []string{"a", "b", "c"} {
		c.Set(k, i)
	}
	// Touch "a" so that "b" becomes least recently used.
	c.Get("a")
	c.Set("d", 3)

	if got := c.Len(); got != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", got)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal(`expected "b" to be evicted`)
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("expected %q to survive", k)
		}
	}
}

func TestCacheReplace(t *testing.T) {
	c := New[int](2)
	c.Set("k", 1)
	c.Set("k", 2)
	if got, _ := c.Get("k"); got != 2 {
		t.Fatalf("expected replaced value 2, got %d", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := New[int](4)
	c.Set("k", 1)
	c.Set("j", 2)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after Invalidate")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestCacheGetOrCompile(t *testing.T) {
	c := New[int](4)
	calls := 0
	compile := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompile("x", compile)
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("expected compile to run once, ran %d times", calls)
	}
}

func TestCacheGetOrCompileErrorNotCached(t *testing.T) {
	c := New[int](4)
	boom := errors.New("boom")
	if _, err := c.GetOrCompile("x", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatal("errors must not be cached")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := string(rune('a' + (i+g)%26))
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > c.Capacity() {
		t.Fatalf("cache exceeded capacity: %d > %d", c.Len(), c.Capacity())
	}
}
