package gallery

import (
	"fmt"
	"testing"
)

func key(i int) Key {
	return Key{ID: fmt.Sprintf("%064x", i), Size: 200}
}

func TestMemoryCacheEvictsOldestBeyondCapacity(t *testing.T) {
	const capacity = 8
	const extra = 3

	c := NewMemoryCache(capacity)
	for i := 0; i < capacity+extra; i++ {
		c.Put(key(i), &Thumbnail{PNG: []byte{byte(i)}})
	}

	if c.Len() != capacity {
		t.Fatalf("expected %d entries, got %d", capacity, c.Len())
	}

	// Exactly the earliest-inserted keys are gone.
	for i := 0; i < extra; i++ {
		if c.Get(key(i)) != nil {
			t.Errorf("key %d should have been evicted", i)
		}
	}
	for i := extra; i < capacity+extra; i++ {
		if c.Get(key(i)) == nil {
			t.Errorf("key %d should still be cached", i)
		}
	}
}

func TestMemoryCacheGetPromotes(t *testing.T) {
	c := NewMemoryCache(3)
	c.Put(key(0), &Thumbnail{})
	c.Put(key(1), &Thumbnail{})
	c.Put(key(2), &Thumbnail{})

	// Touch the oldest; the next eviction must take key 1 instead.
	if c.Get(key(0)) == nil {
		t.Fatal("expected hit on key 0")
	}
	c.Put(key(3), &Thumbnail{})

	if c.Get(key(0)) == nil {
		t.Error("promoted key 0 should have survived eviction")
	}
	if c.Get(key(1)) != nil {
		t.Error("key 1 should have been evicted as least recently used")
	}
}

func TestMemoryCachePutOverwritesAndPromotes(t *testing.T) {
	c := NewMemoryCache(2)
	c.Put(key(0), &Thumbnail{PNG: []byte("a")})
	c.Put(key(1), &Thumbnail{})
	c.Put(key(0), &Thumbnail{PNG: []byte("b")})

	if got := c.Get(key(0)); got == nil || string(got.PNG) != "b" {
		t.Fatalf("expected overwritten value, got %v", got)
	}
	if c.Len() != 2 {
		t.Fatalf("overwrite must not grow the cache, len=%d", c.Len())
	}

	c.Put(key(2), &Thumbnail{})
	if c.Get(key(1)) != nil {
		t.Error("key 1 should be evicted, key 0 was promoted by overwrite")
	}
	if c.Get(key(0)) == nil {
		t.Error("key 0 should survive")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(4)
	if c.Get(Key{ID: "absent", Size: 200}) != nil {
		t.Fatal("expected miss on empty cache")
	}
}
