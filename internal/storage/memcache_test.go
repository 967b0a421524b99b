package storage

import (
	"testing"
	"time"
)

func TestMemCacheSetGet(t *testing.T) {
	c := NewMemCache()
	c.Set("a", 42, time.Minute)

	v, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Fatalf("got %v", v)
	}

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestMemCacheExpiry(t *testing.T) {
	c := NewMemCache()
	c.Set("a", "x", -time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry swept on read, len=%d", c.Len())
	}
}

func TestMemCacheDelete(t *testing.T) {
	c := NewMemCache()
	c.Set("a", 1, time.Minute)
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMemCacheOverwrite(t *testing.T) {
	c := NewMemCache()
	c.Set("a", 1, time.Minute)
	c.Set("a", 2, time.Minute)

	v, _ := c.Get("a")
	if v.(int) != 2 {
		t.Fatalf("got %v", v)
	}
	if c.Len() != 1 {
		t.Fatalf("len=%d", c.Len())
	}
}
