package cache

import (
	"testing"
	"time"
)

func TestCache_BasicOperations(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)

	c.Set("key1", "value1")
	val, found := c.Get("key1")
	if !found || val != "value1" {
		t.Fatalf("expected value1, got %v (found=%v)", val, found)
	}

	c.Delete("key1")
	if _, found := c.Get("key1"); found {
		t.Error("expected key1 to be deleted")
	}

	// deleting a missing key is a no-op
	c.Delete("nonexistent")
}

func TestCache_Expiry(t *testing.T) {
	c := New(20*time.Millisecond, time.Minute)
	c.Set("short", 1)

	time.Sleep(50 * time.Millisecond)
	if _, found := c.Get("short"); found {
		t.Error("expected entry to expire")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set(Key(PrefixHistory, "acme", "10"), 1)
	c.Set(Key(PrefixHistory, "", "0"), 2)
	c.Set(Key(PrefixRecords, "acme"), 3)
	c.Set("other", 4)

	c.Invalidate(PrefixHistory)
	if c.ItemCount() != 2 {
		t.Fatalf("expected 2 items after invalidation, got %d", c.ItemCount())
	}
	if _, found := c.Get(Key(PrefixRecords, "acme")); !found {
		t.Error("records entry should survive history invalidation")
	}

	c.Invalidate(PrefixHistory, PrefixRecords)
	if c.ItemCount() != 1 {
		t.Errorf("expected only the unrelated key, got %d items", c.ItemCount())
	}

	c.Clear()
	if c.ItemCount() != 0 {
		t.Errorf("expected empty cache, got %d", c.ItemCount())
	}
}

func TestKey(t *testing.T) {
	if got := Key(PrefixHistory, "acme", "5"); got != "history:acme|5" {
		t.Errorf("unexpected key %q", got)
	}
	if got := Key(PrefixRecords); got != "records:" {
		t.Errorf("unexpected key %q", got)
	}
}
