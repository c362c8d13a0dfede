package windows

import (
	"fmt"
	"image"
	"testing"
)

func testImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

func TestCachePutOverwrites(t *testing.T) {
	c := NewImageCache(8)

	first := testImage()
	second := testImage()
	c.Put(4321, "Inbox", first)
	c.Put(4321, "Inbox", second)

	if got := c.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	img, ok := c.Get(4321, "Inbox")
	if !ok || img != second {
		t.Errorf("Get() returned the stale image after overwrite")
	}
}

func TestCacheEvictionDropsOldestHalf(t *testing.T) {
	const capacity = 8
	c := NewImageCache(capacity)

	for i := 0; i < capacity+1; i++ {
		c.Put(100+i, fmt.Sprintf("win-%d", i), testImage())
	}

	// Nine entries tripped the bound: the four oldest go, five stay.
	if got := c.Len(); got != 5 {
		t.Fatalf("Len() after eviction = %d, want 5", got)
	}
	if got := c.Len(); got >= capacity {
		t.Errorf("Len() after eviction = %d, want strictly below the trigger %d", got, capacity)
	}
	if got := c.Len(); got < capacity/2 {
		t.Errorf("Len() after eviction = %d, a single pass must not drop below %d", got, capacity/2)
	}

	for i := 0; i < 4; i++ {
		if _, ok := c.Get(100+i, fmt.Sprintf("win-%d", i)); ok {
			t.Errorf("entry %d survived eviction, want the oldest half dropped", i)
		}
	}
	for i := 4; i < capacity+1; i++ {
		if _, ok := c.Get(100+i, fmt.Sprintf("win-%d", i)); !ok {
			t.Errorf("entry %d evicted, want the newest half kept", i)
		}
	}
}

func TestCachePurgePID(t *testing.T) {
	c := NewImageCache(8)
	c.Put(4321, "Inbox", testImage())
	c.Put(4321, "Drafts", testImage())
	c.Put(7777, "Other", testImage())

	c.PurgePID(4321)

	if _, ok := c.Get(4321, "Inbox"); ok {
		t.Error("Inbox survived PurgePID")
	}
	if _, ok := c.Get(4321, "Drafts"); ok {
		t.Error("Drafts survived PurgePID")
	}
	if _, ok := c.Get(7777, "Other"); !ok {
		t.Error("PurgePID removed an entry of another process")
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestCachePurgeSingleEntry(t *testing.T) {
	c := NewImageCache(8)
	c.Put(4321, "Inbox", testImage())
	c.Put(4321, "Drafts", testImage())

	c.Purge(4321, "Inbox")

	if _, ok := c.Get(4321, "Inbox"); ok {
		t.Error("Inbox survived Purge")
	}
	if _, ok := c.Get(4321, "Drafts"); !ok {
		t.Error("Purge removed a different window's entry")
	}
}
