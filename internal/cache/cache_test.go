package cache

import (
	"errors"
	"slices"
	"testing"
)

type item struct {
	ID   int64
	Name string
}

func newCache(items ...item) *Cache[item] {
	c := New(func(it item) int64 { return it.ID })
	if len(items) > 0 {
		c.ReplaceAll(items)
	}
	return c
}

// record counts emissions and keeps the last snapshot
func record[T any](c *Cache[T]) (count *int, last *Snapshot[T]) {
	count, last = new(int), new(Snapshot[T])
	c.Subscribe(func(s Snapshot[T]) {
		*count++
		*last = s
	})
	return count, last
}

func ids(items []item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestAppend(t *testing.T) {
	c := newCache(item{1, "a"}, item{2, "b"})
	count, last := record(c)

	if err := c.Append(item{3, "c"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if *count != 1 {
		t.Errorf("expected 1 emission, got %d", *count)
	}
	if got := ids(last.Items); !slices.Equal(got, []int64{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}

	if err := c.Append(item{2, "dup"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if *count != 1 {
		t.Errorf("duplicate append emitted")
	}
	if got, _ := c.Get(2); got.Name != "b" {
		t.Errorf("duplicate append overwrote entry: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	c := newCache(item{1, "a"}, item{2, "b"}, item{3, "c"})
	count, _ := record(c)
	before := c.Version()

	if c.Remove(42) {
		t.Error("expected removing an unknown id to report false")
	}
	if *count != 0 || c.Version() != before {
		t.Error("no-op remove changed the cache")
	}

	if !c.Remove(2) {
		t.Fatal("expected remove to report true")
	}
	if got := ids(c.Items()); !slices.Equal(got, []int64{1, 3}) {
		t.Errorf("expected [1 3], got %v", got)
	}
	if *count != 1 {
		t.Errorf("expected 1 emission, got %d", *count)
	}
}

func TestPatch(t *testing.T) {
	c := newCache(item{1, "a"}, item{2, "b"}, item{3, "c"})
	count, _ := record(c)

	got, ok := c.Patch(2, func(it *item) { it.Name = "B" })
	if !ok || got.Name != "B" {
		t.Fatalf("Patch = %+v, %v", got, ok)
	}
	items := c.Items()
	if !slices.Equal(ids(items), []int64{1, 2, 3}) || items[1].Name != "B" {
		t.Errorf("unexpected items %+v", items)
	}
	if *count != 1 {
		t.Errorf("expected 1 emission, got %d", *count)
	}

	if _, ok := c.Patch(9, func(it *item) { it.Name = "x" }); ok {
		t.Error("expected patch of unknown id to report false")
	}
	if *count != 1 {
		t.Error("no-op patch emitted")
	}

	orig, ok := c.Patch(1, func(it *item) { it.ID = 3 })
	if !ok || orig.ID != 1 {
		t.Errorf("expected id change to be refused, got %+v", orig)
	}
	if *count != 1 || c.Len() != 3 {
		t.Error("id-changing patch modified the cache")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	c := newCache(item{1, "a"}, item{2, "b"})
	held := c.Items()

	c.Patch(1, func(it *item) { it.Name = "changed" })
	c.Remove(2)

	if held[0].Name != "a" || len(held) != 2 {
		t.Errorf("earlier snapshot was mutated: %+v", held)
	}

	held[1].Name = "local"
	if _, ok := c.Get(2); ok {
		t.Error("removed item came back")
	}
}

func TestReplaceAllDropsDuplicates(t *testing.T) {
	c := newCache()
	count, _ := record(c)

	c.ReplaceAll([]item{{1, "a"}, {2, "b"}, {1, "again"}})

	if got := ids(c.Items()); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("expected [1 2], got %v", got)
	}
	if got, _ := c.Get(1); got.Name != "a" {
		t.Errorf("expected first occurrence to win, got %+v", got)
	}
	if *count != 1 {
		t.Errorf("expected 1 emission, got %d", *count)
	}
}

func TestVersionAndUnsubscribe(t *testing.T) {
	c := newCache()
	var calls int
	unsub := c.Subscribe(func(Snapshot[item]) { calls++ })

	c.Append(item{1, "a"})
	c.Append(item{2, "b"})
	if c.Version() != 2 {
		t.Errorf("expected version 2, got %d", c.Version())
	}

	unsub()
	unsub()
	c.Remove(1)
	if calls != 2 {
		t.Errorf("expected 2 calls before unsubscribe, got %d", calls)
	}
}

func TestLoadingFlag(t *testing.T) {
	c := newCache()
	var seen []bool
	c.SubscribeLoading(func(v bool) { seen = append(seen, v) })

	c.SetLoading(true)
	if !c.Loading() {
		t.Error("expected loading")
	}
	c.SetLoading(false)

	if !slices.Equal(seen, []bool{true, false}) {
		t.Errorf("unexpected loading emissions %v", seen)
	}
}

func TestValueSubscribersRunInOrder(t *testing.T) {
	v := NewValue(0)
	var order []string
	v.Subscribe(func(int) { order = append(order, "first") })
	v.Subscribe(func(int) { order = append(order, "second") })
	v.Subscribe(func(n int) {
		if got := v.Get(); got != n {
			t.Errorf("Get inside subscriber = %d, want %d", got, n)
		}
	})

	v.Set(7)
	if !slices.Equal(order, []string{"first", "second"}) {
		t.Errorf("unexpected order %v", order)
	}
}
