package cache

import "testing"

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheGetOrCreateOnce(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	create := func() string { calls++; return "tile" }

	for range 3 {
		if got := c.GetOrCreate(7, create); got != "tile" {
			t.Fatalf("GetOrCreate = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	var evicted []int
	c.OnEvict(func(k, _ int) { evicted = append(evicted, k) })

	for i := range 4 {
		c.Set(i, i)
	}
	// Touch 0 so 1 becomes the oldest.
	c.Get(0)
	c.Set(4, 4)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d after eviction, want 3", c.Len())
	}
	if _, ok := c.Get(0); !ok {
		t.Error("recently used key 0 was evicted")
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest key 1 survived eviction")
	}
	if len(evicted) != 2 {
		t.Errorf("evicted %v, want two keys", evicted)
	}
}

func TestCacheDeleteFunc(t *testing.T) {
	c := New[int, int](0)
	for i := range 10 {
		c.Set(i, i)
	}
	n := c.DeleteFunc(func(k int) bool { return k%2 == 0 })
	if n != 5 || c.Len() != 5 {
		t.Errorf("DeleteFunc removed %d, Len=%d; want 5, 5", n, c.Len())
	}
	if !c.Delete(1) || c.Delete(1) {
		t.Error("Delete should report presence exactly once")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Error("Clear left entries behind")
	}
}

func TestVar(t *testing.T) {
	var v Var[string]
	runs := 0
	bump := func(string) { runs++ }

	if !v.Set("a", bump) {
		t.Error("first Set should report a change")
	}
	if v.Set("a", bump) || v.Changed() {
		t.Error("repeated Set should not report a change")
	}
	if !v.Set("b", bump) || v.Get() != "b" {
		t.Errorf("Set(b) = %q changed=%v", v.Get(), v.Changed())
	}
	if runs != 2 {
		t.Errorf("callback ran %d times, want 2", runs)
	}
	v.Invalidate()
	if !v.Set("b") {
		t.Error("Set after Invalidate should report a change")
	}
}
