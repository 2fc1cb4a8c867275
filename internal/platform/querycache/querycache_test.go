package querycache

import (
	"errors"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	got := Key("patients", "search=idrissi")
	if got != "patients?search=idrissi" {
		t.Errorf("Key() = %q", got)
	}
	got = Key("sessions", "treatment_id=3", "from=2026-01-01", "to=2026-01-31")
	if got != "sessions?treatment_id=3&from=2026-01-01&to=2026-01-31" {
		t.Errorf("Key() = %q", got)
	}
}

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("patients?", []int{1, 2, 3})

	v, ok := c.Get("patients?")
	if !ok {
		t.Fatal("expected hit")
	}
	if ids := v.([]int); len(ids) != 3 {
		t.Errorf("got %v", ids)
	}

	if _, ok := c.Get("treatments?"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10 * time.Second)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("patients?", "rows")

	current = current.Add(9 * time.Second)
	if _, ok := c.Get("patients?"); !ok {
		t.Error("expected hit inside TTL window")
	}

	current = current.Add(2 * time.Second)
	if _, ok := c.Get("patients?"); ok {
		t.Error("expected miss after TTL")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be removed on access")
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	c := New(time.Minute)
	c.Set("patients?", 1)
	c.Set("treatments?patient_id=4", 2)
	c.Set("sessions?treatment_id=9", 3)

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after InvalidateAll", c.Len())
	}
	if _, ok := c.Get("patients?"); ok {
		t.Error("expected miss after InvalidateAll")
	}
}

// A read immediately after a write must not observe pre-write data: the
// service invalidates synchronously, so the next Through call re-fetches.
func TestThrough_ReadAfterWriteIsFresh(t *testing.T) {
	c := New(time.Minute)

	fetches := 0
	fetch := func() ([]string, error) {
		fetches++
		if fetches == 1 {
			return []string{"old"}, nil
		}
		return []string{"new"}, nil
	}

	rows, err := Through(c, "patients?", fetch)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0] != "old" {
		t.Fatalf("first read = %v", rows)
	}

	// Cached.
	rows, _ = Through(c, "patients?", fetch)
	if fetches != 1 || rows[0] != "old" {
		t.Fatalf("second read should be served from cache, fetches=%d", fetches)
	}

	// Write path.
	c.InvalidateAll()

	rows, _ = Through(c, "patients?", fetch)
	if fetches != 2 || rows[0] != "new" {
		t.Fatalf("read after invalidation must be fresh, fetches=%d rows=%v", fetches, rows)
	}
}

func TestThrough_FetchErrorNotCached(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("boom")

	_, err := Through(c, "patients?", func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed fetch must not populate the cache")
	}
}

func TestThrough_NilCache(t *testing.T) {
	rows, err := Through[[]int](nil, "patients?", func() ([]int, error) { return []int{7}, nil })
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
}
