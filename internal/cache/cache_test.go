package cache

import (
	"os"
	"testing"
	"time"
)

func newTestCache(t *testing.T, expiry time.Duration) *Cache {
	t.Helper()
	return &Cache{
		baseDir: t.TempDir(),
		expiry:  expiry,
	}
}

func TestSaveAndGetJSON(t *testing.T) {
	c := newTestCache(t, DefaultExpiry)

	saved := []string{"Germany", "France", "Japan"}
	if err := c.SaveJSON("countries", saved); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	var loaded []string
	if !c.GetJSON("countries", &loaded) {
		t.Fatal("GetJSON() = false, want true")
	}

	if len(loaded) != len(saved) {
		t.Fatalf("GetJSON() loaded %d entries, want %d", len(loaded), len(saved))
	}
	for i := range saved {
		if loaded[i] != saved[i] {
			t.Errorf("loaded[%d] = %q, want %q", i, loaded[i], saved[i])
		}
	}
}

func TestGetJSONMissing(t *testing.T) {
	c := newTestCache(t, DefaultExpiry)

	var out []string
	if c.GetJSON("never-saved", &out) {
		t.Error("GetJSON() = true for missing key, want false")
	}
}

func TestGetJSONExpired(t *testing.T) {
	c := newTestCache(t, time.Hour)

	if err := c.SaveJSON("languages", []string{"english"}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	path := c.listingPath("languages")
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	var out []string
	if c.GetJSON("languages", &out) {
		t.Error("GetJSON() = true for expired entry, want false")
	}

	// Expired entries are removed on access.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired cache file was not removed")
	}
}

func TestCleanExpired(t *testing.T) {
	c := newTestCache(t, time.Hour)

	if err := c.SaveJSON("fresh", []string{"keep"}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	if err := c.SaveJSON("stale", []string{"drop"}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.listingPath("stale"), old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if err := c.CleanExpired(); err != nil {
		t.Fatalf("CleanExpired() error = %v", err)
	}

	var out []string
	if !c.GetJSON("fresh", &out) {
		t.Error("fresh entry was removed by CleanExpired()")
	}
	if c.GetJSON("stale", &out) {
		t.Error("stale entry survived CleanExpired()")
	}
}

func TestCleanExpiredNoDir(t *testing.T) {
	c := newTestCache(t, DefaultExpiry)
	if err := c.CleanExpired(); err != nil {
		t.Errorf("CleanExpired() on empty cache error = %v", err)
	}
}
