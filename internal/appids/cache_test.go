package appids

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ssb-go/internal/ssb"
	"ssb-go/internal/testutil"
)

const (
	oldCatalog = `{"applist":{"apps":[{"appid":400,"name":"Portal"}]}}`
	newCatalog = `{"applist":{"apps":[{"appid":400,"name":"Portal"},{"appid":440,"name":"Team Fortress 2"}]}}`
)

// writeCache writes body to path with a modification time of age before
// clock's current time.
func writeCache(t *testing.T, path, body string, clock *testutil.StubClock, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := clock.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func newTestCache(t *testing.T, source ssb.CatalogSource, clock ssb.Clock, opts ...Option) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appids.json")
	return NewCache(path, 7*24*time.Hour, source, clock, ssb.NewNopLogger(), opts...)
}

func TestCache_AppTable_Freshness(t *testing.T) {
	tests := []struct {
		name      string
		age       time.Duration
		wantCalls int
		wantTF2   bool
	}{
		{name: "fresh file is reused", age: 6 * 24 * time.Hour, wantCalls: 0, wantTF2: false},
		{name: "stale file is refetched", age: 8 * 24 * time.Hour, wantCalls: 1, wantTF2: true},
		{name: "exactly max age is stale", age: 7 * 24 * time.Hour, wantCalls: 1, wantTF2: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testutil.FixedClock()
			source := testutil.NewStubCatalogSource(newCatalog)
			cache := newTestCache(t, source, clock)
			writeCache(t, cache.Path(), oldCatalog, clock, tt.age)

			table, err := cache.AppTable(context.Background())
			if err != nil {
				t.Fatalf("AppTable() error = %v", err)
			}
			if source.Calls() != tt.wantCalls {
				t.Errorf("fetches = %d, want %d", source.Calls(), tt.wantCalls)
			}
			if _, ok := table.Lookup(440); ok != tt.wantTF2 {
				t.Errorf("Lookup(440) found = %v, want %v", ok, tt.wantTF2)
			}

			body, err := os.ReadFile(cache.Path())
			if err != nil {
				t.Fatal(err)
			}
			want := oldCatalog
			if tt.wantTF2 {
				want = newCatalog
			}
			if string(body) != want {
				t.Errorf("cache file = %q, want %q", body, want)
			}
		})
	}
}

func TestCache_AppTable_MissingFileFetches(t *testing.T) {
	source := testutil.NewStubCatalogSource(newCatalog)
	clock := testutil.FixedClock()
	cache := NewCache(filepath.Join(t.TempDir(), "nested", "appids.json"), 0, source, clock, ssb.NewNopLogger())

	table, err := cache.AppTable(context.Background())
	if err != nil {
		t.Fatalf("AppTable() error = %v", err)
	}
	if source.Calls() != 1 {
		t.Errorf("fetches = %d, want 1", source.Calls())
	}

	for id, want := range map[uint32]string{0: "Empty", 400: "Portal", 440: "Team Fortress 2"} {
		if got, ok := table.Lookup(id); !ok || got != want {
			t.Errorf("Lookup(%d) = %q, %v; want %q", id, got, ok, want)
		}
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	assertOnlyCacheFile(t, cache.Path())
}

func TestCache_AppTable_UpdatesDisabled(t *testing.T) {
	t.Run("uses stale file without fetching", func(t *testing.T) {
		clock := testutil.FixedClock()
		source := testutil.NewStubCatalogSource(newCatalog)
		cache := newTestCache(t, source, clock, WithUpdatesDisabled(true))
		writeCache(t, cache.Path(), oldCatalog, clock, 365*24*time.Hour)

		table, err := cache.AppTable(context.Background())
		if err != nil {
			t.Fatalf("AppTable() error = %v", err)
		}
		if source.Calls() != 0 {
			t.Errorf("fetches = %d, want 0", source.Calls())
		}
		if name, _ := table.Lookup(400); name != "Portal" {
			t.Errorf("Lookup(400) = %q", name)
		}
	})

	t.Run("missing file is not found", func(t *testing.T) {
		source := testutil.NewStubCatalogSource(newCatalog)
		cache := newTestCache(t, source, testutil.FixedClock(), WithUpdatesDisabled(true))

		_, err := cache.AppTable(context.Background())
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("AppTable() error = %v, want fs.ErrNotExist", err)
		}
		if source.Calls() != 0 {
			t.Errorf("fetches = %d, want 0", source.Calls())
		}
	})
}

func TestCache_AppTable_Errors(t *testing.T) {
	t.Run("fetch failure is fatal", func(t *testing.T) {
		source := testutil.NewStubCatalogSource(newCatalog)
		source.Fail(errors.New("connection refused"))
		cache := newTestCache(t, source, testutil.FixedClock())

		if _, err := cache.AppTable(context.Background()); err == nil {
			t.Fatal("AppTable() expected error")
		}
		if _, err := os.Stat(cache.Path()); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("cache file exists after failed fetch: %v", err)
		}
		assertOnlyCacheFile(t, cache.Path())
	})

	t.Run("malformed cache is fatal", func(t *testing.T) {
		clock := testutil.FixedClock()
		source := testutil.NewStubCatalogSource(newCatalog)
		cache := newTestCache(t, source, clock)
		writeCache(t, cache.Path(), `{"applist":`, clock, time.Hour)

		if _, err := cache.AppTable(context.Background()); err == nil {
			t.Fatal("AppTable() expected parse error")
		}
	})

	t.Run("malformed download is fatal", func(t *testing.T) {
		source := testutil.NewStubCatalogSource(`<html>maintenance</html>`)
		cache := newTestCache(t, source, testutil.FixedClock())

		if _, err := cache.AppTable(context.Background()); err == nil {
			t.Fatal("AppTable() expected parse error")
		}
	})

	t.Run("stale right after download stops after one retry", func(t *testing.T) {
		// A clock a year ahead makes every freshly written file look old.
		clock := testutil.NewStubClock(time.Now().Add(365 * 24 * time.Hour))
		source := testutil.NewStubCatalogSource(newCatalog)
		cache := newTestCache(t, source, clock)

		_, err := cache.AppTable(context.Background())
		if !errors.Is(err, ErrStaleAfterFetch) {
			t.Fatalf("AppTable() error = %v, want ErrStaleAfterFetch", err)
		}
		if source.Calls() != maxFetches {
			t.Errorf("fetches = %d, want %d", source.Calls(), maxFetches)
		}
	})
}

func TestCache_Refresh(t *testing.T) {
	t.Run("replaces fresh file", func(t *testing.T) {
		clock := testutil.FixedClock()
		source := testutil.NewStubCatalogSource(newCatalog)
		cache := newTestCache(t, source, clock)
		writeCache(t, cache.Path(), oldCatalog, clock, time.Minute)

		table, err := cache.Refresh(context.Background())
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if _, ok := table.Lookup(440); !ok {
			t.Error("refreshed table is missing 440")
		}
		if source.Calls() != 1 {
			t.Errorf("fetches = %d, want 1", source.Calls())
		}
	})

	t.Run("keeps previous file on failure", func(t *testing.T) {
		clock := testutil.FixedClock()
		source := testutil.NewStubCatalogSource(newCatalog)
		source.Fail(errors.New("503"))
		cache := newTestCache(t, source, clock)
		writeCache(t, cache.Path(), oldCatalog, clock, time.Minute)

		if _, err := cache.Refresh(context.Background()); err == nil {
			t.Fatal("Refresh() expected error")
		}
		body, err := os.ReadFile(cache.Path())
		if err != nil || string(body) != oldCatalog {
			t.Errorf("cache file = %q, %v; want previous catalog", body, err)
		}
	})
}

func TestState_String(t *testing.T) {
	for st, want := range map[state]string{
		stateCheckCache: "check-cache",
		stateCheckAge:   "check-age",
		stateFetch:      "fetch",
		stateReady:      "ready",
		state(9):        "state(9)",
	} {
		if got := st.String(); got != want {
			t.Errorf("state(%d).String() = %q, want %q", int(st), got, want)
		}
	}
}

// assertOnlyCacheFile fails if temp files were left next to the cache.
func assertOnlyCacheFile(t *testing.T, path string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(path) {
			t.Errorf("unexpected file next to cache: %s", e.Name())
		}
	}
}

func TestCache_Notices(t *testing.T) {
	var notices []string
	source := testutil.NewStubCatalogSource(newCatalog)
	cache := newTestCache(t, source, testutil.FixedClock(), WithNotices(func(msg string) {
		notices = append(notices, msg)
	}))

	if _, err := cache.AppTable(context.Background()); err != nil {
		t.Fatalf("AppTable() error = %v", err)
	}
	want := []string{"AppID file is missing, attempting to download..", "AppID file downloaded and saved!"}
	if len(notices) != len(want) || notices[0] != want[0] || notices[1] != want[1] {
		t.Errorf("notices = %q, want %q", notices, want)
	}

	// A fresh file needs no download and says nothing.
	notices = nil
	if _, err := cache.AppTable(context.Background()); err != nil {
		t.Fatalf("AppTable() error = %v", err)
	}
	if len(notices) != 0 {
		t.Errorf("notices on cached load = %q", notices)
	}
}

func TestCache_Notices_Stale(t *testing.T) {
	var notices []string
	clock := testutil.FixedClock()
	source := testutil.NewStubCatalogSource(newCatalog)
	cache := newTestCache(t, source, clock, WithNotices(func(msg string) {
		notices = append(notices, msg)
	}))
	writeCache(t, cache.Path(), oldCatalog, clock, 30*24*time.Hour)

	if _, err := cache.AppTable(context.Background()); err != nil {
		t.Fatalf("AppTable() error = %v", err)
	}
	want := []string{
		"AppID file outdated! Deleting..",
		"AppID file is missing, attempting to download..",
		"AppID file downloaded and saved!",
	}
	if strings.Join(notices, "|") != strings.Join(want, "|") {
		t.Errorf("notices = %q, want %q", notices, want)
	}
}

func TestCache_Notices_Refresh(t *testing.T) {
	var notices []string
	clock := testutil.FixedClock()
	source := testutil.NewStubCatalogSource(newCatalog)
	cache := newTestCache(t, source, clock, WithNotices(func(msg string) {
		notices = append(notices, msg)
	}))
	writeCache(t, cache.Path(), oldCatalog, clock, time.Minute)

	if _, err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(notices) != 1 || notices[0] != "AppID file downloaded and saved!" {
		t.Errorf("notices = %q", notices)
	}
}
