// Package appids keeps a local copy of the Steam app catalog and turns it
// into an ssb.AppTable.
package appids

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"ssb-go/internal/ssb"
)

// DefaultMaxAge is used when a Cache is created without a positive max age.
const DefaultMaxAge = 7 * 24 * time.Hour

// maxFetches bounds downloads per AppTable call. The second download only
// happens when the first one already looked stale.
const maxFetches = 2

// ErrStaleAfterFetch means a catalog that was just downloaded is already
// older than the max age, which points at a skewed clock.
var ErrStaleAfterFetch = errors.New("app id cache is stale right after download")

type state int

const (
	stateCheckCache state = iota
	stateCheckAge
	stateFetch
	stateReady
)

func (s state) String() string {
	switch s {
	case stateCheckCache:
		return "check-cache"
	case stateCheckAge:
		return "check-age"
	case stateFetch:
		return "fetch"
	case stateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Cache is the on-disk app catalog. The file holds the raw body of the last
// successful download and is replaced wholesale, never edited.
type Cache struct {
	path          string
	maxAge        time.Duration
	source        ssb.CatalogSource
	clock         ssb.Clock
	logger        ssb.Logger
	notify        func(msg string)
	disableUpdate bool
}

// Option customizes a Cache.
type Option func(*Cache)

// WithUpdatesDisabled makes the cache use whatever file is present, however
// old, and never download. A missing file is then an error.
func WithUpdatesDisabled(disabled bool) Option {
	return func(c *Cache) { c.disableUpdate = disabled }
}

// WithNotices sends short user-facing messages about downloads to fn.
func WithNotices(fn func(msg string)) Option {
	return func(c *Cache) {
		if fn != nil {
			c.notify = fn
		}
	}
}

// NewCache creates a cache stored at path that downloads from source.
func NewCache(path string, maxAge time.Duration, source ssb.CatalogSource, clock ssb.Clock, logger ssb.Logger, opts ...Option) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	c := &Cache{
		path:   path,
		maxAge: maxAge,
		source: source,
		clock:  clock,
		logger: logger,
		notify: func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// AppTable returns the table built from the cache file, downloading a new
// catalog first when the file is missing or older than the max age.
func (c *Cache) AppTable(ctx context.Context) (*ssb.AppTable, error) {
	if c.disableUpdate {
		c.logger.Debug("app id updates disabled", "path", c.path)
		return c.load()
	}

	var (
		st      = stateCheckCache
		info    fs.FileInfo
		fetches int
	)
	for {
		c.logger.Debug("app id cache", "state", st.String())

		switch st {
		case stateCheckCache:
			fi, err := os.Stat(c.path)
			if errors.Is(err, fs.ErrNotExist) {
				c.notify("AppID file is missing, attempting to download..")
				st = stateFetch
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("checking app id cache: %w", err)
			}
			info = fi
			st = stateCheckAge

		case stateCheckAge:
			age := c.clock.Now().Sub(info.ModTime())
			if age < c.maxAge {
				st = stateReady
				continue
			}
			if fetches >= maxFetches {
				return nil, fmt.Errorf("%w (age %s, max %s); check the system clock", ErrStaleAfterFetch, age.Round(time.Second), c.maxAge)
			}
			c.notify("AppID file outdated! Deleting..")
			c.logger.Info("app id cache expired", "path", c.path, "age", age.Round(time.Second).String())
			if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("removing stale app id cache: %w", err)
			}
			st = stateCheckCache

		case stateFetch:
			fetches++
			if err := c.fetch(ctx); err != nil {
				return nil, err
			}
			st = stateCheckCache

		case stateReady:
			return c.load()
		}
	}
}

// Refresh downloads a new catalog regardless of the cached file's age and
// returns the table built from it. The previous file is kept when the
// download fails.
func (c *Cache) Refresh(ctx context.Context) (*ssb.AppTable, error) {
	if err := c.fetch(ctx); err != nil {
		return nil, err
	}
	return c.load()
}

// fetch downloads the catalog into a temp file next to the cache file and
// renames it into place.
func (c *Cache) fetch(ctx context.Context) error {
	if c.source == nil {
		return fmt.Errorf("fetching app list: no catalog source configured")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating app id cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".appids-*")
	if err != nil {
		return fmt.Errorf("creating app id cache: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	c.logger.Info("downloading app list", "path", c.path)
	start := c.clock.Now()
	if err := c.source.FetchCatalog(ctx, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("fetching app list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing app id cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("writing app id cache: %w", err)
	}

	success = true
	c.notify("AppID file downloaded and saved!")
	c.logger.Info("app list downloaded", "path", c.path, "elapsed", c.clock.Now().Sub(start).String())
	return nil
}

func (c *Cache) load() (*ssb.AppTable, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening app id cache: %w", err)
	}
	defer f.Close()

	table, err := ssb.ParseAppTable(f)
	if err != nil {
		return nil, fmt.Errorf("parsing app id cache %s: %w", c.path, err)
	}
	if n := table.Skipped(); n > 0 {
		c.logger.Warn("app list entries skipped", "count", n)
	}
	c.logger.Debug("app id cache loaded", "apps", table.Len())
	return table, nil
}

// Compile-time check that Cache implements ssb.AppTableProvider interface
var _ ssb.AppTableProvider = (*Cache)(nil)
