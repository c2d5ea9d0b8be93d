package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/catalog"
	"github.com/ramonehamilton/NRDB-Companion/internal/collection"
	"github.com/ramonehamilton/NRDB-Companion/internal/config"
	"github.com/ramonehamilton/NRDB-Companion/internal/imagecache"
	"github.com/ramonehamilton/NRDB-Companion/internal/metrics"
	"github.com/ramonehamilton/NRDB-Companion/internal/nrdb"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
	"github.com/ramonehamilton/NRDB-Companion/internal/storage"
	"github.com/ramonehamilton/NRDB-Companion/internal/version"
)

// app holds global flags and the services commands open on demand.
type app struct {
	configFlag     string
	collectionFlag string
	cacheDirFlag   string
	verbose        bool

	cfg     *config.Config
	db      *storage.DB
	cache   *storage.Cache
	catalog *catalog.Service
	images  *imagecache.Cache
	metrics *metrics.Collector
}

func newApp() *app {
	return &app{metrics: metrics.NewCollector()}
}

func (a *app) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configFlag != "" {
		cfg, err = config.LoadFrom(a.configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return NewExitError(err, ExitValidationError)
	}
	a.cfg = cfg
	return nil
}

// collectionPath returns the collection file from the flag or config.
func (a *app) collectionPath() string {
	if a.collectionFlag != "" {
		return a.collectionFlag
	}
	return a.cfg.Collection.Path
}

func (a *app) cacheDir() (string, error) {
	if a.cacheDirFlag != "" {
		return config.ExpandHome(a.cacheDirFlag)
	}
	return a.cfg.CacheDir()
}

// openCatalog opens the metadata cache and the NetrunnerDB client.
func (a *app) openCatalog() (*catalog.Service, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}

	dir, err := a.cacheDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := storage.Open(storage.DefaultConfig(filepath.Join(dir, "catalog.db")))
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata cache: %w", err)
	}
	if db.Rebuilt() {
		output.Warn("Metadata cache was unreadable and has been reset", "dir", dir)
	}
	a.db = db

	ttl, _ := a.cfg.GetCacheTTL()
	rate, _ := a.cfg.GetRateLimit()
	timeout, _ := a.cfg.GetTimeout()

	client := nrdb.NewClient(
		nrdb.WithBaseURL(a.cfg.API.BaseURL),
		nrdb.WithRateLimit(rate),
		nrdb.WithTimeout(timeout),
		nrdb.WithMetrics(a.metrics),
	)
	a.cache = storage.NewCache(db, storage.SystemClock{}, ttl)
	a.catalog = catalog.NewService(client, a.cache, output.Logger)
	a.catalog.SetMetrics(a.metrics)
	return a.catalog, nil
}

// openImages opens the on-disk card image cache.
func (a *app) openImages() (*imagecache.Cache, error) {
	if a.images != nil {
		return a.images, nil
	}

	dir, err := a.cacheDir()
	if err != nil {
		return nil, err
	}
	timeout, _ := a.cfg.GetTimeout()

	images, err := imagecache.NewCache(imagecache.CacheOptions{
		CacheDir:  filepath.Join(dir, "images"),
		MaxSize:   a.cfg.ImageMaxSize(),
		Timeout:   timeout,
		UserAgent: "NRDB-Companion/" + version.Version,
	})
	if err != nil {
		return nil, err
	}
	a.images = images
	return images, nil
}

// loadIndex loads the card index, showing a spinner while fetching.
func (a *app) loadIndex(ctx context.Context) (*cards.Index, error) {
	svc, err := a.openCatalog()
	if err != nil {
		return nil, err
	}

	var ix *cards.Index
	err = output.RunWithSpinner(ctx, func(ctx context.Context) error {
		var err error
		ix, err = svc.Index(ctx)
		return err
	}, output.WithTitle("Loading card data..."))
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// openCollection loads the collection file with the card index attached.
func (a *app) openCollection(ctx context.Context) (*collection.Manager, *cards.Index, error) {
	ix, err := a.loadIndex(ctx)
	if err != nil {
		return nil, nil, err
	}
	m, err := collection.Open(a.collectionPath(), ix)
	if err != nil {
		return nil, nil, err
	}
	return m, ix, nil
}

// requireCollection is openCollection for commands that need an existing file.
func (a *app) requireCollection(ctx context.Context) (*collection.Manager, *cards.Index, error) {
	path := a.collectionPath()
	if !collection.Exists(path) {
		return nil, nil, NewExitError(
			fmt.Errorf("collection file not found: %s (run 'nrdb-companion init' first)", path),
			ExitNotFound)
	}
	return a.openCollection(ctx)
}

func (a *app) close() {
	if stats := a.metrics.Stats(); !stats.Empty() {
		output.Debug("Run metrics", stats.KeyVals()...)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			output.Debug("Failed to close metadata cache", "err", err)
		}
		a.db = nil
	}
}
