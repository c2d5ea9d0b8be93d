// Package imagecache stores downloaded card images on disk, keyed by card
// code, with least-recently-used eviction.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotImage is returned when a download is not a JPEG or PNG image.
var ErrNotImage = errors.New("downloaded file is not a JPEG or PNG image")

// maxImageBytes caps a single download.
const maxImageBytes = 20 << 20

// Cache manages local caching of card images.
type Cache struct {
	cacheDir   string
	maxSize    int64 // Maximum cache size in bytes
	mu         sync.RWMutex
	sizes      map[string]int64     // Map of file path to file size
	lastUsed   map[string]time.Time // LRU tracking
	httpClient *http.Client
	userAgent  string
}

// CacheOptions configures the image cache.
type CacheOptions struct {
	CacheDir  string        // Directory to store cached images
	MaxSize   int64         // Maximum cache size in bytes (0 = unlimited)
	Timeout   time.Duration // HTTP request timeout
	UserAgent string
}

// DefaultCacheOptions returns sensible default cache options.
func DefaultCacheOptions() CacheOptions {
	homeDir, _ := os.UserHomeDir()
	cacheDir := filepath.Join(homeDir, ".nrdb-companion", "cache", "images")

	return CacheOptions{
		CacheDir: cacheDir,
		MaxSize:  500 * 1024 * 1024, // 500 MB default
		Timeout:  10 * time.Second,
	}
}

// NewCache creates a new image cache.
func NewCache(options CacheOptions) (*Cache, error) {
	if err := os.MkdirAll(options.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		cacheDir: options.CacheDir,
		maxSize:  options.MaxSize,
		sizes:    make(map[string]int64),
		lastUsed: make(map[string]time.Time),
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
		userAgent: options.UserAgent,
	}

	if err := cache.scan(); err != nil {
		return nil, fmt.Errorf("failed to scan cache directory: %w", err)
	}

	return cache, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.cacheDir
}

// Path returns the cached image for a card code, or "" when not cached.
// JPEG is preferred over PNG when both exist.
func (c *Cache) Path(code string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ext := range []string{".jpg", ".png"} {
		path := filepath.Join(c.cacheDir, code+ext)
		if _, ok := c.sizes[path]; ok {
			return path
		}
	}
	return ""
}

// Has reports whether an image for code is cached.
func (c *Cache) Has(code string) bool {
	return c.Path(code) != ""
}

// Fetch returns the cached image for code, downloading it from imageURL
// first when needed. It is safe for concurrent use.
func (c *Cache) Fetch(ctx context.Context, code, imageURL string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("card code is empty")
	}

	if path := c.Path(code); path != "" {
		c.mu.Lock()
		c.lastUsed[path] = time.Now()
		c.mu.Unlock()
		return path, nil
	}

	if imageURL == "" {
		return "", fmt.Errorf("image URL is empty")
	}
	return c.downloadAndCache(ctx, code, imageURL)
}

// downloadAndCache downloads an image and stores it in the cache.
func (c *Cache) downloadAndCache(ctx context.Context, code, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	ext, err := imageExtension(data)
	if err != nil {
		return "", fmt.Errorf("image for %s: %w", code, err)
	}
	cachePath := filepath.Join(c.cacheDir, code+ext)

	tempFile, err := os.CreateTemp(c.cacheDir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	size := int64(len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSpace(size); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to ensure cache space: %w", err)
	}

	if err := os.Rename(tempPath, cachePath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to move cached file: %w", err)
	}

	c.sizes[cachePath] = size
	c.lastUsed[cachePath] = time.Now()

	return cachePath, nil
}

func imageExtension(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	default:
		return "", ErrNotImage
	}
}

// ensureSpace evicts least recently used files to make room for a new file.
// Must be called with c.mu locked.
func (c *Cache) ensureSpace(neededSize int64) error {
	if c.maxSize == 0 {
		return nil
	}

	var currentSize int64
	for _, size := range c.sizes {
		currentSize += size
	}

	if currentSize+neededSize <= c.maxSize {
		return nil
	}

	type fileEntry struct {
		path     string
		lastUsed time.Time
		size     int64
	}

	files := make([]fileEntry, 0, len(c.sizes))
	for path, size := range c.sizes {
		files = append(files, fileEntry{
			path:     path,
			lastUsed: c.lastUsed[path],
			size:     size,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].lastUsed.Before(files[j].lastUsed) })

	for _, file := range files {
		if currentSize+neededSize <= c.maxSize {
			break
		}

		if err := os.Remove(file.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to evict cached file: %w", err)
		}

		delete(c.sizes, file.path)
		delete(c.lastUsed, file.path)
		currentSize -= file.size
	}

	return nil
}

// Clear removes all cached images.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.sizes {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cached file: %w", err)
		}
	}

	c.sizes = make(map[string]int64)
	c.lastUsed = make(map[string]time.Time)

	return nil
}

// GetCacheStats returns statistics about the cache.
func (c *Cache) GetCacheStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalSize int64
	for _, size := range c.sizes {
		totalSize += size
	}

	return CacheStats{
		TotalFiles: len(c.sizes),
		TotalSize:  totalSize,
		MaxSize:    c.maxSize,
		CacheDir:   c.cacheDir,
	}
}

// CacheStats contains statistics about the cache.
type CacheStats struct {
	TotalFiles int
	TotalSize  int64
	MaxSize    int64
	CacheDir   string
}

// scan initializes cache metadata by scanning the cache directory.
func (c *Cache) scan() error {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".jpg" && ext != ".png") {
			continue
		}

		path := filepath.Join(c.cacheDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		c.sizes[path] = info.Size()
		c.lastUsed[path] = info.ModTime()
	}

	return nil
}
