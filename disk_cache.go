package kmmage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/pkg/errors"
)

// DiskCache stores fetched image bytes in a directory. Keys are hashed into
// file names, so any string can be used as a key.
type DiskCache struct {
	dir     string
	maxSize int64

	mu sync.Mutex
	kv *diskv.Diskv
}

// DiskCacheOption configures a DiskCache.
type DiskCacheOption func(*DiskCache)

// WithMaxDiskSize caps the total size of the cached files, in bytes.
// Least recently written entries are removed first.
func WithMaxDiskSize(n int64) DiskCacheOption {
	return func(c *DiskCache) {
		c.maxSize = n
	}
}

// NewDiskCache creates a disk cache rooted at dir.
func NewDiskCache(dir string, opts ...DiskCacheOption) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create the cache directory")
	}
	c := &DiskCache{dir: dir}
	for _, opt := range opts {
		opt(c)
	}
	c.kv = diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 0,
	})
	return c, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Load returns the bytes stored for key. A missing entry is not an error.
func (c *DiskCache) Load(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := hashKey(key)
	if !c.kv.Has(k) {
		return nil, false, nil
	}
	data, err := c.kv.Read(k)
	if err != nil {
		return nil, false, errors.Wrap(err, "could not read the cache entry")
	}
	return data, true, nil
}

// Get is like Load but reports read failures as misses.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	data, ok, _ := c.Load(key)
	return data, ok
}

// Put stores data under key.
func (c *DiskCache) Put(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Write(hashKey(key), data); err != nil {
		return errors.Wrap(err, "could not write the cache entry")
	}
	if c.maxSize > 0 {
		return c.trim()
	}
	return nil
}

// Remove drops key from the cache.
func (c *DiskCache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := hashKey(key)
	if !c.kv.Has(k) {
		return nil
	}
	return c.kv.Erase(k)
}

// Clear removes every entry.
func (c *DiskCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.EraseAll(); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// Size returns the total size of the cached files.
func (c *DiskCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, e := range c.entries() {
		total += e.size
	}
	return total
}

type diskEntry struct {
	key     string
	size    int64
	modTime time.Time
}

func (c *DiskCache) entries() []diskEntry {
	var entries []diskEntry
	for k := range c.kv.Keys(nil) {
		fi, err := os.Stat(filepath.Join(c.dir, k))
		if err != nil {
			continue
		}
		entries = append(entries, diskEntry{key: k, size: fi.Size(), modTime: fi.ModTime()})
	}
	return entries
}

// trim removes the oldest entries until the cache fits in maxSize.
func (c *DiskCache) trim() error {
	entries := c.entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	var total int64
	for _, e := range entries {
		total += e.size
	}
	for _, e := range entries {
		if total <= c.maxSize {
			break
		}
		if err := c.kv.Erase(e.key); err != nil {
			return errors.Wrap(err, "could not trim the disk cache")
		}
		total -= e.size
	}
	return nil
}
