package kmmage

import (
	"fmt"
	"image"
	"maps"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies an image in the memory cache. Extras hold the values,
// like the resolved size or the transformations, that make two loads of the
// same data differ.
type Key struct {
	Key    string
	Extras map[string]string
}

func newKey(key string) *Key {
	if key == "" {
		return nil
	}
	return &Key{Key: key}
}

// clone returns a copy of k that shares no state with it.
func (k *Key) clone() *Key {
	if k == nil {
		return nil
	}
	return &Key{Key: k.Key, Extras: maps.Clone(k.Extras)}
}

// String returns the canonical form of the key: extras are sorted by name.
func (k Key) String() string {
	if len(k.Extras) == 0 {
		return k.Key
	}
	var sb strings.Builder
	sb.WriteString(k.Key)
	for _, name := range slices.Sorted(maps.Keys(k.Extras)) {
		fmt.Fprintf(&sb, "|%s=%s", name, k.Extras[name])
	}
	return sb.String()
}

// DefaultMemoryCacheSize is the number of images a memory cache keeps by default.
const DefaultMemoryCacheSize = 128

// MemoryCache is a fixed size LRU cache of decoded images.
type MemoryCache struct {
	cache *lru.Cache[string, image.Image]
}

// NewMemoryCache creates a memory cache holding at most size images.
func NewMemoryCache(size int) (*MemoryCache, error) {
	cache, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("could not create memory cache: %w", err)
	}
	return &MemoryCache{cache: cache}, nil
}

func (m *MemoryCache) Get(key Key) (image.Image, bool) {
	return m.cache.Get(key.String())
}

// Set stores img under key, evicting the least recently used entry when full.
func (m *MemoryCache) Set(key Key, img image.Image) {
	m.cache.Add(key.String(), img)
}

// Remove drops key and reports whether it was present.
func (m *MemoryCache) Remove(key Key) bool {
	return m.cache.Remove(key.String())
}

func (m *MemoryCache) Clear() {
	m.cache.Purge()
}

func (m *MemoryCache) Len() int {
	return m.cache.Len()
}
