package kmmage

import (
	"image"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_String(t *testing.T) {
	k := Key{Key: "a.png", Extras: map[string]string{"z": "1", "b": "2"}}
	assert.Equal(t, "a.png|b=2|z=1", k.String())
	assert.Equal(t, "a.png", Key{Key: "a.png"}.String())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	mc, err := NewMemoryCache(2)
	require.NoError(t, err)

	a, b, c := Key{Key: "a"}, Key{Key: "b"}, Key{Key: "c"}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	mc.Set(a, img)
	mc.Set(b, img)
	_, ok := mc.Get(a)
	require.True(t, ok)
	mc.Set(c, img)

	assert.Equal(t, 2, mc.Len())
	_, ok = mc.Get(b)
	assert.False(t, ok, "b is the least recently used entry")
	_, ok = mc.Get(a)
	assert.True(t, ok)

	assert.True(t, mc.Remove(a))
	assert.False(t, mc.Remove(a))
	mc.Clear()
	assert.Zero(t, mc.Len())

	_, err = NewMemoryCache(0)
	assert.Error(t, err)
}

func TestMemoryCache_ExtrasAreCanonical(t *testing.T) {
	mc, err := NewMemoryCache(4)
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	mc.Set(Key{Key: "a", Extras: map[string]string{"x": "1", "y": "2"}}, img)

	got, ok := mc.Get(Key{Key: "a", Extras: map[string]string{"y": "2", "x": "1"}})
	assert.True(t, ok)
	assert.Same(t, img, got)

	_, ok = mc.Get(Key{Key: "a"})
	assert.False(t, ok)
}

func TestDiskCache(t *testing.T) {
	dc, err := NewDiskCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	_, ok := dc.Get("https://example.com/a.png")
	assert.False(t, ok)

	require.NoError(t, dc.Put("https://example.com/a.png", []byte("data")))
	data, ok := dc.Get("https://example.com/a.png")
	assert.True(t, ok)
	assert.Equal(t, []byte("data"), data)
	assert.Equal(t, int64(4), dc.Size())

	require.NoError(t, dc.Remove("https://example.com/a.png"))
	require.NoError(t, dc.Remove("https://example.com/a.png"))
	_, ok = dc.Get("https://example.com/a.png")
	assert.False(t, ok)

	require.NoError(t, dc.Put("b", []byte("b")))
	require.NoError(t, dc.Clear())
	_, ok = dc.Get("b")
	assert.False(t, ok)

	require.NoError(t, dc.Put("c", []byte("c")))
	_, ok = dc.Get("c")
	assert.True(t, ok, "the cache is usable after Clear")
}

func TestDiskCache_TrimsOldestEntries(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, WithMaxDiskSize(25))
	require.NoError(t, err)

	payload := make([]byte, 10)
	now := time.Now()
	for i, k := range []string{"old", "mid"} {
		require.NoError(t, dc.Put(k, payload))
		mtime := now.Add(time.Duration(i-10) * time.Minute)
		require.NoError(t, os.Chtimes(filepath.Join(dir, hashKey(k)), mtime, mtime))
	}
	require.NoError(t, dc.Put("new", payload))

	assert.LessOrEqual(t, dc.Size(), int64(25))
	_, ok := dc.Get("old")
	assert.False(t, ok)
	_, ok = dc.Get("mid")
	assert.True(t, ok)
	_, ok = dc.Get("new")
	assert.True(t, ok)
}

// unreadableEntry places a unix socket where the entry for key is stored: it
// exists as a regular name but cannot be opened for reading.
func unreadableEntry(t *testing.T, key string) *DiskCache {
	t.Helper()
	dir, err := os.MkdirTemp("", "kc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	ln, err := net.Listen("unix", filepath.Join(dir, hashKey(key)))
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	dc, err := NewDiskCache(dir)
	require.NoError(t, err)
	return dc
}

func TestDiskCache_LoadReportsReadErrors(t *testing.T) {
	dc := unreadableEntry(t, "a")

	_, ok, err := dc.Load("a")
	assert.False(t, ok)
	assert.Error(t, err)

	_, ok = dc.Get("a")
	assert.False(t, ok)

	_, ok, err = dc.Load("missing")
	assert.False(t, ok)
	assert.NoError(t, err)
}
