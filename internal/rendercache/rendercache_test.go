package rendercache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(w, h int) Entry {
	px := make([]byte, w*h*4)
	for i := range px {
		px[i] = byte(i)
	}
	return Entry{Width: w, Height: h, Pixels: px}
}

func TestPutGet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.rendercache")
	defer teardown()
	//
	c, err := OpenMemory()
	require.NoError(t, err)
	defer c.Close()

	key := Key{Latex: "x^2", Style: core.DefaultStyle(), Density: 2}
	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := entry(3, 2)
	require.NoError(t, c.Put(key, want))
	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Pixels, got.Pixels)
	assert.Equal(t, 3, got.Width)
	assert.False(t, got.Created.IsZero())

	other := key
	other.Density = 1
	_, ok, err = c.Get(other)
	require.NoError(t, err)
	assert.False(t, ok, "density is part of the key")

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPutRejectsShortBuffers(t *testing.T) {
	c, err := OpenMemory()
	require.NoError(t, err)
	defer c.Close()
	e := entry(2, 2)
	e.Pixels = e.Pixels[:10]
	assert.Error(t, c.Put(Key{Latex: "a"}, e))
}

func TestPrune(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.rendercache")
	defer teardown()
	//
	c, err := OpenMemory()
	require.NoError(t, err)
	defer c.Close()

	old := entry(1, 1)
	old.Created = time.Now().Add(-time.Hour)
	require.NoError(t, c.Put(Key{Latex: "old"}, old))
	require.NoError(t, c.Put(Key{Latex: "new"}, entry(1, 1)))

	n, err := c.Prune(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok, err := c.Get(Key{Latex: "new"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := Open(dir)
	require.NoError(t, err)
	key := Key{Latex: `\pi`}
	require.NoError(t, c.Put(key, entry(2, 1)))
	require.NoError(t, c.Close())

	c, err = Open(dir)
	require.NoError(t, err)
	defer c.Close()
	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, filepath.Join(dir, FileName))
}

func TestKeyHashIsStable(t *testing.T) {
	a := Key{Latex: "a", Style: core.DefaultStyle(), Density: 1}
	b := a
	assert.Equal(t, a.Hash(), b.Hash())
	b.Style.FontSize = "9px"
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 64)
}
