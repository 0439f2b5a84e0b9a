package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cryguy/mathrender"
	"github.com/cryguy/mathrender/internal/rendercache"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *mathrender.RenderedImage {
	m := image.NewRGBA(image.Rect(0, 0, 3, 2))
	m.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	m.Set(2, 1, color.RGBA{B: 0xff, A: 0xff})
	return mathrender.WrapImage(m)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "formula.png", outputPath("", 0, 1, ".png"))
	assert.Equal(t, "x.png", outputPath("x.png", 0, 1, ".png"))
	assert.Equal(t, "formula-2.jpg", outputPath("", 1, 3, ".jpg"))
	assert.Equal(t, filepath.Join("out", "formula-3.rgba"), outputPath("out", 2, 3, ".rgba"))
}

func TestReadSources(t *testing.T) {
	src, err := readSources([]string{" a\nb ", "  ", "c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "c"}, src)

	src, err = readSources(nil, strings.NewReader("\\frac{1}\n{2}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"\\frac{1} {2}"}, src)

	_, err = readSources(nil, strings.NewReader(" \n"))
	assert.Error(t, err)
}

func TestEncoders(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.cli")
	defer teardown()
	//
	_, err := encoderFor("gif", false)
	assert.Error(t, err)

	dir := t.TempDir()
	enc, err := encoderFor("png", false)
	require.NoError(t, err)
	path := filepath.Join(dir, "sub", "f"+enc.ext)
	img := testImage()
	require.NoError(t, writeFile(path, img, enc))
	assert.True(t, img.Released())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())

	enc, err = encoderFor("raw", true)
	require.NoError(t, err)
	path = filepath.Join(dir, "f"+enc.ext)
	require.NoError(t, writeFile(path, testImage(), enc))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, b, 3*2*4)
	// flipped: the blue pixel of the bottom row comes first
	assert.Equal(t, []byte{0, 0, 0xff, 0xff}, b[8:12])
	assert.Equal(t, []byte{0xff, 0, 0, 0xff}, b[12:16])
}

func TestCacheEntryRoundTrip(t *testing.T) {
	c, err := rendercache.OpenMemory()
	require.NoError(t, err)
	defer c.Close()
	key := rendercache.Key{Latex: "x", Style: mathrender.DefaultStyle(), Density: 2}
	entry, err := toEntry(testImage())
	require.NoError(t, err)
	require.NoError(t, c.Put(key, entry))
	e, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	img := fromEntry(e)
	assert.Equal(t, mathrender.Size{Width: 3, Height: 2}, img.Size())
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, img.RGBA().RGBAAt(2, 1))
}
