package mathrender

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSource(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"  x^2  ":                   "x^2",
		"\\begin{matrix}\na\\\\\nb": "\\begin{matrix} a\\\\ b",
		"a\r\nb\rc":                 "a b c",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSource(in), "input %q", in)
	}
}

func TestBackendIsKnown(t *testing.T) {
	assert.Contains(t, []string{"quickjs", "v8", "goja"}, Backend())
}

func TestSaveDebugImage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender")
	defer teardown()
	//
	saved := DebugDir
	defer func() { DebugDir = saved }()
	DebugDir = filepath.Join(t.TempDir(), "debug")

	img := WrapImage(solid(Size{Width: 4, Height: 3}))
	path, err := SaveDebugImage(img, "formula")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DebugDir, "formula.jpg"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.False(t, img.Released())

	img.Release()
	_, err = SaveDebugImage(img, "again")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrImageReleased)
}

func TestRendererEndToEnd(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender")
	defer teardown()
	//
	loop := NewLoop(2)
	defer loop.Close()
	images := make(chan *RenderedImage, 1)
	failures := make(chan error, 1)
	r := New(loop, CallbackFunc(func(img *RenderedImage) { images <- img }),
		WithSettleDelay(time.Millisecond),
		WithFailureCallback(FailureFunc(func(_ RenderRequest, err error) { failures <- err })))
	defer r.Close()

	r.Submit(`\(x^2+y^2=z^2\)`)
	select {
	case img := <-images:
		w, h := img.Width(), img.Height()
		assert.Greater(t, w, 1)
		assert.Greater(t, h, 1)
		assert.Equal(t, Size{Width: w, Height: h}, r.Size())
		data, err := Extract(img)
		require.NoError(t, err)
		assert.Len(t, data, w*h*BytesPerPixel)
		_, err = Extract(img)
		assert.ErrorIs(t, err, ErrImageReleased)
	case err := <-failures:
		t.Fatalf("render failed: %v", err)
	case <-time.After(DefaultTimeout):
		t.Fatal("no image")
	}
}

// renderOnce renders latex on a fresh loop and returns the extracted pixels.
func renderOnce(t *testing.T, loopDensity float64, latex string, opts ...Option) (Size, []byte) {
	t.Helper()
	loop := NewLoop(loopDensity)
	defer loop.Close()
	images := make(chan *RenderedImage, 1)
	failures := make(chan error, 1)
	opts = append([]Option{
		WithSettleDelay(time.Millisecond),
		WithFailureCallback(FailureFunc(func(_ RenderRequest, err error) { failures <- err })),
	}, opts...)
	r := New(loop, CallbackFunc(func(img *RenderedImage) { images <- img }), opts...)
	defer r.Close()

	r.Submit(latex)
	select {
	case img := <-images:
		size := img.Size()
		data, err := Extract(img)
		require.NoError(t, err)
		return size, data
	case err := <-failures:
		t.Fatalf("render failed: %v", err)
	case <-time.After(DefaultTimeout):
		t.Fatal("no image")
	}
	return Size{}, nil
}

func TestDensityOptionMatchesHostDensity(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender")
	defer teardown()
	//
	const latex = `\(\frac{a}{b}+x^2\)`
	hostSize, hostPixels := renderOnce(t, 2, latex)
	optSize, optPixels := renderOnce(t, 1, latex, WithDensity(2))
	assert.Equal(t, hostSize, optSize)
	assert.True(t, bytes.Equal(hostPixels, optPixels), "images differ")

	plainSize, _ := renderOnce(t, 1, latex)
	assert.Greater(t, optSize.Width, plainSize.Width)
}
