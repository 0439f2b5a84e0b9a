package debugimage

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCreatesDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.debugimage")
	defer teardown()
	//
	dir := filepath.Join(t.TempDir(), "nested", DefaultDir)
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(1, 1, color.RGBA{A: 0xff})

	path, err := Save(img, dir, "formula")
	require.NoError(t, err)
	assert.Equal(t, "formula.jpg", filepath.Base(path))
	assert.True(t, filepath.IsAbs(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), decoded.Bounds())
}

func TestSaveReportsPersistenceError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.debugimage")
	defer teardown()
	//
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Save(image.NewRGBA(image.Rect(0, 0, 1, 1)), filepath.Join(blocker, "sub"), "x")
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Path, "x.jpg")

	_, err = Save(nil, t.TempDir(), "nil")
	assert.Error(t, err)
}
