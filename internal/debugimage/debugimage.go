// Package debugimage dumps rendered images to disk for inspection.
package debugimage

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mathrender.debugimage'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.debugimage")
}

// DefaultDir is the directory dumps go to when none is configured.
const DefaultDir = "MathJaxDebug"

// Quality is the JPEG quality of dumps.
const Quality = 90

// PersistenceError reports a dump that could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving debug image %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Save writes img to <dir>/<name>.jpg, creating dir if needed, and returns
// the absolute path. Failures are logged and returned as
// *PersistenceError.
func Save(img image.Image, dir, name string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	path := filepath.Join(dir, name+".jpg")
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := write(img, dir, path); err != nil {
		perr := &PersistenceError{Path: path, Err: err}
		tracer().Errorf("%v", perr)
		return "", perr
	}
	tracer().Infof("saved image to %s", path)
	return path, nil
}

func write(img image.Image, dir, path string) (err error) {
	if img == nil {
		return fmt.Errorf("no image")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: Quality})
}
