package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/cryguy/mathrender"
	"github.com/cryguy/mathrender/internal/rendercache"
)

// encoder writes a rendered image in one output format.
type encoder struct {
	ext    string
	encode func(w io.Writer, img *mathrender.RenderedImage) error
}

func encoderFor(format string, flip bool) (encoder, error) {
	switch format {
	case "png":
		return encoder{ext: ".png", encode: func(w io.Writer, img *mathrender.RenderedImage) error {
			return png.Encode(w, img.RGBA())
		}}, nil
	case "jpeg", "jpg":
		return encoder{ext: ".jpg", encode: func(w io.Writer, img *mathrender.RenderedImage) error {
			return jpeg.Encode(w, img.RGBA(), &jpeg.Options{Quality: 90})
		}}, nil
	case "raw", "rgba":
		return encoder{ext: ".rgba", encode: func(w io.Writer, img *mathrender.RenderedImage) error {
			extract := mathrender.Extract
			if flip {
				extract = mathrender.ExtractFlipped
			}
			data, err := extract(img)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}}, nil
	}
	return encoder{}, fmt.Errorf("unknown output format %q", format)
}

// outputPath names the file for expression i of n. A single expression is
// written to out itself; several go into the directory out.
func outputPath(out string, i, n int, ext string) string {
	if n == 1 {
		if out == "" {
			return "formula" + ext
		}
		return out
	}
	if out == "" {
		out = "."
	}
	return filepath.Join(out, fmt.Sprintf("formula-%d%s", i+1, ext))
}

// writeFile encodes img to path and releases it.
func writeFile(path string, img *mathrender.RenderedImage, enc encoder) (err error) {
	defer img.Release()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
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
	if err := enc.encode(f, img); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// toEntry copies the pixels of img into a cache entry.
func toEntry(img *mathrender.RenderedImage) (rendercache.Entry, error) {
	pix, err := mathrender.CopyPixels(img)
	if err != nil {
		return rendercache.Entry{}, err
	}
	return rendercache.Entry{Width: img.Width(), Height: img.Height(), Pixels: pix}, nil
}

func fromEntry(e rendercache.Entry) *mathrender.RenderedImage {
	m := image.NewRGBA(image.Rect(0, 0, e.Width, e.Height))
	copy(m.Pix, e.Pixels)
	return mathrender.WrapImage(m)
}
