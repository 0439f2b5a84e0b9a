// Package pixels holds rendered surfaces and turns them into raw RGBA bytes.
package pixels

import (
	"errors"
	"image"

	"github.com/cryguy/mathrender/internal/core"
	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one RGBA pixel in extracted buffers.
const BytesPerPixel = 4

// ErrImageReleased is returned when a released image is read.
var ErrImageReleased = errors.New("pixels: image already released")

// RenderedImage is a rasterized surface in 8-bit RGBA with premultiplied
// alpha. It belongs to whoever received it; Extract consumes it.
type RenderedImage struct {
	img           *image.RGBA
	width, height int
}

// New allocates a transparent surface of size, clamped to at least 1x1.
func New(size core.Size) *RenderedImage {
	size = size.Clamp()
	return &RenderedImage{
		img:    image.NewRGBA(image.Rect(0, 0, size.Width, size.Height)),
		width:  size.Width,
		height: size.Height,
	}
}

// Wrap adopts img. Images that are not an *image.RGBA anchored at the
// origin are converted.
func Wrap(img image.Image) *RenderedImage {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &RenderedImage{img: rgba, width: b.Dx(), height: b.Dy()}
}

// Width is the surface width in device pixels. It survives Release.
func (r *RenderedImage) Width() int { return r.width }

// Height is the surface height in device pixels. It survives Release.
func (r *RenderedImage) Height() int { return r.height }

// Size returns the surface dimensions.
func (r *RenderedImage) Size() core.Size {
	return core.Size{Width: r.width, Height: r.height}
}

// RGBA returns the pixel buffer, or nil once released.
func (r *RenderedImage) RGBA() *image.RGBA { return r.img }

// Released reports whether the pixel memory has been dropped.
func (r *RenderedImage) Released() bool { return r.img == nil }

// Release drops the pixel memory. It is safe to call more than once.
func (r *RenderedImage) Release() { r.img = nil }

// Extract copies the pixels into a new row-major RGBA buffer of exactly
// width*height*4 bytes and releases the image.
func Extract(r *RenderedImage) ([]byte, error) {
	return extract(r, false)
}

// ExtractFlipped is like Extract with the rows in bottom-up order, the
// layout expected by GL textures.
func ExtractFlipped(r *RenderedImage) ([]byte, error) {
	return extract(r, true)
}

// Copy is like Extract but leaves the image alive.
func Copy(r *RenderedImage) ([]byte, error) {
	return copyRows(r, false)
}

func extract(r *RenderedImage, flip bool) ([]byte, error) {
	buf, err := copyRows(r, flip)
	if err == nil {
		r.Release()
	}
	return buf, err
}

func copyRows(r *RenderedImage, flip bool) ([]byte, error) {
	if r == nil || r.img == nil {
		return nil, ErrImageReleased
	}
	row := r.width * BytesPerPixel
	buf := make([]byte, row*r.height)
	for y := range r.height {
		src := r.img.Pix[y*r.img.Stride : y*r.img.Stride+row]
		dy := y
		if flip {
			dy = r.height - 1 - y
		}
		copy(buf[dy*row:], src)
	}
	return buf, nil
}
