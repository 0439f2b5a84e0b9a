package webview

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// canvasBackground is the colour behind the root element. The root's
// background propagates to the canvas, falling back to the body's.
func canvasBackground(d *document) color.RGBA {
	if c, ok := parseColor(d.html.style["background-color"]); ok {
		return c
	}
	if d.body != nil {
		if c, ok := parseColor(d.body.style["background-color"]); ok {
			return c
		}
	}
	return color.RGBA{0xff, 0xff, 0xff, 0xff}
}

// paint draws the laid out document onto dst at the given density.
func (lo *layouter) paint(dst draw.Image, d *document, density float64) {
	origin := dst.Bounds().Min
	draw.Draw(dst, dst.Bounds(), image.NewUniform(canvasBackground(d)), image.Point{}, draw.Src)
	var paintEl func(el *element)
	paintEl = func(el *element) {
		if display(el) == "none" {
			return
		}
		if el != d.html {
			if bg, ok := parseColor(el.style["background-color"]); ok {
				r := deviceRect(el.x, el.y, el.w, el.h, density).Add(origin)
				draw.Draw(dst, r, image.NewUniform(bg), image.Point{}, draw.Over)
			}
		}
		if el.text != nil && el.text.Lines() > 0 {
			fg, ok := parseColor(el.style["color"])
			if !ok {
				fg = color.RGBA{A: 0xff}
			}
			lo.ts.Fonts().SetFamily(el.style["font-family"])
			x := float64(origin.X)/density + el.x + el.padLeft
			y := float64(origin.Y)/density + el.y + el.padTop
			lo.ts.Draw(dst, el.text, x, y, density, fg)
		}
		for _, c := range el.children {
			paintEl(c)
		}
	}
	paintEl(d.html)
}

func deviceRect(x, y, w, h, density float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x*density)), int(math.Round(y*density)),
		int(math.Round((x+w)*density)), int(math.Round((y+h)*density)),
	)
}
