package texlayout

import "math"

// Point is a position in CSS pixels, y grows downwards.
type Point struct {
	X, Y float64
}

// Glyph is a run of text placed on a baseline at (X, Y).
type Glyph struct {
	X, Y  float64
	Text  string
	Style Style
	Size  float64
}

// Polygon is a closed, filled outline.
type Polygon []Point

// Box is a laid out piece of math. Coordinates of glyphs and polygons are
// relative to the left end of the box's baseline.
type Box struct {
	Width, Ascent, Descent float64
	Glyphs                 []Glyph
	Polygons               []Polygon
}

// Height is the total extent of the box.
func (b *Box) Height() float64 {
	return b.Ascent + b.Descent
}

// place copies the contents of child into b, shifted by (dx, dy).
func (b *Box) place(child *Box, dx, dy float64) {
	if child == nil {
		return
	}
	for _, g := range child.Glyphs {
		g.X += dx
		g.Y += dy
		b.Glyphs = append(b.Glyphs, g)
	}
	for _, p := range child.Polygons {
		moved := make(Polygon, len(p))
		for i, pt := range p {
			moved[i] = Point{pt.X + dx, pt.Y + dy}
		}
		b.Polygons = append(b.Polygons, moved)
	}
}

// extend grows the box's vertical extent to include child shifted by dy.
func (b *Box) extend(child *Box, dy float64) {
	b.Ascent = math.Max(b.Ascent, child.Ascent-dy)
	b.Descent = math.Max(b.Descent, child.Descent+dy)
}

// rect adds a filled rectangle with top-left (x, y).
func (b *Box) rect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	b.Polygons = append(b.Polygons, Polygon{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}})
}

// stroke adds a line segment of thickness w as a quadrilateral.
func (b *Box) stroke(x0, y0, x1, y1, w float64) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*w/2, dx/l*w/2
	b.Polygons = append(b.Polygons, Polygon{
		{x0 + nx, y0 + ny}, {x1 + nx, y1 + ny}, {x1 - nx, y1 - ny}, {x0 - nx, y0 - ny},
	})
}

// hbox concatenates boxes on a common baseline.
func hbox(children ...*Box) *Box {
	out := &Box{}
	for _, c := range children {
		if c == nil {
			continue
		}
		out.place(c, out.Width, 0)
		out.extend(c, 0)
		out.Width += c.Width
	}
	return out
}

// kern is an empty box of width w.
func kern(w float64) *Box {
	return &Box{Width: w}
}
