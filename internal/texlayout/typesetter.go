package texlayout

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Typesetter lays out and paints math. It is not safe for concurrent use.
type Typesetter struct {
	fonts *Fonts
}

// New creates a typesetter with its own face cache.
func New() (*Typesetter, error) {
	fonts, err := NewFonts()
	if err != nil {
		return nil, err
	}
	return &Typesetter{fonts: fonts}, nil
}

// Fonts returns the typesetter's face cache.
func (ts *Typesetter) Fonts() *Fonts {
	return ts.fonts
}

// Close releases the cached faces.
func (ts *Typesetter) Close() error {
	return ts.fonts.Close()
}

// Math lays out a single formula at font size px.
func (ts *Typesetter) Math(src string, size float64, display bool) *Box {
	e := env{size: size, base: size, display: display}
	nodes := parse(src)
	if rows := splitRows(nodes); len(rows) > 1 {
		t := tableNode{align: "c", displayCells: display}
		for _, row := range rows {
			t.rows = append(t.rows, [][]node{row})
		}
		return ts.table(t, e)
	}
	return ts.hlist(nodes, e)
}

func splitRows(nodes []node) [][]node {
	var rows [][]node
	start := 0
	for i, n := range nodes {
		if _, ok := n.(breakNode); ok {
			rows = append(rows, nodes[start:i])
			start = i + 1
		}
	}
	if start < len(nodes) || len(rows) == 0 {
		rows = append(rows, nodes[start:])
	}
	return rows
}

// Block is laid out element content: lines of text and math.
type Block struct {
	Width, Height float64
	lines         []line
}

type line struct {
	x, baseline float64
	box         *Box
}

// Lines reports the number of line boxes.
func (b *Block) Lines() int {
	return len(b.lines)
}

// displayMargin separates display math from neighbouring lines. Margins
// at the top and bottom of the block collapse into the parent.
const displayMargin = 1.0

// Layout typesets element text at font size px. Plain text runs use the
// text face; math regions found by d are typeset. Lines are not wrapped.
func (ts *Typesetter) Layout(text string, size float64, d Delimiters) *Block {
	textStyle := Regular
	if ts.fonts.monoText {
		textStyle = Mono
	}
	strutAsc, strutDesc := ts.fonts.lineMetrics(size)

	type piece struct {
		text string
		box  *Box
	}
	type pending struct {
		box     *Box
		display bool
	}
	var out []pending
	var cur []piece
	flush := func() {
		if len(cur) == 0 {
			return
		}
		if cur[0].box == nil {
			cur[0].text = strings.TrimLeft(cur[0].text, " ")
		}
		if last := len(cur) - 1; cur[last].box == nil {
			cur[last].text = strings.TrimRight(cur[last].text, " ")
		}
		var boxes []*Box
		for _, p := range cur {
			if p.box != nil {
				boxes = append(boxes, p.box)
			} else if p.text != "" {
				boxes = append(boxes, ts.glyph(p.text, textStyle, size))
			}
		}
		cur = cur[:0]
		if len(boxes) > 0 {
			out = append(out, pending{box: hbox(boxes...)})
		}
	}
	for _, seg := range SplitMath(text, d) {
		switch {
		case !seg.Math:
			cur = append(cur, piece{text: collapseSpace(seg.Text)})
		case seg.Display:
			flush()
			out = append(out, pending{box: ts.Math(seg.Text, size, true), display: true})
		default:
			cur = append(cur, piece{box: ts.Math(seg.Text, size, false)})
		}
	}
	flush()

	blk := &Block{}
	for _, p := range out {
		blk.Width = math.Max(blk.Width, p.box.Width)
	}
	y := 0.0
	for i, p := range out {
		if i > 0 && (p.display || out[i-1].display) {
			y += displayMargin * size
		}
		asc := math.Max(strutAsc, p.box.Ascent)
		desc := math.Max(strutDesc, p.box.Descent)
		x := 0.0
		if p.display {
			x = (blk.Width - p.box.Width) / 2
		}
		blk.lines = append(blk.lines, line{x: x, baseline: y + asc, box: p.box})
		y += asc + desc
	}
	blk.Height = y
	return blk
}

// Draw paints the block with its top-left corner at (x, y) CSS pixels.
// scale converts CSS pixels to device pixels.
func (ts *Typesetter) Draw(dst draw.Image, blk *Block, x, y, scale float64, c color.Color) {
	src := image.NewUniform(c)
	for _, l := range blk.lines {
		ts.DrawBox(dst, l.box, x+l.x, y+l.baseline, scale, src)
	}
}

// DrawBox paints a box with its baseline origin at (x, y) CSS pixels.
func (ts *Typesetter) DrawBox(dst draw.Image, b *Box, x, y, scale float64, src image.Image) {
	for _, g := range b.Glyphs {
		face := ts.fonts.Face(g.Style, g.Size*scale)
		if face == nil {
			continue
		}
		d := font.Drawer{
			Dst:  dst,
			Src:  src,
			Face: face,
			Dot:  fixed.Point26_6{X: toFixed((x + g.X) * scale), Y: toFixed((y + g.Y) * scale)},
		}
		d.DrawString(g.Text)
	}
	for _, p := range b.Polygons {
		fillPolygon(dst, p, x, y, scale, src)
	}
}

// fillPolygon rasterizes p into a coverage mask and composites src through
// it, clipped to dst.
func fillPolygon(dst draw.Image, p Polygon, x, y, scale float64, src image.Image) {
	if len(p) < 3 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	pts := make([]Point, len(p))
	for i, pt := range p {
		pts[i] = Point{(x + pt.X) * scale, (y + pt.Y) * scale}
		minX, minY = math.Min(minX, pts[i].X), math.Min(minY, pts[i].Y)
		maxX, maxY = math.Max(maxX, pts[i].X), math.Max(maxY, pts[i].Y)
	}
	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	if r.Dx() == 0 {
		r.Max.X++
	}
	if r.Dy() == 0 {
		r.Max.Y++
	}
	clip := r.Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, pt := range pts[1:] {
		z.LineTo(float32(pt.X-ox), float32(pt.Y-oy))
	}
	z.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, clip, src, image.Point{}, mask, clip.Min.Sub(r.Min), draw.Over)
}
