package texlayout

import "math"

// delimiter builds a delimiter of at least height h centred on the math
// axis. Small sizes use the font glyph; larger ones are drawn as outlines
// or as a scaled glyph.
func (ts *Typesetter) delimiter(d string, h float64, e env) *Box {
	if d == "" {
		return kern(e.em(nullDelim))
	}
	if h <= e.em(1.2) {
		return ts.glyph(d, Regular, e.size)
	}
	axis := e.em(axisHeight)
	top := -axis - h/2
	bottom := -axis + h/2
	b := &Box{Ascent: -top, Descent: math.Max(bottom, 0)}
	t := e.rule()
	switch d {
	case "(", ")":
		w := math.Min(e.em(0.35)+0.04*h, e.em(0.8))
		b.Width = w
		b.Polygons = append(b.Polygons, paren(w, top, bottom, math.Max(1.6*t, e.em(0.07)+0.01*h), d == ")"))
	case "[", "]", "⌊", "⌋", "⌈", "⌉":
		w := e.em(0.45)
		b.Width = w
		th := 1.4 * t
		x := w * 0.3
		arm := w * 0.45
		if d == "]" || d == "⌋" || d == "⌉" {
			x = w*0.7 - th
			arm = -arm
		}
		b.rect(x, top, th, h)
		if d != "⌊" && d != "⌋" {
			b.rect(math.Min(x, x+arm+th), top, math.Abs(arm), th)
		}
		if d != "⌈" && d != "⌉" {
			b.rect(math.Min(x, x+arm+th), bottom-th, math.Abs(arm), th)
		}
	case "|", "‖":
		th := 1.2 * t
		b.Width = e.em(0.28)
		if d == "|" {
			b.rect((b.Width-th)/2, top, th, h)
		} else {
			b.Width = e.em(0.45)
			b.rect(b.Width/2-2*th, top, th, h)
			b.rect(b.Width/2+th, top, th, h)
		}
	case "⟨", "⟩":
		w := math.Min(e.em(0.3)+0.08*h, e.em(0.9))
		b.Width = w
		near, far := w*0.2, w*0.8
		if d == "⟩" {
			near, far = far, near
		}
		b.stroke(far, top, near, (top+bottom)/2, 1.2*t)
		b.stroke(near, (top+bottom)/2, far, bottom, 1.2*t)
	default:
		return ts.scaledGlyph(d, h, e)
	}
	return b
}

// scaledGlyph sets the glyph at a size whose ink height is h.
func (ts *Typesetter) scaledGlyph(d string, h float64, e env) *Box {
	m := ts.fonts.measure(Regular, e.size, d)
	ink := m.inkBottom - m.inkTop
	if ink <= 0 {
		return ts.glyph(d, Regular, e.size)
	}
	size := e.size * h / ink
	m = ts.fonts.measure(Regular, size, d)
	shift := -e.em(axisHeight) - (m.inkTop+m.inkBottom)/2
	return &Box{
		Width:   m.advance,
		Ascent:  math.Max(-(m.inkTop + shift), 0),
		Descent: math.Max(m.inkBottom+shift, 0),
		Glyphs:  []Glyph{{Y: shift, Text: d, Style: Regular, Size: size}},
	}
}

// paren outlines a stretched parenthesis as a crescent between two
// quadratic curves sharing their end points.
func paren(w, top, bottom, thick float64, right bool) Polygon {
	const steps = 16
	end := 0.85 * w
	apex := 0.12 * w
	outerCtl := 2*apex - end
	innerCtl := 2*(apex+thick) - end
	var poly Polygon
	quad := func(ctl float64, from, to float64, reverse bool) {
		for i := 0; i <= steps; i++ {
			s := float64(i) / steps
			if reverse {
				s = 1 - s
			}
			x := (1-s)*(1-s)*end + 2*(1-s)*s*ctl + s*s*end
			y := (1-s)*(1-s)*from + 2*(1-s)*s*(from+to)/2 + s*s*to
			if right {
				x = w - x
			}
			poly = append(poly, Point{x, y})
		}
	}
	quad(outerCtl, top, bottom, false)
	quad(innerCtl, top, bottom, true)
	return poly
}
