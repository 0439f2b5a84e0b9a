package webview

import (
	"math"
	"strings"

	"github.com/cryguy/mathrender/internal/texlayout"
)

// viewport is the layout viewport in CSS px.
type viewport struct {
	w, h float64
}

// layouter computes boxes for a document. Blocks, inline blocks and single
// line flex rows are supported; inline content is laid out by the
// typesetter as one block per leaf element.
type layouter struct {
	vp      viewport
	ts      *texlayout.Typesetter
	typeset bool // math regions are typeset
	delims  texlayout.Delimiters
}

func (lo *layouter) ctx(el *element, percentOf float64) lengthContext {
	return lengthContext{
		em: el.fontSize, rem: defaultFontSize,
		vw: lo.vp.w / 100, vh: lo.vp.h / 100,
		percentOf: percentOf,
	}
}

func (lo *layouter) length(el *element, prop string, percentOf float64) (float64, bool) {
	return parseLength(el.style[prop], lo.ctx(el, percentOf))
}

func (lo *layouter) lengthOr0(el *element, prop string, percentOf float64) float64 {
	v, _ := lo.length(el, prop, percentOf)
	return v
}

func display(el *element) string {
	if d := strings.TrimSpace(el.style["display"]); d != "" {
		return d
	}
	return "block"
}

// run lays out the whole document.
func (lo *layouter) run(d *document) {
	root := d.html
	lo.layout(root, lo.vp.w, lo.vp.h, false)
	lo.place(root, root.marginL, root.marginT)
}

// layout sizes el and positions its children relative to el's border box.
// cbW and cbH are the containing block's content size; cbH is negative when
// indefinite. shrink selects shrink-to-fit width.
func (lo *layouter) layout(el *element, cbW, cbH float64, shrink bool) {
	el.marginT = lo.lengthOr0(el, "margin-top", cbW)
	el.marginR = lo.lengthOr0(el, "margin-right", cbW)
	el.marginB = lo.lengthOr0(el, "margin-bottom", cbW)
	el.marginL = lo.lengthOr0(el, "margin-left", cbW)
	padT := lo.lengthOr0(el, "padding-top", cbW)
	padR := lo.lengthOr0(el, "padding-right", cbW)
	padB := lo.lengthOr0(el, "padding-bottom", cbW)
	padL := lo.lengthOr0(el, "padding-left", cbW)
	el.padLeft, el.padTop = padL, padT

	width, hasW := lo.length(el, "width", cbW)
	height, hasH := lo.length(el, "height", cbH)
	avail := width
	if !hasW {
		avail = math.Max(0, cbW-el.marginL-el.marginR-padL-padR)
	}
	innerH := -1.0
	if hasH {
		innerH = height
	}

	var contentW, contentH float64
	switch {
	case len(el.children) == 0:
		el.text = lo.text(el)
		contentW, contentH = el.text.Width, el.text.Height
		if !shrink {
			contentW = avail
		}
	case display(el) == "flex" || display(el) == "inline-flex":
		contentW, contentH = lo.flex(el, avail, innerH, hasW || !shrink)
	default:
		y := 0.0
		fit := shrink && !hasW
		var stretch []*element
		for _, c := range el.children {
			if display(c) == "none" {
				continue
			}
			d := display(c)
			block := d == "block" || d == "flex"
			lo.layout(c, avail, innerH, fit || !block)
			if fit && block {
				stretch = append(stretch, c)
			}
			c.relX, c.relY = padL+c.marginL, padT+y+c.marginT
			y += c.marginT + c.h + c.marginB
			contentW = math.Max(contentW, c.marginL+c.w+c.marginR)
		}
		contentH = y
		if !fit {
			contentW = avail
		}
		// block children of a shrink-to-fit box fill its final width
		for _, c := range stretch {
			if _, fixed := lo.length(c, "width", avail); !fixed {
				c.w = math.Max(c.w, contentW-c.marginL-c.marginR)
			}
		}
	}
	if hasW {
		contentW = width
	}
	if hasH {
		contentH = height
	}
	el.w = contentW + padL + padR
	el.h = contentH + padT + padB
}

// flex lays out a single line row flex container and returns its content
// size. fixedW keeps the available width instead of shrinking to content.
func (lo *layouter) flex(el *element, avail, innerH float64, fixedW bool) (float64, float64) {
	var items []*element
	main, cross := 0.0, 0.0
	for _, c := range el.children {
		if display(c) == "none" {
			continue
		}
		lo.layout(c, avail, innerH, true)
		items = append(items, c)
		main += c.marginL + c.w + c.marginR
		cross = math.Max(cross, c.marginT+c.h+c.marginB)
	}
	contentW := main
	if fixedW {
		contentW = avail
	}
	contentH := cross
	if innerH >= 0 {
		contentH = innerH
	}

	free := contentW - main
	x, gap := 0.0, 0.0
	switch strings.TrimSpace(el.style["justify-content"]) {
	case "center":
		x = free / 2
	case "flex-end", "end", "right":
		x = free
	case "space-between":
		if len(items) > 1 && free > 0 {
			gap = free / float64(len(items)-1)
		}
	case "space-around":
		if len(items) > 0 && free > 0 {
			gap = free / float64(len(items))
			x = gap / 2
		}
	case "space-evenly":
		if free > 0 {
			gap = free / float64(len(items)+1)
			x = gap
		}
	}
	for _, c := range items {
		outer := c.marginT + c.h + c.marginB
		y := c.marginT
		switch strings.TrimSpace(el.style["align-items"]) {
		case "center":
			y = (contentH-outer)/2 + c.marginT
		case "flex-end", "end":
			y = contentH - outer + c.marginT
		case "flex-start", "start", "baseline":
		default:
			if _, fixed := lo.length(c, "height", innerH); !fixed {
				c.h = math.Max(c.h, contentH-c.marginT-c.marginB)
			}
		}
		c.relX = el.padLeft + x + c.marginL
		c.relY = el.padTop + y
		x += c.marginL + c.w + c.marginR + gap
	}
	return contentW, contentH
}

// text typesets the text content of a leaf element.
func (lo *layouter) text(el *element) *texlayout.Block {
	lo.ts.Fonts().SetFamily(el.style["font-family"])
	d := texlayout.Delimiters{}
	if lo.typeset {
		d = lo.delims
	}
	return lo.ts.Layout(textOf(el.node), el.fontSize, d)
}

// place assigns absolute positions.
func (lo *layouter) place(el *element, x, y float64) {
	el.x, el.y = x, y
	for _, c := range el.children {
		if display(c) == "none" {
			continue
		}
		lo.place(c, x+c.relX, y+c.relY)
	}
}
