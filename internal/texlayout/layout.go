package texlayout

import (
	"math"
	"unicode/utf8"
)

// Font dimensions in em, after the TeX math fonts.
const (
	axisHeight  = 0.25
	xHeight     = 0.431
	ruleWidth   = 0.06
	sup1        = 0.413
	sup2        = 0.363
	supDrop     = 0.386
	subDrop     = 0.05
	sub1        = 0.15
	sub2        = 0.247
	num1        = 0.677
	num2        = 0.394
	num3        = 0.443
	denom1      = 0.686
	denom2      = 0.345
	scriptSpace = 0.05
	nullDelim   = 0.12
	bigOpSpace  = 0.15
)

// env is the current math style.
type env struct {
	size    float64 // font size in px
	base    float64 // size at level 0
	level   int     // 0 text or display, 1 script, 2 scriptscript
	display bool
	font    Style
	hasFont bool
}

func (e env) em(v float64) float64 {
	return v * e.size
}

func (e env) rule() float64 {
	return math.Max(e.em(ruleWidth), 0.05*e.base)
}

func (e env) script() env {
	return e.atLevel(e.level + 1)
}

func (e env) atLevel(level int) env {
	if level > 2 {
		level = 2
	}
	e.level = level
	e.display = false
	switch level {
	case 0:
		e.size = e.base
	case 1:
		e.size = 0.7 * e.base
	default:
		e.size = 0.5 * e.base
	}
	return e
}

func (e env) text() env {
	e.display = false
	return e
}

// spacing is the TeX inter-atom spacing table in thin, medium and thick
// spaces. Negative entries apply in display and text style only.
var spacing = [8][8]int8{
	classOrd:   {0, 1, -2, -3, 0, 0, 0, -1},
	classOp:    {1, 1, 0, -3, 0, 0, 0, -1},
	classBin:   {-2, -2, 0, 0, -2, 0, 0, -2},
	classRel:   {-3, -3, 0, 0, -3, 0, 0, -3},
	classOpen:  {0, 0, 0, 0, 0, 0, 0, 0},
	classClose: {0, 1, -2, -3, 0, 0, 0, -1},
	classPunct: {-1, -1, 0, -1, -1, -1, -1, -1},
	classInner: {-1, 1, -2, -3, -1, 0, -1, -1},
}

var muSkip = [4]float64{0, 3, 4, 5}

func interAtomSpace(left, right atomClass, e env) float64 {
	if left > classInner || right > classInner {
		return 0
	}
	v := spacing[left][right]
	if v < 0 {
		if e.level > 0 {
			return 0
		}
		v = -v
	}
	return muSkip[v] * e.size / 18
}

// item is a laid out member of a horizontal list.
type item struct {
	box   *Box
	class atomClass
}

// hlist lays out a math list left to right.
func (ts *Typesetter) hlist(nodes []node, e env) *Box {
	return ts.hlistAfter(nodes, e, classNone)
}

// hlistAfter lays out a list as if it followed an atom of class prev.
func (ts *Typesetter) hlistAfter(nodes []node, e env, prev atomClass) *Box {
	items := make([]item, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		b, class := ts.layout(n, e)
		items = append(items, item{box: b, class: class})
	}

	// a binary operator without operands becomes ordinary
	last := prev
	for i := range items {
		c := items[i].class
		if c == classNone {
			continue
		}
		if c == classBin {
			switch last {
			case classNone, classBin, classOp, classRel, classOpen, classPunct:
				items[i].class = classOrd
			}
		}
		if c == classRel || c == classClose || c == classPunct {
			if j := prevAtom(items, i); j >= 0 && items[j].class == classBin {
				items[j].class = classOrd
			}
		}
		last = items[i].class
	}
	if j := prevAtom(items, len(items)); j >= 0 && items[j].class == classBin {
		items[j].class = classOrd
	}

	out := &Box{}
	last = prev
	for _, it := range items {
		if it.class != classNone {
			if last != classNone {
				out.Width += interAtomSpace(last, it.class, e)
			}
			last = it.class
		}
		out.place(it.box, out.Width, 0)
		out.extend(it.box, 0)
		out.Width += it.box.Width
	}
	return out
}

func prevAtom(items []item, i int) int {
	for j := i - 1; j >= 0; j-- {
		if items[j].class != classNone {
			return j
		}
	}
	return -1
}

// layout lays out a single node and reports its class.
func (ts *Typesetter) layout(n node, e env) (*Box, atomClass) {
	switch n := n.(type) {
	case atomNode:
		if n.big {
			return ts.bigOp(n, e), classOp
		}
		style := n.style
		if e.hasFont && n.class == classOrd {
			style = e.font
		}
		return ts.glyph(n.text, style, e.size), n.class
	case groupNode:
		return ts.hlist(n.list, e), classOrd
	case scriptsNode:
		return ts.scripts(n, e)
	case fracNode:
		return ts.frac(n, e), classInner
	case sqrtNode:
		return ts.sqrt(n, e), classOrd
	case textNode:
		return ts.glyph(n.text, n.style, e.size), classOrd
	case fontNode:
		inner := e
		inner.font, inner.hasFont = n.style, true
		b, _ := ts.layout(n.body, inner)
		return b, classOrd
	case spaceNode:
		return kern(n.em * e.size), classNone
	case accentNode:
		return ts.accent(n, e), classOrd
	case leftRightNode:
		return ts.leftRight(n, e), classInner
	case delimNode:
		return ts.delimiter(n.delim, n.height*e.size, e), n.class
	case phantomNode:
		b, _ := ts.layout(n.body, e)
		return &Box{Width: b.Width, Ascent: b.Ascent, Descent: b.Descent}, classOrd
	case tableNode:
		return ts.table(n, e), classOrd
	case breakNode:
		return &Box{}, classNone
	}
	return &Box{}, classNone
}

// glyph sets a run of text. Vertical extent is the ink of the run.
func (ts *Typesetter) glyph(text string, style Style, size float64) *Box {
	if text == "" {
		return &Box{}
	}
	m := ts.fonts.measure(style, size, text)
	return &Box{
		Width:   m.advance,
		Ascent:  math.Max(-m.inkTop, 0),
		Descent: math.Max(m.inkBottom, 0),
		Glyphs:  []Glyph{{Text: text, Style: style, Size: size}},
	}
}

// bigOp sets a large operator centred on the math axis.
func (ts *Typesetter) bigOp(n atomNode, e env) *Box {
	size := e.size * 1.2
	if e.display && e.level == 0 {
		size = e.size * 1.7
	}
	m := ts.fonts.measure(n.style, size, n.text)
	shift := -e.em(axisHeight) - (m.inkTop+m.inkBottom)/2
	return &Box{
		Width:   m.advance,
		Ascent:  math.Max(-(m.inkTop + shift), 0),
		Descent: math.Max(m.inkBottom+shift, 0),
		Glyphs:  []Glyph{{Y: shift, Text: n.text, Style: n.style, Size: size}},
	}
}

func isCharNode(n node) (atomNode, bool) {
	a, ok := n.(atomNode)
	if !ok || a.big || utf8.RuneCountInString(a.text) != 1 {
		return a, false
	}
	return a, true
}

func (ts *Typesetter) scripts(n scriptsNode, e env) (*Box, atomClass) {
	base, class := ts.layout(n.base, e)
	if class == classNone {
		class = classOrd
	}
	if a, ok := n.base.(atomNode); n.stack || (ok && a.limits && e.display && e.level == 0) {
		return ts.limits(base, n, e), class
	}

	out := &Box{}
	out.place(base, 0, 0)
	out.extend(base, 0)
	x := base.Width

	se := e.script()
	var sup, sub *Box
	if n.sup != nil {
		sup, _ = ts.layout(n.sup, se)
	}
	if n.sub != nil {
		sub, _ = ts.layout(n.sub, se)
	}

	baseChar, isChar := isCharNode(n.base)
	var u, v float64
	if !isChar {
		u = base.Ascent - se.em(supDrop)
		v = base.Descent + se.em(subDrop)
	}
	supKern := 0.0
	if isChar && baseChar.style == Italic {
		supKern = e.em(0.08)
	}

	width := 0.0
	if sup != nil {
		p := sup2
		if e.display && e.level == 0 {
			p = sup1
		}
		u = math.Max(u, math.Max(e.em(p), sup.Descent+e.em(xHeight)/4))
		width = sup.Width + supKern
	}
	if sub != nil {
		if sup == nil {
			v = math.Max(v, math.Max(e.em(sub1), sub.Ascent-e.em(xHeight)*4/5))
		} else {
			v = math.Max(v, e.em(sub2))
			if gap := (u - sup.Descent) - (sub.Ascent - v); gap < 4*e.rule() {
				v += 4*e.rule() - gap
			}
		}
		width = math.Max(width, sub.Width)
	}
	if sup != nil {
		out.place(sup, x+supKern, -u)
		out.extend(sup, -u)
	}
	if sub != nil {
		out.place(sub, x, v)
		out.extend(sub, v)
	}
	out.Width = x + width + e.em(scriptSpace)
	return out, class
}

// limits stacks scripts above and below the base.
func (ts *Typesetter) limits(base *Box, n scriptsNode, e env) *Box {
	se := e.script()
	var sup, sub *Box
	w := base.Width
	if n.sup != nil {
		sup, _ = ts.layout(n.sup, se)
		w = math.Max(w, sup.Width)
	}
	if n.sub != nil {
		sub, _ = ts.layout(n.sub, se)
		w = math.Max(w, sub.Width)
	}
	gap := e.em(bigOpSpace)
	out := &Box{Width: w}
	out.place(base, (w-base.Width)/2, 0)
	out.extend(base, 0)
	if sup != nil {
		dy := -(base.Ascent + gap + sup.Descent)
		out.place(sup, (w-sup.Width)/2, dy)
		out.extend(sup, dy)
	}
	if sub != nil {
		dy := base.Descent + gap + sub.Ascent
		out.place(sub, (w-sub.Width)/2, dy)
		out.extend(sub, dy)
	}
	return out
}

func (ts *Typesetter) frac(n fracNode, e env) *Box {
	display := e.display && e.level == 0
	switch n.style {
	case 'd':
		display = e.level == 0
	case 't':
		display = false
	}
	inner := e.script()
	if display {
		inner = e.text()
	}
	num, _ := ts.layout(n.num, inner)
	den, _ := ts.layout(n.den, inner)

	t := e.rule()
	axis := e.em(axisHeight)
	var u, v float64
	if display {
		u, v = e.em(num1), e.em(denom1)
	} else if n.rule {
		u, v = e.em(num2), e.em(denom2)
	} else {
		u, v = e.em(num3), e.em(denom2)
	}
	if n.rule {
		phi := t
		if display {
			phi = 3 * t
		}
		u = math.Max(u, axis+t/2+phi+num.Descent)
		v = math.Max(v, den.Ascent+phi+t/2-axis)
	} else {
		psi := 3 * t
		if display {
			psi = 7 * t
		}
		if gap := (u - num.Descent) - (den.Ascent - v); gap < psi {
			u += (psi - gap) / 2
			v += (psi - gap) / 2
		}
	}

	pad := e.em(nullDelim)
	w := math.Max(num.Width, den.Width)
	out := &Box{Width: w + 2*pad}
	out.place(num, pad+(w-num.Width)/2, -u)
	out.extend(num, -u)
	out.place(den, pad+(w-den.Width)/2, v)
	out.extend(den, v)
	if n.rule {
		out.rect(pad/2, -axis-t/2, w+pad, t)
	}
	if n.left == "" && n.right == "" {
		return out
	}
	h := math.Max(out.Ascent-axis, out.Descent+axis) * 2
	return hbox(ts.delimiter(n.left, h, e), out, ts.delimiter(n.right, h, e))
}

func (ts *Typesetter) sqrt(n sqrtNode, e env) *Box {
	body, _ := ts.layout(n.body, e)
	t := e.rule()
	gap := t + t/4
	if e.display && e.level == 0 {
		gap = t + e.em(xHeight)/4
	}
	body.Ascent = math.Max(body.Ascent, e.em(xHeight))
	top := -(body.Ascent + gap + t/2)
	bottom := body.Descent + t
	h := bottom - top
	sw := math.Min(e.em(0.55)+0.05*h, e.em(0.9))

	sign := &Box{}
	tick := top + 0.6*h
	sign.stroke(0, tick+e.em(0.06), 0.22*sw, tick, t)
	sign.stroke(0.22*sw, tick, 0.5*sw, bottom, 1.8*t)
	sign.stroke(0.5*sw, bottom, sw, top, t)
	sign.rect(sw-t/4, top-t/2, body.Width+e.em(0.1)+t/4, t)

	out := &Box{Width: sw + body.Width + e.em(0.1), Ascent: -top + t, Descent: bottom + t/2}
	out.place(sign, 0, 0)
	out.place(body, sw, 0)

	if n.index == nil {
		return out
	}
	idx, _ := ts.layout(n.index, e.atLevel(e.level+2))
	raise := bottom - 0.6*h
	lead := math.Max(0, idx.Width-0.5*sw)
	full := &Box{Width: out.Width + lead}
	full.place(idx, lead+0.5*sw-idx.Width, raise-idx.Descent)
	full.extend(idx, raise-idx.Descent)
	full.place(out, lead, 0)
	full.extend(out, 0)
	return full
}

func (ts *Typesetter) accent(n accentNode, e env) *Box {
	body, _ := ts.layout(n.body, e)
	t := e.rule()
	out := &Box{Width: body.Width}
	out.place(body, 0, 0)
	out.extend(body, 0)
	switch {
	case n.over:
		y := -(math.Max(body.Ascent, e.em(xHeight)) + 2*t)
		out.rect(0, y-t, body.Width, t)
		out.Ascent = -y + 2*t
	case n.under:
		y := body.Descent + 2*t
		out.rect(0, y, body.Width, t)
		out.Descent = y + 2*t
	default:
		size := e.size
		if n.mark == "→" || n.mark == "←" {
			size *= 0.75
		}
		m := ts.fonts.measure(Regular, size, n.mark)
		gap := e.em(0.05)
		base := -(math.Max(body.Ascent, e.em(xHeight)) + gap) - m.inkBottom
		skew := 0.0
		if a, ok := isCharNode(n.body); ok && a.style == Italic {
			skew = e.em(0.06)
		}
		x := (body.Width-m.advance)/2 + skew
		out.Glyphs = append(out.Glyphs, Glyph{X: x, Y: base, Text: n.mark, Style: Regular, Size: size})
		out.Ascent = math.Max(out.Ascent, -(base + m.inkTop))
	}
	return out
}

func (ts *Typesetter) leftRight(n leftRightNode, e env) *Box {
	body := ts.hlistAfter(n.body, e, classOpen)
	axis := e.em(axisHeight)
	delta := math.Max(body.Ascent-axis, body.Descent+axis)
	h := math.Max(2*delta*0.901, 2*delta-e.em(0.5))
	return hbox(ts.delimiter(n.left, h, e), body, ts.delimiter(n.right, h, e))
}

func (ts *Typesetter) table(n tableNode, e env) *Box {
	cellEnv := e.text()
	if n.displayCells && e.level == 0 {
		cellEnv.display = true
	}
	cols := 0
	for _, row := range n.rows {
		cols = max(cols, len(row))
	}
	cells := make([][]*Box, len(n.rows))
	widths := make([]float64, cols)
	asc := make([]float64, len(n.rows))
	desc := make([]float64, len(n.rows))
	for i, row := range n.rows {
		cells[i] = make([]*Box, len(row))
		asc[i], desc[i] = e.em(0.75), e.em(0.25)
		for j, cell := range row {
			prev := classNone
			if n.pairs && j%2 == 1 {
				prev = classOrd
			}
			b := ts.hlistAfter(cell, cellEnv, prev)
			cells[i][j] = b
			widths[j] = math.Max(widths[j], b.Width)
			asc[i] = math.Max(asc[i], b.Ascent)
			desc[i] = math.Max(desc[i], b.Descent)
		}
	}

	colX := make([]float64, cols)
	x := 0.0
	for j := range cols {
		colX[j] = x
		x += widths[j]
		if j < cols-1 && !(n.pairs && j%2 == 0) {
			x += e.em(n.colGap)
		}
	}
	rowGap := e.em(0.25)
	height := 0.0
	for i := range n.rows {
		height += asc[i] + desc[i]
		if i > 0 {
			height += rowGap
		}
	}
	top := -e.em(axisHeight) - height/2
	out := &Box{Width: x, Ascent: -top}
	out.Descent = height + top
	y := top
	for i, row := range cells {
		y += asc[i]
		for j, b := range row {
			off := 0.0
			switch n.columnAlign(j) {
			case 'r':
				off = widths[j] - b.Width
			case 'c':
				off = (widths[j] - b.Width) / 2
			}
			out.place(b, colX[j]+off, y)
		}
		y += desc[i] + rowGap
	}
	if n.left == "" && n.right == "" {
		return out
	}
	h := height + e.em(0.2)
	return hbox(ts.delimiter(n.left, h, e), out, ts.delimiter(n.right, h, e))
}

func (n tableNode) columnAlign(j int) byte {
	if n.pairs {
		if j%2 == 0 {
			return 'r'
		}
		return 'l'
	}
	if j < len(n.align) {
		return n.align[j]
	}
	return n.align[len(n.align)-1]
}
