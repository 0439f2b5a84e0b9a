package texlayout

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glyphsOf(b *Box, text string) []Glyph {
	var gs []Glyph
	for _, g := range b.Glyphs {
		if g.Text == text {
			gs = append(gs, g)
		}
	}
	return gs
}

func TestAlignedLinesUpRelations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.texlayout")
	defer teardown()
	//
	ts := newTypesetter(t)
	b := ts.Math(`\begin{aligned} x &= 1 \\ a+b+c &= 2 \end{aligned}`, 20, true)
	eqs := glyphsOf(b, "=")
	require.Len(t, eqs, 2)
	assert.InDelta(t, eqs[0].X, eqs[1].X, 1e-6)
	assert.Greater(t, eqs[1].Y, eqs[0].Y)

	right := func(g Glyph) float64 { return g.X + ts.glyph(g.Text, g.Style, g.Size).Width }
	xs, cs := glyphsOf(b, "x"), glyphsOf(b, "c")
	require.Len(t, xs, 1)
	require.Len(t, cs, 1)
	assert.InDelta(t, right(xs[0]), right(cs[0]), 1e-6, "left sides end at the same column")
	assert.Less(t, glyphsOf(b, "a")[0].X, xs[0].X)
}

func TestCasesHasOpeningBraceOnly(t *testing.T) {
	ts := newTypesetter(t)
	plain := ts.Math(`\begin{matrix} 1 & x \\ 0 & y \end{matrix}`, 20, true)
	cases := ts.Math(`\begin{cases} 1 & x \\ 0 & y \end{cases}`, 20, true)
	assert.Greater(t, cases.Width, plain.Width)
	braces := glyphsOf(cases, "{")
	require.Len(t, braces, 1, "stretched brace")
	assert.Greater(t, braces[0].Size, 20.0)
	assert.Empty(t, glyphsOf(cases, "}"))

	one, zero := glyphsOf(cases, "1"), glyphsOf(cases, "0")
	require.Len(t, one, 1)
	require.Len(t, zero, 1)
	assert.InDelta(t, one[0].X, zero[0].X, 1e-6)
	assert.Greater(t, one[0].X, braces[0].X, "cells sit right of the brace")
	xs, ys := glyphsOf(cases, "x"), glyphsOf(cases, "y")
	require.Len(t, xs, 1)
	require.Len(t, ys, 1)
	assert.InDelta(t, xs[0].X, ys[0].X, 1e-6, "conditions are left aligned")
}

func TestArrayColumnSpec(t *testing.T) {
	ts := newTypesetter(t)
	b := ts.Math(`\begin{array}{rl} a & b \\ aaa & bbb \end{array}`, 20, true)
	require.Len(t, b.Glyphs, 8)
	g := b.Glyphs
	assert.InDelta(t, g[0].X, g[4].X, 1e-6, "right aligned column")
	assert.Greater(t, g[0].X, g[2].X)
	assert.InDelta(t, g[1].X, g[5].X, 1e-6, "left aligned column")
}

func TestDelimitedMatrices(t *testing.T) {
	ts := newTypesetter(t)
	const cells = ` a & b \\ c & d `
	bare := ts.Math(`\begin{matrix}`+cells+`\end{matrix}`, 20, true)
	assert.Empty(t, bare.Polygons)
	for _, env := range []string{"pmatrix", "bmatrix", "vmatrix", "Vmatrix"} {
		b := ts.Math(`\begin{`+env+`}`+cells+`\end{`+env+`}`, 20, true)
		assert.Greater(t, b.Width, bare.Width, env)
		assert.Len(t, b.Glyphs, 4, env)
		assert.NotEmpty(t, b.Polygons, "%s delimiters are outlines", env)
	}
	b := ts.Math(`\begin{Bmatrix}`+cells+`\end{Bmatrix}`, 20, true)
	assert.Len(t, glyphsOf(b, "{"), 1)
	assert.Len(t, glyphsOf(b, "}"), 1)
}

func TestLeftRightGrowsWithContent(t *testing.T) {
	ts := newTypesetter(t)
	low := ts.Math(`\left( x \right)`, 20, true)
	tall := ts.Math(`\left( \frac{\frac{a}{b}}{c} \right)`, 20, true)
	assert.Greater(t, tall.Height(), low.Height())
	body := ts.Math(`\frac{\frac{a}{b}}{c}`, 20, true)
	open := ts.Math(`\left. \frac{\frac{a}{b}}{c} \right|`, 20, true)
	assert.Len(t, open.Polygons, len(body.Polygons)+1, "only the bar is drawn")
	assert.Greater(t, open.Width, body.Width)
}

func TestBinomHasParensAndNoRule(t *testing.T) {
	ts := newTypesetter(t)
	frac := ts.Math(`\frac{n}{k}`, 20, true)
	binom := ts.Math(`\binom{n}{k}`, 20, true)
	assert.Greater(t, binom.Width, frac.Width)
	assert.Len(t, frac.Polygons, 1)
	// n, k and two parens, drawn as glyphs or outlines
	assert.Equal(t, 4, len(binom.Glyphs)+len(binom.Polygons))
}
