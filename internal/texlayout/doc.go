/*
Package texlayout is the typesetting script of the headless web view: it
turns the math regions of an element's text into boxes and paints them.

Typesetting follows the notation of the TeX typesetting system. A formula
is parsed into a list of nodes, each node is laid out into a Box measured
from its baseline (Width, Ascent, Descent), and boxes are combined into
horizontal lists with TeX-like inter-atom spacing. Boxes are flat: they
carry the glyphs and filled polygons of all their descendants, already
translated into the box's own coordinate system (CSS pixels, y grows
downwards, origin on the left end of the baseline).

Coverage is deliberately practical: symbols, scripts, fractions, binomials,
radicals, accents, \left/\right delimiters, text and font switches, big
operators with limits, and the aligned/gathered/matrix/cases/array
environments. Unknown commands are set verbatim.
*/
package texlayout

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'mathrender.texlayout'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.texlayout")
}
