package texlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMathDelimiters(t *testing.T) {
	segs := SplitMath(`Area \(x^2\) and $$y$$ end`, DefaultDelimiters())
	assert.Equal(t, []Segment{
		{Text: "Area "},
		{Text: "x^2", Math: true},
		{Text: " and "},
		{Text: "y", Math: true, Display: true},
		{Text: " end"},
	}, segs)
}

func TestSplitMathUnclosedIsText(t *testing.T) {
	segs := SplitMath(`\(x`, DefaultDelimiters())
	assert.Equal(t, []Segment{{Text: `\(x`}}, segs)
}

func TestSplitMathEscapedDollar(t *testing.T) {
	segs := SplitMath(`costs \$5`, DefaultDelimiters())
	assert.Equal(t, []Segment{{Text: "costs $5"}}, segs)
}

func TestSplitMathEnvironment(t *testing.T) {
	src := `\begin{aligned}\begin{aligned}a\end{aligned}\end{aligned} tail`
	segs := SplitMath(src, DefaultDelimiters())
	assert.Len(t, segs, 2)
	assert.True(t, segs[0].Display)
	assert.Equal(t, src[:len(src)-5], segs[0].Text)
}

func TestSplitMathPlainText(t *testing.T) {
	d := DefaultDelimiters()
	d.Environments = false
	assert.Equal(t, []Segment{{Text: `\begin{x}`}}, SplitMath(`\begin{x}`, d))
	assert.Nil(t, SplitMath("", d))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, " a b ", collapseSpace("\n a \t\n b  "))
	assert.Equal(t, "ab", collapseSpace("ab"))
}

func TestFamilyIsMono(t *testing.T) {
	assert.True(t, familyIsMono(`"Courier New", monospace`))
	assert.False(t, familyIsMono("sans-serif"))
	assert.False(t, familyIsMono(""))
}
