package texlayout

import (
	"sort"
	"strings"
)

// Segment is a run of element text: plain text or a math region.
type Segment struct {
	Text    string
	Math    bool
	Display bool
}

// Delimiters configures how math regions are found in text.
type Delimiters struct {
	Inline       [][2]string
	Display      [][2]string
	Environments bool // \begin{...}\end{...} outside delimiters is display math
	Escapes      bool // \$ is a literal dollar sign
}

// DefaultDelimiters returns the delimiters of a stock MathJax 3 page.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Inline:       [][2]string{{`\(`, `\)`}},
		Display:      [][2]string{{`$$`, `$$`}, {`\[`, `\]`}},
		Environments: true,
		Escapes:      true,
	}
}

type delimPair struct {
	open, close string
	display     bool
}

// SplitMath splits text into plain and math segments. An opening delimiter
// without a matching close is plain text.
func SplitMath(text string, d Delimiters) []Segment {
	var pairs []delimPair
	for _, p := range d.Display {
		pairs = append(pairs, delimPair{p[0], p[1], true})
	}
	for _, p := range d.Inline {
		pairs = append(pairs, delimPair{p[0], p[1], false})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return len(pairs[i].open) > len(pairs[j].open)
	})

	var segs []Segment
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			segs = append(segs, Segment{Text: plain.String()})
			plain.Reset()
		}
	}
	for i := 0; i < len(text); {
		if d.Escapes && strings.HasPrefix(text[i:], `\$`) {
			plain.WriteByte('$')
			i += 2
			continue
		}
		matched := false
		for _, p := range pairs {
			if p.open == "" || !strings.HasPrefix(text[i:], p.open) {
				continue
			}
			start := i + len(p.open)
			end := strings.Index(text[start:], p.close)
			if end < 0 {
				continue
			}
			flush()
			segs = append(segs, Segment{Text: text[start : start+end], Math: true, Display: p.display})
			i = start + end + len(p.close)
			matched = true
			break
		}
		if !matched && d.Environments && strings.HasPrefix(text[i:], `\begin{`) {
			if end := environmentEnd(text, i); end > 0 {
				flush()
				segs = append(segs, Segment{Text: text[i:end], Math: true, Display: true})
				i = end
				matched = true
			}
		}
		if !matched {
			plain.WriteByte(text[i])
			i++
		}
	}
	flush()
	return segs
}

// environmentEnd returns the index just past the \end matching the \begin
// at start, or -1.
func environmentEnd(text string, start int) int {
	nameStart := start + len(`\begin{`)
	brace := strings.IndexByte(text[nameStart:], '}')
	if brace < 0 {
		return -1
	}
	name := text[nameStart : nameStart+brace]
	begin, end := `\begin{`+name+`}`, `\end{`+name+`}`
	depth := 0
	for i := start; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], begin):
			depth++
			i += len(begin)
		case strings.HasPrefix(text[i:], end):
			depth--
			i += len(end)
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// collapseSpace collapses white space runs the way CSS white-space:normal
// does.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func splitFamily(family string) []string {
	var names []string
	for _, part := range strings.Split(family, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
