package texlayout

import (
	"strconv"
	"strings"
)

// maxDepth bounds group nesting. Deeper input is set verbatim.
const maxDepth = 64

type node interface{}

type atomNode struct {
	text   string
	class  atomClass
	style  Style
	big    bool // large operator
	limits bool // scripts above and below in display style
}

type groupNode struct {
	list []node
}

type scriptsNode struct {
	base, sup, sub node
	stack          bool // always stack, as in \overset
}

type fracNode struct {
	num, den    node
	rule        bool
	left, right string
	style       byte // 'd', 't' or 0
}

type sqrtNode struct {
	body, index node
}

type textNode struct {
	text  string
	style Style
}

type fontNode struct {
	body  node
	style Style
}

type spaceNode struct {
	em float64
}

type accentNode struct {
	body  node
	mark  string
	over  bool // rule above
	under bool // rule below
}

type leftRightNode struct {
	left, right string
	body        []node
}

type delimNode struct {
	delim  string
	height float64 // em
	class  atomClass
}

type phantomNode struct {
	body node
}

type tableNode struct {
	rows         [][][]node
	align        string // per column l, c or r; the last letter repeats
	pairs        bool   // rl column pairs as in aligned
	colGap       float64
	left, right  string
	displayCells bool
}

type breakNode struct{}

// parse reads TeX math source into a node list. It never fails: malformed
// input degrades to verbatim text like an unknown command does.
func parse(src string) []node {
	p := &parser{toks: tokenize(src)}
	var out []node
	for p.pos < len(p.toks) {
		list, stop, ok := p.parseList(false)
		out = append(out, list...)
		if !ok {
			break
		}
		// unbalanced closers at top level
		p.pos++
		if stop.is(tokCommand, "end") {
			p.parseRaw()
		}
	}
	return out
}

type parser struct {
	toks  []token
	pos   int
	depth int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.toks) && p.toks[p.pos].kind == tokSpace {
		p.pos++
	}
}

func isRowEnd(t token) bool {
	return t.is(tokCommand, "\\") || t.is(tokCommand, "cr")
}

// parseList parses until EOF or a closing token. The closing token is not
// consumed; ok reports whether one was found.
func (p *parser) parseList(inTable bool) (list []node, stop token, ok bool) {
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		switch {
		case t.kind == tokClose:
			return list, t, true
		case t.is(tokCommand, "right"), t.is(tokCommand, "end"):
			return list, t, true
		case t.kind == tokAlign:
			if inTable {
				return list, t, true
			}
			p.pos++
			continue
		case isRowEnd(t):
			if inTable {
				return list, t, true
			}
			p.pos++
			p.parseOptional()
			list = append(list, breakNode{})
			continue
		case t.kind == tokSpace:
			p.pos++
			continue
		case t.kind == tokSup, t.kind == tokSub:
			p.pos++
			arg := p.parseArg()
			list = attachScript(list, arg, t.kind == tokSup)
			continue
		case t.is(tokChar, "'"):
			primes := ""
			for p.pos < len(p.toks) && p.toks[p.pos].is(tokChar, "'") {
				primes += "′"
				p.pos++
			}
			list = attachScript(list, atomNode{text: primes, class: classOrd}, true)
			continue
		case t.is(tokCommand, "limits"), t.is(tokCommand, "nolimits"):
			p.pos++
			if n := len(list); n > 0 {
				if a, isAtom := list[n-1].(atomNode); isAtom && a.class == classOp {
					a.limits = t.text == "limits"
					list[n-1] = a
				}
			}
			continue
		}
		if n := p.parseAtom(); n != nil {
			list = append(list, n)
		}
	}
	return list, token{}, false
}

func attachScript(list []node, arg node, sup bool) []node {
	n := len(list)
	if n > 0 {
		if s, ok := list[n-1].(scriptsNode); ok {
			if sup && s.sup == nil {
				s.sup = arg
				list[n-1] = s
				return list
			}
			if !sup && s.sub == nil {
				s.sub = arg
				list[n-1] = s
				return list
			}
		} else {
			s := scriptsNode{base: list[n-1]}
			if sup {
				s.sup = arg
			} else {
				s.sub = arg
			}
			list[n-1] = s
			return list
		}
	}
	s := scriptsNode{base: groupNode{}}
	if sup {
		s.sup = arg
	} else {
		s.sub = arg
	}
	return append(list, s)
}

// parseGroup parses {...}; the opening brace is the current token.
func (p *parser) parseGroup() node {
	p.pos++
	if p.depth >= maxDepth {
		start := p.pos - 1
		p.skipGroup()
		return textNode{text: source(p.toks[start:p.pos]), style: Regular}
	}
	p.depth++
	list, stop, ok := p.parseList(false)
	p.depth--
	if ok && stop.kind == tokClose {
		p.pos++
	}
	return groupNode{list: list}
}

// skipGroup advances past the brace matching an already consumed {.
func (p *parser) skipGroup() {
	level := 1
	for p.pos < len(p.toks) && level > 0 {
		switch p.toks[p.pos].kind {
		case tokOpen:
			level++
		case tokClose:
			level--
		}
		p.pos++
	}
}

// parseArg reads a macro argument: a group or a single token.
func (p *parser) parseArg() node {
	p.skipSpace()
	t, ok := p.peek()
	if !ok {
		return groupNode{}
	}
	switch t.kind {
	case tokOpen:
		return p.parseGroup()
	case tokClose, tokAlign:
		return groupNode{}
	}
	if t.kind == tokCommand && (t.text == "right" || t.text == "end" || isRowEnd(t)) {
		return groupNode{}
	}
	if n := p.parseAtom(); n != nil {
		return n
	}
	return groupNode{}
}

// parseRaw reads an argument as source text.
func (p *parser) parseRaw() string {
	p.skipSpace()
	t, ok := p.peek()
	if !ok {
		return ""
	}
	if t.kind != tokOpen {
		p.pos++
		if t.kind == tokCommand {
			return "\\" + t.text
		}
		return t.text
	}
	p.pos++
	start := p.pos
	p.skipGroup()
	end := p.pos
	if end > start && p.toks[end-1].kind == tokClose {
		end--
	}
	return source(p.toks[start:end])
}

// parseOptional parses a [...] argument, or returns nil.
func (p *parser) parseOptional() node {
	save := p.pos
	p.skipSpace()
	t, ok := p.peek()
	if !ok || !t.is(tokChar, "[") {
		p.pos = save
		return nil
	}
	level := 0
	start := p.pos + 1
	for i := start; i < len(p.toks); i++ {
		switch {
		case p.toks[i].kind == tokOpen:
			level++
		case p.toks[i].kind == tokClose:
			level--
		case level == 0 && p.toks[i].is(tokChar, "]"):
			sub := &parser{toks: p.toks[start:i], depth: p.depth + 1}
			list, _, _ := sub.parseList(false)
			p.pos = i + 1
			return groupNode{list: list}
		}
	}
	p.pos = save
	return nil
}

func (p *parser) parseAtom() node {
	t := p.toks[p.pos]
	switch t.kind {
	case tokOpen:
		return p.parseGroup()
	case tokChar:
		p.pos++
		if t.text == "~" {
			return spaceNode{em: spaces[" "]}
		}
		s := charSymbol(t.text)
		return atomNode{text: s.text, class: s.class, style: s.style}
	case tokCommand:
		p.pos++
		return p.parseCommand(t.text)
	}
	p.pos++
	return nil
}

func (p *parser) parseCommand(name string) node {
	if g, ok := greek[name]; ok {
		return atomNode{text: g, class: classOrd, style: Italic}
	}
	if g, ok := upperGreek[name]; ok {
		return atomNode{text: g, class: classOrd, style: Regular}
	}
	if s, ok := symbols[name]; ok {
		return atomNode{text: s.text, class: s.class, style: s.style}
	}
	if limits, ok := functions[name]; ok {
		return atomNode{text: name, class: classOp, style: Regular, limits: limits}
	}
	if op, ok := bigOps[name]; ok {
		return atomNode{text: op.text, class: classOp, style: Regular, big: true, limits: op.limits}
	}
	if em, ok := spaces[name]; ok {
		return spaceNode{em: em}
	}
	if mark, ok := accents[name]; ok {
		return accentNode{body: p.parseArg(), mark: mark}
	}
	if style, ok := textCommands[name]; ok {
		return textNode{text: textArg(p.parseRaw()), style: style}
	}
	if style, ok := fontCommands[name]; ok {
		return fontNode{body: p.parseArg(), style: style}
	}
	switch name {
	case "frac", "dfrac", "tfrac", "cfrac":
		f := fracNode{num: p.parseArg(), den: p.parseArg(), rule: true}
		if name == "dfrac" || name == "cfrac" {
			f.style = 'd'
		} else if name == "tfrac" {
			f.style = 't'
		}
		return f
	case "binom", "dbinom", "tbinom":
		f := fracNode{num: p.parseArg(), den: p.parseArg(), left: "(", right: ")"}
		if name != "binom" {
			f.style = name[0]
		}
		return f
	case "sqrt":
		index := p.parseOptional()
		return sqrtNode{body: p.parseArg(), index: index}
	case "operatorname":
		limits := false
		if t, ok := p.peek(); ok && t.is(tokChar, "*") {
			p.pos++
			limits = true
		}
		return atomNode{text: textArg(p.parseRaw()), class: classOp, style: Regular, limits: limits}
	case "mathbb":
		return textNode{text: blackboard(p.parseRaw()), style: Bold}
	case "overline", "bar":
		return accentNode{body: p.parseArg(), over: true}
	case "underline":
		return accentNode{body: p.parseArg(), under: true}
	case "overset", "stackrel":
		top := p.parseArg()
		return scriptsNode{base: p.parseArg(), sup: top, stack: true}
	case "underset":
		bottom := p.parseArg()
		return scriptsNode{base: p.parseArg(), sub: bottom, stack: true}
	case "phantom":
		return phantomNode{body: p.parseArg()}
	case "hspace", "kern", "mkern", "hskip", "mskip":
		return spaceNode{em: parseLength(p.parseRaw())}
	case "left":
		left := p.parseDelim()
		p.depth++
		body, stop, ok := p.parseList(false)
		p.depth--
		right := ""
		if ok && stop.is(tokCommand, "right") {
			p.pos++
			right = p.parseDelim()
		}
		return leftRightNode{left: left, right: right, body: body}
	case "big", "bigl", "bigr", "bigm":
		return p.bigDelim(name, 1.3)
	case "Big", "Bigl", "Bigr", "Bigm":
		return p.bigDelim(name, 1.9)
	case "bigg", "biggl", "biggr", "biggm":
		return p.bigDelim(name, 2.5)
	case "Bigg", "Biggl", "Biggr", "Biggm":
		return p.bigDelim(name, 3.1)
	case "begin":
		return p.parseEnvironment(p.parseRaw())
	case "not":
		return p.negate()
	case "textcolor", "colorbox":
		p.parseRaw()
		return p.parseArg()
	case "color":
		p.parseRaw()
		return nil
	case "displaystyle", "textstyle", "scriptstyle", "scriptscriptstyle",
		"nonumber", "notag", "label", "tag", "middle", "relax":
		if name == "label" || name == "tag" {
			p.parseRaw()
		}
		return nil
	}
	tracer().Debugf("unknown command \\%s set verbatim", name)
	return atomNode{text: "\\" + name, class: classOrd, style: Regular}
}

func (p *parser) bigDelim(name string, height float64) node {
	class := classOrd
	switch name[len(name)-1] {
	case 'l':
		class = classOpen
	case 'r':
		class = classClose
	case 'm':
		class = classRel
	}
	return delimNode{delim: p.parseDelim(), height: height, class: class}
}

var delimCommands = map[string]string{
	"{": "{", "}": "}", "lbrace": "{", "rbrace": "}", "|": "‖", "Vert": "‖",
	"vert": "|", "langle": "⟨", "rangle": "⟩", "lfloor": "⌊", "rfloor": "⌋",
	"lceil": "⌈", "rceil": "⌉", "backslash": "\\", "uparrow": "↑", "downarrow": "↓",
}

// parseDelim reads the delimiter following \left, \right or \big.
func (p *parser) parseDelim() string {
	p.skipSpace()
	t, ok := p.peek()
	if !ok {
		return ""
	}
	p.pos++
	switch t.kind {
	case tokChar:
		switch t.text {
		case ".":
			return ""
		case "<":
			return "⟨"
		case ">":
			return "⟩"
		}
		return t.text
	case tokCommand:
		return delimCommands[t.text]
	}
	p.pos--
	return ""
}

func (p *parser) negate() node {
	p.skipSpace()
	if t, ok := p.peek(); !ok || (t.kind != tokChar && t.kind != tokCommand) {
		return atomNode{text: "/", class: classOrd}
	}
	n := p.parseAtom()
	a, ok := n.(atomNode)
	if !ok {
		return n
	}
	switch a.text {
	case "=":
		a.text = "≠"
	case "∈":
		a.text = "∉"
	case "≡":
		a.text = "≢"
	default:
		a.text += "̸"
	}
	a.class = classRel
	return a
}

func (p *parser) parseEnvironment(name string) node {
	t := tableNode{align: "c", colGap: 1}
	switch strings.TrimSuffix(name, "*") {
	case "matrix", "smallmatrix":
	case "pmatrix":
		t.left, t.right = "(", ")"
	case "bmatrix":
		t.left, t.right = "[", "]"
	case "Bmatrix":
		t.left, t.right = "{", "}"
	case "vmatrix":
		t.left, t.right = "|", "|"
	case "Vmatrix":
		t.left, t.right = "‖", "‖"
	case "cases":
		t.left, t.align = "{", "l"
	case "aligned", "align", "split", "eqnarray", "alignat", "alignedat", "flalign":
		t.pairs, t.colGap, t.displayCells = true, 2, true
		if strings.HasPrefix(name, "alignat") || strings.HasPrefix(name, "alignedat") {
			p.parseRaw()
		}
	case "array":
		t.align = columnSpec(p.parseRaw())
		t.colGap = 0.8
	default:
		t.displayCells = true
	}
	for {
		row, done := p.parseRow()
		t.rows = append(t.rows, row)
		if done {
			break
		}
	}
	// a trailing \\ leaves an empty last row
	if n := len(t.rows); n > 1 {
		if last := t.rows[n-1]; len(last) == 1 && len(last[0]) == 0 {
			t.rows = t.rows[:n-1]
		}
	}
	return t
}

// parseRow parses cells until the end of a row or the environment.
func (p *parser) parseRow() (row [][]node, done bool) {
	for {
		cell, stop, ok := p.parseList(true)
		row = append(row, cell)
		if !ok {
			return row, true
		}
		p.pos++
		switch {
		case stop.kind == tokAlign:
		case isRowEnd(stop):
			p.parseOptional()
			return row, false
		case stop.is(tokCommand, "end"):
			p.parseRaw()
			return row, true
		case stop.is(tokCommand, "right"):
			p.parseDelim()
		}
	}
}

func columnSpec(spec string) string {
	var b strings.Builder
	for _, c := range spec {
		if c == 'l' || c == 'c' || c == 'r' {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return "c"
	}
	return b.String()
}

// textArg turns the source of a text argument into display text.
func textArg(raw string) string {
	r := strings.NewReplacer(`\ `, " ", "~", " ", `\{`, "{", `\}`, "}",
		`\$`, "$", `\%`, "%", `\&`, "&", `\_`, "_", `\#`, "#")
	return r.Replace(raw)
}

func blackboard(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		if s, ok := doubleStruck[c]; ok {
			b.WriteString(s)
		} else if c != ' ' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// parseLength converts a TeX dimension to em.
func parseLength(raw string) float64 {
	raw = strings.TrimSpace(raw)
	units := map[string]float64{"em": 1, "ex": 0.431, "mu": 1.0 / 18, "pt": 0.1, "px": 0.125}
	for unit, scale := range units {
		if num, ok := strings.CutSuffix(raw, unit); ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return 0
			}
			return v * scale
		}
	}
	return 0
}
