package webview

import (
	"sort"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// defaultFontSize is the medium font size of the user agent style sheet.
const defaultFontSize = 16.0

// inherited properties take the parent's value when unset.
var inherited = []string{"color", "font-family", "font-size", "font-style", "font-weight", "line-height"}

// userAgent holds the defaults a browser applies before page styles.
var userAgent = map[string]map[string]string{
	"body": {"margin": "8px", "display": "block"},
	"html": {"display": "block", "color": "#000000", "font-family": "sans-serif"},
	"span": {"display": "inline"},
	"p":    {"margin": "1em 0"},
}

type styleRule struct {
	sel         cascadia.Selector
	specificity int
	order       int
	decls       []*css.Declaration
}

// cascade resolves the declarations of every element of d.
func (d *document) cascade() {
	var rules []styleRule
	order := 0
	for _, sheet := range d.sheets {
		ss, err := parser.Parse(sheet)
		if err != nil {
			tracer().Errorf("style sheet: %v", err)
			continue
		}
		for _, r := range ss.Rules {
			if r.Kind != css.QualifiedRule {
				continue
			}
			for _, s := range r.Selectors {
				sel, err := cascadia.Compile(s)
				if err != nil {
					tracer().Debugf("unsupported selector %q: %v", s, err)
					continue
				}
				rules = append(rules, styleRule{sel: sel, specificity: specificity(s), order: order, decls: r.Declarations})
				order++
			}
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].specificity != rules[j].specificity {
			return rules[i].specificity < rules[j].specificity
		}
		return rules[i].order < rules[j].order
	})

	d.html.walk(func(el *element) {
		el.style = make(map[string]string)
		for prop, value := range userAgent[el.tag] {
			for k, v := range expand(prop, value) {
				el.style[k] = v
			}
		}
		important := make(map[string]bool)
		apply := func(decls []*css.Declaration) {
			for _, decl := range decls {
				prop := strings.ToLower(decl.Property)
				if important[prop] && !decl.Important {
					continue
				}
				for k, v := range expand(prop, decl.Value) {
					el.style[k] = v
				}
				if decl.Important {
					important[prop] = true
				}
			}
		}
		for _, r := range rules {
			if r.sel.Match(el.node) {
				apply(r.decls)
			}
		}
		if inline := attr(el.node, "style"); inline != "" {
			decls, err := parser.ParseDeclarations(inline)
			if err != nil {
				tracer().Debugf("inline style of <%s>: %v", el.tag, err)
			} else {
				apply(decls)
			}
		}
		if el.parent != nil {
			for _, p := range inherited {
				if _, ok := el.style[p]; !ok {
					if v, ok := el.parent.style[p]; ok {
						el.style[p] = v
					}
				}
			}
		}
		parentSize := defaultFontSize
		if el.parent != nil {
			parentSize = el.parent.fontSize
		}
		el.fontSize = fontSize(el.style["font-size"], parentSize)
		// font-size is inherited as a computed value
		el.style["font-size"] = strconv.FormatFloat(el.fontSize, 'f', -1, 64) + "px"
	})
}

// expand splits the shorthands the layout understands.
func expand(prop, value string) map[string]string {
	value = strings.TrimSpace(value)
	switch prop {
	case "margin", "padding":
		top, right, bottom, left := edges(value)
		return map[string]string{
			prop + "-top": top, prop + "-right": right, prop + "-bottom": bottom, prop + "-left": left,
		}
	case "background":
		return map[string]string{"background-color": value}
	}
	return map[string]string{prop: value}
}

// edges applies the one to four value rule of box shorthands.
func edges(value string) (top, right, bottom, left string) {
	f := strings.Fields(value)
	switch len(f) {
	case 0:
		return "0", "0", "0", "0"
	case 1:
		return f[0], f[0], f[0], f[0]
	case 2:
		return f[0], f[1], f[0], f[1]
	case 3:
		return f[0], f[1], f[2], f[1]
	}
	return f[0], f[1], f[2], f[3]
}

// specificity approximates selector specificity as ids*10000 +
// (classes, attributes, pseudo-classes)*100 + type selectors.
func specificity(sel string) int {
	ids, classes, types := 0, 0, 0
	inType := false
	for i := 0; i < len(sel); i++ {
		c := sel[i]
		switch {
		case c == '#':
			ids++
			inType = true
		case c == '.' || c == '[' || c == ':':
			if c == ':' && i+1 < len(sel) && sel[i+1] == ':' {
				types++
				i++
			} else {
				classes++
			}
			inType = true
		case c == ' ' || c == '>' || c == '+' || c == '~' || c == ']' || c == ')':
			inType = false
		case c == '*':
			inType = true
		case isNameByte(c):
			if !inType {
				types++
				inType = true
			}
		}
	}
	return ids*10000 + classes*100 + types
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

// fontSize resolves a font-size value against the parent's size.
func fontSize(value string, parent float64) float64 {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return parent
	case "small":
		return 13
	case "medium":
		return defaultFontSize
	case "large":
		return 18
	case "x-large":
		return 24
	case "smaller":
		return parent / 1.2
	case "larger":
		return parent * 1.2
	}
	v, ok := parseLength(value, lengthContext{em: parent, percentOf: parent, rem: defaultFontSize})
	if !ok || v <= 0 {
		return parent
	}
	return v
}
