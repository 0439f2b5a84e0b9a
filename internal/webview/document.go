package webview

import (
	"fmt"
	"io"
	"strings"

	"github.com/cryguy/mathrender/internal/texlayout"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// script is a script element in document order.
type script struct {
	src  string // external URL, empty for inline scripts
	code string
}

// element is a laid out element of the page.
type element struct {
	node     *html.Node
	tag      string
	id       string
	parent   *element
	children []*element

	style    map[string]string // cascaded declarations
	fontSize float64           // computed, CSS px

	// layout results in CSS px; x and y are the absolute border box origin
	x, y, w, h       float64
	relX, relY       float64
	padLeft, padTop  float64
	marginL, marginT float64
	marginR, marginB float64
	text             *texlayout.Block
}

// document is a parsed page: its element tree, scripts and style sheets.
type document struct {
	root    *html.Node
	html    *element
	body    *element
	byID    map[string]*element
	scripts []script
	sheets  []string
}

// nonRendered elements never produce boxes.
var nonRendered = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Meta: true,
	atom.Title: true, atom.Link: true, atom.Template: true, atom.Noscript: true,
}

func parseDocument(r io.Reader) (*document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	d := &document{root: root, byID: make(map[string]*element)}
	d.collect(root)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			d.html = d.build(c, nil)
		}
	}
	if d.html == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	for _, c := range d.html.children {
		if c.tag == "body" {
			d.body = c
		}
	}
	return d, nil
}

// collect gathers scripts and style sheets in document order.
func (d *document) collect(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script:
			typ := strings.ToLower(attr(n, "type"))
			if typ == "" || strings.Contains(typ, "javascript") {
				d.scripts = append(d.scripts, script{src: attr(n, "src"), code: textOf(n)})
			}
			return
		case atom.Style:
			d.sheets = append(d.sheets, textOf(n))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collect(c)
	}
}

func (d *document) build(n *html.Node, parent *element) *element {
	el := &element{node: n, tag: n.Data, id: attr(n, "id"), parent: parent}
	if el.id != "" {
		if _, dup := d.byID[el.id]; !dup {
			d.byID[el.id] = el
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !nonRendered[c.DataAtom] {
			el.children = append(el.children, d.build(c, el))
		}
	}
	return el
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf concatenates the text of n's descendants, skipping scripts and
// style sheets below n.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
			return
		case html.ElementNode:
			if c != n && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
				return
			}
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return b.String()
}

// walk visits el and its descendants in tree order.
func (el *element) walk(fn func(*element)) {
	fn(el)
	for _, c := range el.children {
		c.walk(fn)
	}
}
