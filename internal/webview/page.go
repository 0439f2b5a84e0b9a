package webview

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/eventloop"
	"github.com/cryguy/mathrender/internal/markup"
	"github.com/cryguy/mathrender/internal/texlayout"
	"github.com/cryguy/mathrender/internal/webapi"
)

// page is one loaded document with its own script runtime. Pages are owned
// by the view's worker goroutine.
type page struct {
	gen   uint64
	view  *View
	doc   *document
	rt    core.JSRuntime
	loop  *eventloop.EventLoop
	ready string

	typeset bool
	delims  texlayout.Delimiters

	lo      *layouter
	laidOut viewport
	dirty   bool

	interrupted bool // runtime may hold a pending interrupt
}

var _ webapi.Document = (*page)(nil)
var _ webapi.Typesetter = (*page)(nil)

// newPage parses src and prepares a runtime with the page APIs and the
// given bridges installed. Scripts have not run yet.
func (v *View) newPage(gen uint64, src string, bridges []bridge) (*page, error) {
	doc, err := parseDocument(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	doc.cascade()
	rt, err := v.newRuntime(v.cfg)
	if err != nil {
		return nil, fmt.Errorf("creating script runtime: %w", err)
	}
	p := &page{
		gen:    gen,
		view:   v,
		doc:    doc,
		rt:     rt,
		loop:   eventloop.New(),
		ready:  "loading",
		delims: texlayout.DefaultDelimiters(),
		dirty:  true,
	}
	setup := []webapi.SetupFunc{
		webapi.SetupConsole(pageConsole),
		webapi.SetupTimers(p.loop),
		webapi.SetupDOM(p),
	}
	for _, b := range bridges {
		fn := b.fn
		setup = append(setup, webapi.SetupBridge(b.name, func(method string) {
			v.deliver(gen, func() { fn(method) })
		}, b.methods...))
	}
	if err := webapi.Install(rt, setup...); err != nil {
		rt.Close()
		return nil, fmt.Errorf("installing page APIs: %w", err)
	}
	return p, nil
}

func pageConsole(level, message string) {
	switch level {
	case "error", "warn":
		tracer().Errorf("console.%s: %s", level, message)
	case "debug":
		tracer().Debugf("console.%s: %s", level, message)
	default:
		tracer().Infof("console.%s: %s", level, message)
	}
}

// start runs the page's scripts in document order, fires the document
// events and drains the timers due within the script budget.
func (p *page) start() {
	cfg := p.view.cfg
	for _, s := range p.doc.scripts {
		code := s.code
		if s.src != "" {
			if ext, ok := cfg.Scripts[s.src]; ok {
				code = ext
			} else if webapi.IsMathJaxURL(s.src) {
				if err := webapi.SetupMathJax(p)(p.rt); err != nil {
					tracer().Errorf("installing typesetter for %s: %v", s.src, err)
				}
				continue
			} else {
				tracer().Infof("skipping external script %s", s.src)
				continue
			}
		} else if cfg.MinifyScripts {
			code = markup.Minify(code)
		}
		if err := p.rt.Eval(code); err != nil {
			tracer().Errorf("uncaught script error: %v", err)
		}
		p.rt.RunMicrotasks()
	}
	p.ready = "interactive"
	p.dispatch("DOMContentLoaded")
	p.ready = "complete"
	p.dispatch("load")
	p.loop.Drain(p.rt, time.Now().Add(cfg.ScriptTimeout), func(err error) {
		tracer().Errorf("uncaught timer error: %v", err)
	})
}

func (p *page) dispatch(event string) {
	if err := webapi.DispatchEvent(p.rt, event); err != nil {
		tracer().Errorf("dispatching %s: %v", event, err)
	}
	p.rt.RunMicrotasks()
}

func (p *page) close() {
	p.loop.Reset()
	if err := p.rt.Close(); err != nil {
		tracer().Errorf("closing script runtime: %v", err)
	}
}

// ensureLayout lays the document out for the current viewport unless an
// up to date layout exists.
func (p *page) ensureLayout() *layouter {
	vp := p.view.viewport()
	if p.lo != nil && !p.dirty && p.laidOut == vp {
		return p.lo
	}
	p.lo = &layouter{vp: vp, ts: p.view.ts, typeset: p.typeset, delims: p.delims}
	p.lo.run(p.doc)
	p.laidOut = vp
	p.dirty = false
	return p.lo
}

func (p *page) HasElement(id string) bool {
	_, ok := p.doc.byID[id]
	return ok
}

func (p *page) TextContent(id string) string {
	if el, ok := p.doc.byID[id]; ok {
		return textOf(el.node)
	}
	return ""
}

func (p *page) BoundingRect(id string) webapi.Rect {
	el, ok := p.doc.byID[id]
	if !ok {
		return webapi.Rect{}
	}
	p.ensureLayout()
	return webapi.NewRect(el.x, el.y, el.w, el.h)
}

func (p *page) ReadyState() string {
	return p.ready
}

// texConfig is the tex block of the page's MathJax configuration.
type texConfig struct {
	InlineMath          [][]string `json:"inlineMath"`
	DisplayMath         [][]string `json:"displayMath"`
	ProcessEnvironments bool       `json:"processEnvironments"`
}

func (p *page) Configure(config string) error {
	var cfg texConfig
	if err := json.Unmarshal([]byte(config), &cfg); err != nil {
		return fmt.Errorf("typesetter configuration: %w", err)
	}
	d := texlayout.Delimiters{Environments: cfg.ProcessEnvironments, Escapes: true}
	d.Inline = pairs(cfg.InlineMath)
	d.Display = pairs(cfg.DisplayMath)
	p.delims = d
	return nil
}

func pairs(in [][]string) [][2]string {
	var out [][2]string
	for _, p := range in {
		if len(p) == 2 && p[0] != "" && p[1] != "" {
			out = append(out, [2]string{p[0], p[1]})
		}
	}
	return out
}

func (p *page) Typeset() error {
	p.typeset = true
	p.dirty = true
	tracer().Debugf("typeset document %d", p.gen)
	return nil
}
