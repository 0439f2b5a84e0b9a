/*
Package webview is a headless web engine: it loads an HTML document, runs
its scripts on a core.JSRuntime, exposes host bridge objects, lays the
document out and paints it into an image.

The engine covers the page model the renderer generates: block, inline
block and flex boxes with margins, padding, sizes and background colours,
text set in the Go fonts, and a typesetting script that sets the math
regions of element text once the page asks for it. Scripts referencing a
MathJax bundle get that typesetter; other external scripts are taken from
EngineConfig.Scripts or skipped.

Every document gets a fresh runtime. Scripts and layout run on a private
worker goroutine; callbacks are posted to the host queue and dropped when
the document they belong to has been replaced in the meantime.
*/
package webview

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/texlayout"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/draw"
)

// tracer traces with key 'mathrender.webview'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.webview")
}

// ErrNoDocument is passed to Evaluate callbacks when nothing is loaded.
var ErrNoDocument = errors.New("webview: no document loaded")

// ErrInterrupted is passed to Evaluate callbacks once the document's scripts
// have been interrupted for exceeding the script budget. Loading a new
// document clears it.
var ErrInterrupted = errors.New("webview: document scripts were interrupted")

type bridge struct {
	name    string
	fn      func(method string)
	methods []string
}

// View implements core.WebEngine.
type View struct {
	host       core.Host
	cfg        core.EngineConfig
	newRuntime core.RuntimeFactory
	ts         *texlayout.Typesetter

	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	queue   []func()
	gen     uint64
	onLoad  func()
	bridges []bridge
	running core.JSRuntime
	closed  bool

	// owned by the worker goroutine
	page *page
	size core.Size
}

var _ core.WebEngine = (*View)(nil)

// New creates a view posting its callbacks to host.
func New(host core.Host, cfg core.EngineConfig, newRuntime core.RuntimeFactory) (*View, error) {
	ts, err := texlayout.New()
	if err != nil {
		return nil, err
	}
	v := &View{
		host:       host,
		cfg:        cfg,
		newRuntime: newRuntime,
		ts:         ts,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		size:       core.DefaultSize,
	}
	go v.run()
	return v, nil
}

// Factory returns an engine factory creating views with cfg.
func Factory(cfg core.EngineConfig, newRuntime core.RuntimeFactory) core.EngineFactory {
	return func(host core.Host) (core.WebEngine, error) {
		return New(host, cfg, newRuntime)
	}
}

func (v *View) run() {
	defer close(v.done)
	for {
		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			break
		}
		if len(v.queue) == 0 {
			v.mu.Unlock()
			<-v.wake
			continue
		}
		task := v.queue[0]
		v.queue[0] = nil
		v.queue = v.queue[1:]
		v.mu.Unlock()
		task()
	}
	v.unload()
	v.ts.Close()
}

// do queues task on the worker. It reports false once the view is closed.
func (v *View) do(task func()) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	v.queue = append(v.queue, task)
	v.mu.Unlock()
	select {
	case v.wake <- struct{}{}:
	default:
	}
	return true
}

// sync runs task on the worker and waits for it.
func (v *View) sync(task func()) {
	finished := make(chan struct{})
	if !v.do(func() {
		defer close(finished)
		task()
	}) {
		return
	}
	select {
	case <-finished:
	case <-v.done:
	}
}

func (v *View) current(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed && gen == v.gen
}

// deliver posts fn to the host queue unless document gen is stale by then.
func (v *View) deliver(gen uint64, fn func()) {
	v.host.Post(func() {
		if !v.current(gen) {
			tracer().Debugf("dropping callback of replaced document %d", gen)
			return
		}
		fn()
	})
}

// guard runs fn with a watchdog interrupting rt after the script budget and
// reports whether the watchdog fired. An interrupt that lands after fn has
// returned stays pending in rt, so callers must not run rt again.
func (v *View) guard(rt core.JSRuntime, fn func()) (interrupted bool) {
	v.mu.Lock()
	v.running = rt
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.running = nil
		v.mu.Unlock()
	}()
	in, ok := rt.(core.Interrupter)
	if !ok || v.cfg.ScriptTimeout <= 0 {
		fn()
		return false
	}
	var mu sync.Mutex
	finished, fired := false, false
	t := time.AfterFunc(v.cfg.ScriptTimeout, func() {
		mu.Lock()
		defer mu.Unlock()
		if finished {
			return
		}
		fired = true
		tracer().Errorf("scripts exceeded %s, interrupting", v.cfg.ScriptTimeout)
		in.Interrupt()
	})
	fn()
	t.Stop()
	mu.Lock()
	defer mu.Unlock()
	finished = true
	return fired
}

// viewport converts the container size to CSS px.
func (v *View) viewport() viewport {
	d := v.host.Density()
	if d <= 0 {
		d = 1
	}
	return viewport{w: float64(v.size.Width) / d, h: float64(v.size.Height) / d}
}

func (v *View) unload() {
	if v.page != nil {
		v.page.close()
		v.page = nil
	}
}

func (v *View) OnLoadFinished(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onLoad = fn
}

// AddBridge takes effect with the next LoadHTML.
func (v *View) AddBridge(name string, fn func(method string), methods ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bridges = append(v.bridges, bridge{name: name, fn: fn, methods: methods})
}

func (v *View) LoadHTML(doc string) {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	bridges := append([]bridge(nil), v.bridges...)
	v.mu.Unlock()
	v.do(func() {
		v.unload()
		if !v.current(gen) {
			return
		}
		p, err := v.newPage(gen, doc, bridges)
		if err != nil {
			tracer().Errorf("loading document %d: %v", gen, err)
			return
		}
		v.page = p
		p.interrupted = v.guard(p.rt, p.start)
		tracer().Debugf("document %d loaded", gen)
		v.deliver(gen, func() {
			v.mu.Lock()
			fn := v.onLoad
			v.mu.Unlock()
			if fn != nil {
				fn()
			}
		})
	})
}

// Evaluate hands fn the JSON encoding of the script's string value, like a
// platform web view does.
func (v *View) Evaluate(script string, fn func(value string, err error)) {
	v.mu.Lock()
	gen := v.gen
	v.mu.Unlock()
	v.do(func() {
		p := v.page
		if p == nil || p.gen != gen {
			v.deliver(gen, func() { fn("", ErrNoDocument) })
			return
		}
		if p.interrupted {
			v.deliver(gen, func() { fn("", ErrInterrupted) })
			return
		}
		var value string
		var err error
		p.interrupted = v.guard(p.rt, func() {
			value, err = p.rt.EvalString(script)
			p.rt.RunMicrotasks()
			p.loop.Drain(p.rt, time.Now(), nil)
		})
		if err == nil {
			b, _ := json.Marshal(value)
			value = string(b)
		}
		v.deliver(gen, func() { fn(value, err) })
	})
}

func (v *View) Resize(size core.Size) {
	v.do(func() {
		v.size = size.Clamp()
		if v.page != nil {
			v.page.dirty = true
		}
	})
}

func (v *View) Layout(size core.Size) {
	v.sync(func() {
		v.size = size.Clamp()
		if v.page != nil {
			v.page.dirty = true
			v.page.ensureLayout()
		}
	})
}

func (v *View) Draw(dst draw.Image) {
	v.sync(func() {
		if v.page == nil {
			draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
			return
		}
		lo := v.page.ensureLayout()
		lo.paint(dst, v.page.doc, v.host.Density())
	})
}

func (v *View) Invalidate() {
	v.do(func() {
		if v.page != nil {
			v.page.dirty = true
		}
	})
}

// Close interrupts running scripts, drops queued work and waits for the
// worker to release the runtime.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.gen++
	if in, ok := v.running.(core.Interrupter); ok {
		in.Interrupt()
	}
	v.queue = nil
	v.mu.Unlock()
	select {
	case v.wake <- struct{}{}:
	default:
	}
	<-v.done
	return nil
}
