/*
Package pipeline turns LaTeX into images with an embedded web engine.

A Renderer owns one engine and drives every request through four phases,
each a task on the host queue:

	load       build the document and hand it to the engine
	measure    ask the page for the size of the math element
	resize     scale the size by the display density and lay out at it
	rasterize  after a settle delay, draw the engine into a new image

A request ends with exactly one call to Callback.OnRendered or, when it
fails, with at most one call to FailureCallback.OnRenderFailed. Every
request carries a generation id; phases belonging to a request that is no
longer current are skipped.
*/
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/markup"
	"github.com/cryguy/mathrender/internal/pixels"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mathrender.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.pipeline")
}

var (
	// ErrSuperseded ends a request replaced by a newer submission.
	ErrSuperseded = errors.New("pipeline: request superseded")
	// ErrTimeout ends a request that did not complete in time.
	ErrTimeout = errors.New("pipeline: request timed out")
	// ErrClosed ends requests pending when the renderer is closed.
	ErrClosed = errors.New("pipeline: renderer closed")
	// ErrStaleLoad is logged when rasterization finds the page not loaded.
	ErrStaleLoad = errors.New("waiting for page to load")
)

// Callback receives finished images. It runs on the host queue.
type Callback interface {
	OnRendered(img *pixels.RenderedImage)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(img *pixels.RenderedImage)

func (f CallbackFunc) OnRendered(img *pixels.RenderedImage) { f(img) }

// FailureCallback receives requests that end without an image. It runs on
// the host queue.
type FailureCallback interface {
	OnRenderFailed(req core.RenderRequest, err error)
}

// FailureFunc adapts a function to FailureCallback.
type FailureFunc func(req core.RenderRequest, err error)

func (f FailureFunc) OnRenderFailed(req core.RenderRequest, err error) { f(req, err) }

type state int

const (
	uninitialized state = iota
	ready
	failed
	closed
)

// request is the context of one pipeline run.
type request struct {
	id       uint64
	req      core.RenderRequest
	size     core.Size
	loaded   bool // the engine finished loading the document
	typeset  bool // the page signalled typesetting completion
	measured bool
	done     bool
}

// Renderer is the render pipeline. Its methods may be called from any
// goroutine; the work happens on the host queue.
type Renderer struct {
	host     core.Host
	engHost  core.Host // host as seen by the engine
	newEng   core.EngineFactory
	callback Callback
	cfg      Config

	// host queue only
	engine  core.WebEngine
	state   state
	initErr error
	gen     uint64
	cur     *request // in flight
	last    *request // most recently started
	pending []*request

	mu         sync.Mutex
	style      core.Style
	size       core.Size
	latex      string
	pageLoaded bool
	closing    bool
}

// New creates a renderer. The engine is created asynchronously on the host
// queue; requests submitted before it exists are queued.
func New(host core.Host, factory core.EngineFactory, cb Callback, opts ...Option) *Renderer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Renderer{
		host:     host,
		engHost:  host,
		newEng:   factory,
		callback: cb,
		cfg:      cfg,
		style:    cfg.Style,
		size:     cfg.Size.Clamp(),
	}
	if cfg.Density > 0 {
		r.engHost = densityHost{Host: host, density: cfg.Density}
	}
	host.Post(r.init)
	return r
}

// densityHost reports a fixed density so the engine lays out and paints at
// the scale the pipeline measures with.
type densityHost struct {
	core.Host
	density float64
}

func (h densityHost) Density() float64 { return h.density }

func (r *Renderer) init() {
	if r.state != uninitialized {
		return
	}
	eng, err := r.newEng(r.engHost)
	if err != nil {
		r.state = failed
		r.initErr = fmt.Errorf("creating web engine: %w", err)
		tracer().Errorf("%v", r.initErr)
		pending := r.pending
		r.pending = nil
		for _, rq := range pending {
			r.end(rq, r.initErr)
		}
		return
	}
	r.engine = eng
	eng.OnLoadFinished(r.onLoadFinished)
	eng.AddBridge(markup.BridgeName, r.onBridge, markup.BridgeRendered)
	eng.Resize(r.Size())
	r.state = ready
	tracer().Debugf("web engine ready")
	r.next()
}

// Submit renders latex with a snapshot of the current style.
func (r *Renderer) Submit(latex string) {
	r.SubmitRequest(core.RenderRequest{Latex: latex, Style: r.Style()})
}

// SubmitRequest renders req. It returns before rendering begins.
func (r *Renderer) SubmitRequest(req core.RenderRequest) {
	r.mu.Lock()
	r.latex = req.Latex
	r.mu.Unlock()
	r.host.Post(func() { r.enqueue(req) })
}

func (r *Renderer) enqueue(req core.RenderRequest) {
	r.gen++
	rq := &request{id: r.gen, req: req, size: r.Size()}
	switch r.state {
	case closed:
		r.end(rq, ErrClosed)
		return
	case failed:
		r.end(rq, r.initErr)
		return
	}
	if r.cfg.QueueMode == Supersede {
		for _, old := range r.pending {
			r.end(old, ErrSuperseded)
		}
		r.pending = r.pending[:0]
		if r.cur != nil {
			tracer().Debugf("request %d supersedes request %d", rq.id, r.cur.id)
			r.end(r.cur, ErrSuperseded)
		}
	}
	r.pending = append(r.pending, rq)
	r.next()
}

// next starts the oldest pending request if the engine is idle.
func (r *Renderer) next() {
	if r.state != ready || r.cur != nil || len(r.pending) == 0 {
		return
	}
	rq := r.pending[0]
	r.pending = r.pending[1:]
	r.start(rq)
}

func (r *Renderer) start(rq *request) {
	r.cur, r.last = rq, rq
	r.setPageLoaded(false)
	tracer().Debugf("request %d: loading %q", rq.id, rq.req.Latex)
	r.engine.LoadHTML(r.cfg.Markup.Build(rq.req))
	if r.cfg.Timeout > 0 {
		r.host.PostDelayed(func() { r.expire(rq) }, r.cfg.Timeout)
	}
}

// end finishes rq, reporting err if it is not nil. The renderer moves on
// to the next pending request.
func (r *Renderer) end(rq *request, err error) {
	if rq.done {
		return
	}
	rq.done = true
	if r.cur == rq {
		r.cur = nil
	}
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			tracer().Debugf("request %d: %v", rq.id, err)
		} else {
			tracer().Errorf("request %d: %v", rq.id, err)
		}
		if r.cfg.OnFailure != nil {
			r.cfg.OnFailure.OnRenderFailed(rq.req, err)
		}
	}
	r.next()
}

func (r *Renderer) expire(rq *request) {
	if rq.done {
		return
	}
	r.end(rq, fmt.Errorf("%w after %s", ErrTimeout, r.cfg.Timeout))
}

func (r *Renderer) onLoadFinished() {
	rq := r.cur
	if rq == nil {
		tracer().Debugf("load finished without a request in flight")
		return
	}
	rq.loaded = true
	r.setPageLoaded(true)
	tracer().Debugf("request %d: page loaded", rq.id)
	if r.cfg.WaitForTypeset && !rq.typeset {
		tracer().Debugf("request %d: waiting for typeset signal", rq.id)
		return
	}
	r.measure(rq, false)
}

func (r *Renderer) onBridge(method string) {
	if method != markup.BridgeRendered {
		return
	}
	rq := r.cur
	if rq == nil {
		return
	}
	rq.typeset = true
	tracer().Debugf("request %d: typeset", rq.id)
	if r.cfg.WaitForTypeset && rq.loaded {
		r.measure(rq, false)
	}
}

// active reports whether a phase of rq may run. Manual phases may also
// target the last finished request while nothing else is in flight.
func (r *Renderer) active(rq *request, manual bool) bool {
	if r.state != ready {
		return false
	}
	if r.cur == rq {
		return true
	}
	return manual && r.cur == nil && r.last == rq
}

func (r *Renderer) measure(rq *request, manual bool) {
	if !manual {
		if rq.measured {
			return
		}
		rq.measured = true
	}
	r.engine.Evaluate(markup.MeasureScript, func(value string, err error) {
		if !r.active(rq, manual) {
			tracer().Debugf("request %d: dropping measurement, %v", rq.id, ErrSuperseded)
			return
		}
		if err != nil {
			r.end(rq, fmt.Errorf("evaluating measurement script: %w", err))
			return
		}
		m, err := core.ParseMeasurement(value)
		if err != nil {
			r.end(rq, err)
			return
		}
		size := m.DeviceSize(r.density())
		tracer().Debugf("request %d: content %dx%d css px, surface %s", rq.id, m.Width, m.Height, size)
		rq.size = size
		r.SetSize(size)
		r.engine.Resize(size)
		r.engine.Layout(size)
		r.rasterize(rq, manual)
	})
}

func (r *Renderer) rasterize(rq *request, manual bool) {
	r.host.PostDelayed(func() {
		if !r.active(rq, manual) {
			tracer().Debugf("request %d: skipping rasterization, %v", rq.id, ErrSuperseded)
			return
		}
		if !r.IsPageLoaded() {
			tracer().Infof("request %d: %v", rq.id, ErrStaleLoad)
			return
		}
		img := pixels.New(rq.size)
		r.engine.Draw(img.RGBA())
		r.engine.Invalidate()
		tracer().Debugf("request %d: rendered %s", rq.id, img.Size())
		r.end(rq, nil)
		if r.callback != nil {
			r.callback.OnRendered(img)
		}
	}, r.cfg.SettleDelay)
}

func (r *Renderer) density() float64 {
	if r.cfg.Density > 0 {
		return r.cfg.Density
	}
	if d := r.host.Density(); d > 0 {
		return d
	}
	return 1
}

// Measure re-runs the measure phase, and everything after it, for the
// current request.
func (r *Renderer) Measure() {
	r.host.Post(func() {
		if rq := r.target(); rq != nil {
			r.measure(rq, true)
		}
	})
}

// RenderNow re-runs the rasterize phase for the current request at the
// current surface size.
func (r *Renderer) RenderNow() {
	r.host.Post(func() {
		if rq := r.target(); rq != nil {
			rq.size = r.Size()
			r.rasterize(rq, true)
		}
	})
}

func (r *Renderer) target() *request {
	if r.state != ready {
		return nil
	}
	if r.cur != nil {
		return r.cur
	}
	return r.last
}

// Close disposes the engine. Requests still pending fail with ErrClosed.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		return nil
	}
	r.closing = true
	r.mu.Unlock()
	r.host.Post(r.dispose)
	return nil
}

func (r *Renderer) dispose() {
	prev := r.state
	r.state = closed
	if r.cur != nil {
		r.end(r.cur, ErrClosed)
	}
	pending := r.pending
	r.pending = nil
	for _, rq := range pending {
		r.end(rq, ErrClosed)
	}
	if prev == ready && r.engine != nil {
		if err := r.engine.Close(); err != nil {
			tracer().Errorf("closing web engine: %v", err)
		}
	}
	r.engine = nil
}
