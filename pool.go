package mathrender

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cryguy/mathrender/internal/pipeline"
	"github.com/cryguy/mathrender/internal/uiloop"
)

// ErrPoolClosed is returned by Pool.Render after Close.
var ErrPoolClosed = errors.New("mathrender: pool is closed")

// poolWorker is a renderer with its own host queue.
type poolWorker struct {
	id      int
	loop    *uiloop.Loop
	r       *pipeline.Renderer
	results chan result
}

type result struct {
	img *RenderedImage
	err error
}

// Pool manages a fixed number of renderers for blocking use from any
// goroutine. Each renderer handles one request at a time.
type Pool struct {
	workers chan *poolWorker
	all     []*poolWorker
	size    int
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPool creates size renderers, each on its own task queue at the given
// density. Requests always run to completion; QueueMode and failure
// callbacks given in opts are overridden.
func NewPool(size int, cfg EngineConfig, density float64, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	p := &Pool{
		workers: make(chan *poolWorker, size),
		size:    size,
		done:    make(chan struct{}),
	}
	factory := NewEngineFactory(cfg)
	for i := range size {
		w := &poolWorker{
			id:      i,
			loop:    uiloop.New(density),
			results: make(chan result, 1),
		}
		wopts := append(append([]Option(nil), opts...),
			pipeline.WithQueueMode(pipeline.Serialize),
			pipeline.WithFailureCallback(pipeline.FailureFunc(func(_ RenderRequest, err error) {
				w.results <- result{err: err}
			})),
		)
		w.r = pipeline.New(w.loop, factory, pipeline.CallbackFunc(func(img *RenderedImage) {
			w.results <- result{img: img}
		}), wopts...)
		p.all = append(p.all, w)
		p.workers <- w
	}
	return p, nil
}

// Size returns the number of renderers.
func (p *Pool) Size() int {
	return p.size
}

// Render renders req on an idle renderer and waits for the image. The
// caller owns the returned image.
func (p *Pool) Render(ctx context.Context, req RenderRequest) (*RenderedImage, error) {
	w, err := p.get(ctx)
	if err != nil {
		return nil, err
	}
	w.r.SubmitRequest(req)
	select {
	case res := <-w.results:
		p.put(w)
		return res.img, res.err
	case <-ctx.Done():
		// The request still ends, with an image or by the renderer timeout.
		// The worker goes back once it has.
		go func() {
			if res := <-w.results; res.img != nil {
				res.img.Release()
			}
			p.put(w)
		}()
		return nil, ctx.Err()
	}
}

// RenderLatex renders latex with style.
func (p *Pool) RenderLatex(ctx context.Context, latex string, style Style) (*RenderedImage, error) {
	return p.Render(ctx, RenderRequest{Latex: latex, Style: style})
}

// get acquires a worker. Blocks until one is available.
func (p *Pool) get(ctx context.Context) (*poolWorker, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case w := <-p.workers:
		return w, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// put returns a worker to the pool, or disposes it once the pool is closed.
func (p *Pool) put(w *poolWorker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		w.dispose()
		return
	}
	p.workers <- w
}

func (w *poolWorker) dispose() {
	if err := w.r.Close(); err != nil {
		tracer().Errorf("closing renderer %d: %v", w.id, err)
	}
	if err := w.loop.Close(); err != nil {
		tracer().Errorf("closing task queue %d: %v", w.id, err)
	}
}

// Close disposes the idle renderers. Renderers busy with a request are
// disposed when the request ends.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	for {
		select {
		case w := <-p.workers:
			w.dispose()
		default:
			return nil
		}
	}
}
