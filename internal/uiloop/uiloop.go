// Package uiloop provides the single task queue the render pipeline runs on.
//
// A Loop plays the role of a GUI main looper: every task posted to it runs
// on one goroutine, in posting order, and delayed tasks are re-posted to the
// same queue when their timer expires.
package uiloop

import (
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("mathrender.uiloop")
}

// ErrClosed is returned by Wait on a closed loop.
var ErrClosed = errors.New("uiloop: closed")

// Loop is a core.Host backed by a dedicated goroutine.
type Loop struct {
	density float64

	mu      sync.Mutex
	queue   []func()
	timers  map[int]*time.Timer
	timerID int
	closed  bool

	wake chan struct{}
	done chan struct{}
}

var _ core.Host = (*Loop)(nil)

// New starts a loop reporting the given display density. Densities below
// or equal to zero are treated as 1.
func New(density float64) *Loop {
	if density <= 0 {
		density = 1
	}
	l := &Loop{
		density: density,
		timers:  make(map[int]*time.Timer),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// Density implements core.Host.
func (l *Loop) Density() float64 { return l.density }

// Post implements core.Host. Tasks posted after Close are dropped.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		tracer().Debugf("dropping task posted after close")
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// PostDelayed implements core.Host.
func (l *Loop) PostDelayed(task func(), delay time.Duration) {
	if delay <= 0 {
		l.Post(task)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.timerID++
	id := l.timerID
	l.timers[id] = time.AfterFunc(delay, func() {
		l.mu.Lock()
		delete(l.timers, id)
		l.mu.Unlock()
		l.Post(task)
	})
}

// Wait blocks until every task posted before the call has run.
func (l *Loop) Wait() error {
	ch := make(chan struct{})
	l.Post(func() { close(ch) })
	select {
	case <-ch:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Close stops pending timers, runs the tasks already queued and stops the
// loop goroutine. It must not be called from a task.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	for id, t := range l.timers {
		t.Stop()
		delete(l.timers, id)
	}
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
	return nil
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, task := range batch {
			l.runTask(task)
		}
		if closed && len(batch) == 0 {
			return
		}
		if len(batch) == 0 {
			<-l.wake
		}
	}
}

// runTask keeps the loop alive when a task panics.
func (l *Loop) runTask(task func()) {
	defer func() {
		if p := recover(); p != nil {
			tracer().Errorf("task panicked: %v\n%s", p, debug.Stack())
		}
	}()
	task()
}
