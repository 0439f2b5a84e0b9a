package eventloop

import (
	"fmt"
	"sync"
	"time"

	"github.com/cryguy/mathrender/internal/core"
)

// minInterval is the smallest period accepted for setInterval.
const minInterval = 10 * time.Millisecond

// timerEntry represents a pending setTimeout or setInterval callback.
// The actual callback is stored in globalThis.__timerCallbacks[id] on the
// JS side. Go only tracks scheduling metadata.
type timerEntry struct {
	deadline time.Time
	interval time.Duration // 0 for setTimeout, >0 for setInterval
	id       int
	cleared  bool
}

// EventLoop manages Go-backed timers for setTimeout/setInterval used by
// page scripts. Provides real wall-clock delays backed by Go timers.
type EventLoop struct {
	mu     sync.Mutex
	timers map[int]*timerEntry
	nextID int
}

// New creates a new EventLoop.
func New() *EventLoop {
	return &EventLoop{
		timers: make(map[int]*timerEntry),
	}
}

// RegisterTimer creates a timer entry and returns its ID.
// The actual JS callback is stored in globalThis.__timerCallbacks[id].
func (el *EventLoop) RegisterTimer(delay time.Duration, isInterval bool) int {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.nextID++
	id := el.nextID
	if delay < 0 {
		delay = 0
	}
	entry := &timerEntry{
		deadline: time.Now().Add(delay),
		id:       id,
	}
	if isInterval {
		if delay < minInterval {
			delay = minInterval
		}
		entry.interval = delay
	}
	el.timers[id] = entry
	return id
}

// ClearTimer cancels a timer by ID.
func (el *EventLoop) ClearTimer(id int) {
	el.mu.Lock()
	defer el.mu.Unlock()
	if t, ok := el.timers[id]; ok {
		t.cleared = true
		delete(el.timers, id)
	}
}

// fireTimer fires a timer callback by invoking the JS-side callback map.
func (el *EventLoop) fireTimer(rt core.JSRuntime, id int) error {
	js := fmt.Sprintf(`(function() {
		var entry = globalThis.__timerCallbacks[%d];
		if (!entry) return;
		if (!entry.interval) delete globalThis.__timerCallbacks[%d];
		entry.fn.apply(null, entry.args || []);
	})()`, id, id)
	return rt.Eval(js)
}

// next returns the earliest live timer, or nil.
func (el *EventLoop) next() *timerEntry {
	el.mu.Lock()
	defer el.mu.Unlock()
	var next *timerEntry
	for _, t := range el.timers {
		if t.cleared {
			continue
		}
		if next == nil || t.deadline.Before(next.deadline) {
			next = t
		}
	}
	return next
}

// Drain fires pending timers in deadline order until none remain or the
// deadline is reached. Intervals keep the loop alive until the deadline.
// Must be called on the runtime's goroutine (JS engines are single-threaded).
// Script errors thrown by callbacks are handed to onError and do not stop
// the loop.
func (el *EventLoop) Drain(rt core.JSRuntime, deadline time.Time, onError func(error)) {
	for {
		next := el.next()
		if next == nil {
			return
		}

		now := time.Now()
		if next.deadline.After(deadline) {
			return
		}
		if wait := next.deadline.Sub(now); wait > 0 {
			time.Sleep(wait)
		}

		el.mu.Lock()
		if next.cleared {
			el.mu.Unlock()
			continue
		}
		timerID := next.id
		if next.interval > 0 {
			next.deadline = time.Now().Add(next.interval)
		} else {
			delete(el.timers, next.id)
		}
		el.mu.Unlock()

		if err := el.fireTimer(rt, timerID); err != nil && onError != nil {
			onError(err)
		}
		rt.RunMicrotasks()
	}
}

// HasPending returns true if there are any active timers.
func (el *EventLoop) HasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.timers) > 0
}

// Reset clears all timers. Called when a document is unloaded.
func (el *EventLoop) Reset() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.timers = make(map[int]*timerEntry)
	el.nextID = 0
}
