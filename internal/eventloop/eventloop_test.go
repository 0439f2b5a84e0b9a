package eventloop

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRuntime is a core.JSRuntime that records evaluated scripts
// instead of running them.
type recordingRuntime struct {
	mu         sync.Mutex
	scripts    []string
	microtasks int
	failWith   error
}

func (r *recordingRuntime) Eval(js string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, js)
	return r.failWith
}
func (r *recordingRuntime) EvalString(string) (string, error) { return "", nil }
func (r *recordingRuntime) EvalBool(string) (bool, error)     { return false, nil }
func (r *recordingRuntime) RegisterFunc(string, any) error    { return nil }
func (r *recordingRuntime) SetGlobal(string, any) error       { return nil }
func (r *recordingRuntime) RunMicrotasks()                    { r.microtasks++ }
func (r *recordingRuntime) Close() error                      { return nil }

func (r *recordingRuntime) fired(id int) bool {
	needle := fmt.Sprintf("__timerCallbacks[%d]", id)
	for _, s := range r.scripts {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func TestEventLoop_New(t *testing.T) {
	el := New()
	require.NotNil(t, el)
	assert.NotNil(t, el.timers)
	assert.Equal(t, 0, el.nextID)
	assert.False(t, el.HasPending())
}

func TestEventLoop_RegisterTimer(t *testing.T) {
	el := New()
	id1 := el.RegisterTimer(100*time.Millisecond, false)
	id2 := el.RegisterTimer(200*time.Millisecond, false)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
	assert.True(t, el.HasPending())
}

func TestEventLoop_IntervalMinimum(t *testing.T) {
	el := New()
	id := el.RegisterTimer(time.Millisecond, true)
	el.mu.Lock()
	entry := el.timers[id]
	el.mu.Unlock()
	assert.Equal(t, minInterval, entry.interval)
}

func TestEventLoop_ClearTimer(t *testing.T) {
	el := New()
	id := el.RegisterTimer(time.Second, false)
	el.ClearTimer(id)
	assert.False(t, el.HasPending())
	el.ClearTimer(999) // unknown IDs are ignored
}

func TestEventLoop_DrainFiresInOrder(t *testing.T) {
	el := New()
	rt := &recordingRuntime{}
	late := el.RegisterTimer(20*time.Millisecond, false)
	early := el.RegisterTimer(0, false)

	el.Drain(rt, time.Now().Add(time.Second), nil)

	require.Len(t, rt.scripts, 2)
	assert.Contains(t, rt.scripts[0], fmt.Sprintf("__timerCallbacks[%d]", early))
	assert.Contains(t, rt.scripts[1], fmt.Sprintf("__timerCallbacks[%d]", late))
	assert.Equal(t, 2, rt.microtasks)
	assert.False(t, el.HasPending())
}

func TestEventLoop_DrainStopsAtDeadline(t *testing.T) {
	el := New()
	rt := &recordingRuntime{}
	id := el.RegisterTimer(time.Hour, false)

	start := time.Now()
	el.Drain(rt, time.Now().Add(10*time.Millisecond), nil)

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, rt.fired(id))
	assert.True(t, el.HasPending())
}

func TestEventLoop_DrainReportsErrors(t *testing.T) {
	el := New()
	rt := &recordingRuntime{failWith: errors.New("boom")}
	el.RegisterTimer(0, false)
	el.RegisterTimer(0, false)

	var errs []error
	el.Drain(rt, time.Now().Add(time.Second), func(err error) { errs = append(errs, err) })
	assert.Len(t, errs, 2)
}

func TestEventLoop_Reset(t *testing.T) {
	el := New()
	el.RegisterTimer(time.Second, true)
	el.Reset()
	assert.False(t, el.HasPending())
	assert.Equal(t, 1, el.RegisterTimer(0, false))
}
