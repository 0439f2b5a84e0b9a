//go:build goja

// Package gojaengine implements core.JSRuntime on the pure Go goja engine
// (build tag goja).
package gojaengine

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/dop251/goja"
)

// errInterrupted is the value handed to goja when a script is aborted.
var errInterrupted = errors.New("script interrupted")

// gojaRuntime implements core.JSRuntime for goja.
type gojaRuntime struct {
	vm *goja.Runtime
}

var _ core.JSRuntime = (*gojaRuntime)(nil)
var _ core.Interrupter = (*gojaRuntime)(nil)

// New creates a goja runtime. goja has no heap limit, so MemoryLimitMB is
// ignored.
func New(_ core.EngineConfig) (core.JSRuntime, error) {
	return &gojaRuntime{vm: goja.New()}, nil
}

func (r *gojaRuntime) run(js string) (goja.Value, error) {
	defer r.vm.ClearInterrupt()
	v, err := r.vm.RunString(js)
	if err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			return nil, errInterrupted
		}
		return nil, err
	}
	return v, nil
}

// Eval evaluates JavaScript and discards the result.
func (r *gojaRuntime) Eval(js string) error {
	_, err := r.run(js)
	return err
}

// EvalString evaluates JavaScript and returns the result as a Go string.
func (r *gojaRuntime) EvalString(js string) (string, error) {
	v, err := r.run(js)
	if err != nil {
		return "", err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	return v.String(), nil
}

// EvalBool evaluates JavaScript and returns the result as a Go bool.
func (r *gojaRuntime) EvalBool(js string) (bool, error) {
	v, err := r.run(js)
	if err != nil {
		return false, err
	}
	b, ok := v.Export().(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v.Export())
	}
	return b, nil
}

// RegisterFunc registers a Go function as a global JavaScript function.
// goja converts arguments and results by reflection and already throws on
// a non-nil trailing error, so the (T, error) convention needs no wrapper.
func (r *gojaRuntime) RegisterFunc(name string, fn any) error {
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("RegisterFunc: expected function, got %T", fn)
	}
	return r.vm.Set(name, fn)
}

// SetGlobal sets a global variable on the runtime.
func (r *gojaRuntime) SetGlobal(name string, value any) error {
	return r.vm.Set(name, value)
}

// RunMicrotasks is a no-op: goja drains its job queue when the outermost
// RunString returns.
func (r *gojaRuntime) RunMicrotasks() {}

// Interrupt aborts the script currently running.
func (r *gojaRuntime) Interrupt() {
	r.vm.Interrupt(errInterrupted)
}

// Close drops the runtime; goja is garbage collected.
func (r *gojaRuntime) Close() error {
	r.vm = nil
	return nil
}
