//go:build !v8 && !goja

// Package quickjs implements core.JSRuntime on modernc.org/quickjs, the
// default script engine of the headless web view.
package quickjs

import (
	"fmt"

	"github.com/cryguy/mathrender/internal/core"
	"modernc.org/quickjs"
)

// qjsRuntime implements core.JSRuntime for the QuickJS engine.
type qjsRuntime struct {
	vm   *quickjs.VM
	jobs jobPump
}

var _ core.JSRuntime = (*qjsRuntime)(nil)
var _ core.Interrupter = (*qjsRuntime)(nil)

// New creates a QuickJS VM honoring the configured memory limit.
func New(cfg core.EngineConfig) (core.JSRuntime, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("creating QuickJS VM: %w", err)
	}
	jobs, err := newJobPump(vm)
	if err != nil {
		vm.Close()
		return nil, err
	}
	if cfg.MemoryLimitMB > 0 {
		vm.SetMemoryLimit(uintptr(cfg.MemoryLimitMB) << 20)
	}
	return &qjsRuntime{vm: vm, jobs: jobs}, nil
}

// Eval evaluates JavaScript and discards the result.
func (r *qjsRuntime) Eval(js string) error {
	v, err := r.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	v.Free()
	return nil
}

// EvalString evaluates JavaScript and returns the result as a Go string.
func (r *qjsRuntime) EvalString(js string) (string, error) {
	result, err := r.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprint(result), nil
}

// EvalBool evaluates JavaScript and returns the result as a Go bool.
func (r *qjsRuntime) EvalBool(js string) (bool, error) {
	result, err := r.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", result)
	}
	return b, nil
}

// RegisterFunc registers fn under a temporary name and installs a JS
// wrapper as name. The wrapper unpacks the [value, error] array QuickJS
// produces for (T, error) results and throws a TypeError on error.
func (r *qjsRuntime) RegisterFunc(name string, fn any) error {
	rawName := "__raw_" + name
	if err := r.vm.RegisterFunc(rawName, fn, false); err != nil {
		return err
	}
	wrapJS := fmt.Sprintf(`(function() {
		var raw = globalThis[%q];
		globalThis[%q] = function() {
			var r = raw.apply(this, arguments);
			if (Array.isArray(r)) {
				if (r[1] !== null && r[1] !== undefined) throw new TypeError("calling %s: " + r[1]);
				return r[0];
			}
			return r;
		};
		delete globalThis[%q];
	})()`, rawName, name, name, rawName)
	return r.Eval(wrapJS)
}

// SetGlobal sets a global property on the VM's global object.
func (r *qjsRuntime) SetGlobal(name string, value any) error {
	atom, err := r.vm.NewAtom(name)
	if err != nil {
		return fmt.Errorf("creating atom %q: %w", name, err)
	}
	glob := r.vm.GlobalObject()
	defer glob.Free()
	return glob.SetProperty(atom, value)
}

// RunMicrotasks runs the queued promise jobs.
func (r *qjsRuntime) RunMicrotasks() {
	r.jobs.run()
}

// Interrupt aborts the script currently running in the VM.
func (r *qjsRuntime) Interrupt() {
	r.vm.Interrupt()
}

// Close frees the VM.
func (r *qjsRuntime) Close() error {
	r.vm.Close()
	return nil
}
