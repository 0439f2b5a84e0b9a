//go:build v8

// Package v8engine implements core.JSRuntime on V8 (build tag v8).
package v8engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cryguy/mathrender/internal/core"
	v8 "github.com/tommie/v8go"
)

type v8Runtime struct {
	iso *v8.Isolate
	ctx *v8.Context
}

var _ core.JSRuntime = (*v8Runtime)(nil)
var _ core.Interrupter = (*v8Runtime)(nil)

// New creates an isolate and context, bounding the heap when a memory
// limit is configured.
func New(cfg core.EngineConfig) (core.JSRuntime, error) {
	var iso *v8.Isolate
	if cfg.MemoryLimitMB > 0 {
		heap := uint64(cfg.MemoryLimitMB) << 20
		iso = v8.NewIsolate(v8.WithResourceConstraints(heap/2, heap))
	} else {
		iso = v8.NewIsolate()
	}
	return &v8Runtime{iso: iso, ctx: v8.NewContext(iso)}, nil
}

func (r *v8Runtime) run(js string) (*v8.Value, error) {
	return r.ctx.RunScript(js, "page.js")
}

func (r *v8Runtime) Eval(js string) error {
	_, err := r.run(js)
	return err
}

func (r *v8Runtime) EvalString(js string) (string, error) {
	val, err := r.run(js)
	if err != nil || val == nil {
		return "", err
	}
	return val.String(), nil
}

func (r *v8Runtime) EvalBool(js string) (bool, error) {
	val, err := r.run(js)
	if err != nil || val == nil {
		return false, err
	}
	if !val.IsBoolean() {
		return false, fmt.Errorf("expected bool, got %s", val.String())
	}
	return val.Boolean(), nil
}

// RegisterFunc exposes fn as a global. Page hooks take strings and numbers
// and return at most one value plus an optional error, which is thrown as
// "calling name: msg".
func (r *v8Runtime) RegisterFunc(name string, fn any) error {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return fmt.Errorf("RegisterFunc: expected function, got %T", fn)
	}
	if ft.NumOut() > 2 {
		return fmt.Errorf("RegisterFunc %s: too many results", name)
	}
	tmpl := v8.NewFunctionTemplate(r.iso, func(info *v8.FunctionCallbackInfo) *v8.Value {
		args := info.Args()
		if len(args) < ft.NumIn() {
			return r.throw("%s: want %d arguments, got %d", name, ft.NumIn(), len(args))
		}
		in := make([]reflect.Value, ft.NumIn())
		for i := range in {
			in[i] = fromJS(args[i], ft.In(i))
		}
		out := fv.Call(in)
		if n := len(out); n > 0 && ft.Out(n-1) == errorType {
			if err, _ := out[n-1].Interface().(error); err != nil {
				return r.throw("calling %s: %v", name, err)
			}
			out = out[:n-1]
		}
		if len(out) == 0 {
			return nil
		}
		v, err := r.toJS(out[0].Interface())
		if err != nil {
			return r.throw("calling %s: %v", name, err)
		}
		return v
	})
	return r.ctx.Global().Set(name, tmpl.GetFunction(r.ctx))
}

var errorType = reflect.TypeFor[error]()

func (r *v8Runtime) throw(format string, args ...any) *v8.Value {
	msg, _ := v8.NewValue(r.iso, fmt.Sprintf(format, args...))
	return r.iso.ThrowException(msg)
}

func (r *v8Runtime) SetGlobal(name string, value any) error {
	v, err := r.toJS(value)
	if err != nil {
		return fmt.Errorf("converting %q: %w", name, err)
	}
	return r.ctx.Global().Set(name, v)
}

// RunMicrotasks runs a microtask checkpoint.
func (r *v8Runtime) RunMicrotasks() {
	r.ctx.PerformMicrotaskCheckpoint()
}

// Interrupt terminates the script running in the isolate.
func (r *v8Runtime) Interrupt() {
	r.iso.TerminateExecution()
}

func (r *v8Runtime) Close() error {
	r.ctx.Close()
	r.iso.Dispose()
	return nil
}

func fromJS(val *v8.Value, t reflect.Type) reflect.Value {
	var v any
	switch t.Kind() {
	case reflect.String:
		v = val.String()
	case reflect.Int:
		v = int(val.Integer())
	case reflect.Int64:
		v = val.Integer()
	case reflect.Float64:
		v = val.Number()
	case reflect.Bool:
		v = val.Boolean()
	default:
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v).Convert(t)
}

// toJS converts scalars directly and anything else through JSON.
func (r *v8Runtime) toJS(value any) (*v8.Value, error) {
	switch v := value.(type) {
	case nil:
		return v8.Undefined(r.iso), nil
	case string, bool, float64, int32:
		return v8.NewValue(r.iso, v)
	case int:
		return v8.NewValue(r.iso, float64(v))
	case int64:
		return v8.NewValue(r.iso, float64(v))
	case *v8.Value:
		return v, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return r.run("JSON.parse(" + strconv.Quote(string(data)) + ")")
}
