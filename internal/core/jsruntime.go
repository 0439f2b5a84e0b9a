package core

// JSRuntime abstracts the JavaScript engine (QuickJS, V8 or goja) behind a
// common interface used by the page setup functions in internal/webapi and
// the script event loop in internal/eventloop.
type JSRuntime interface {
	// Eval evaluates JavaScript source and discards the result.
	Eval(js string) error

	// EvalString evaluates JavaScript and returns the result as a Go string.
	EvalString(js string) (string, error)

	// EvalBool evaluates JavaScript and returns the result as a Go bool.
	EvalBool(js string) (bool, error)

	// RegisterFunc registers a Go function as a global JavaScript function.
	// Arguments and the result are converted between Go and JS. A non-nil
	// trailing error is thrown into the script with its message.
	RegisterFunc(name string, fn any) error

	// SetGlobal sets a global variable on the JS context. Basic Go types
	// (string, int, float64, bool) are auto-converted to JS types.
	SetGlobal(name string, value any) error

	// RunMicrotasks pumps the microtask queue (Promise callbacks, etc.).
	// V8: PerformMicrotaskCheckpoint, QuickJS: ExecutePendingJob loop,
	// goja: no-op (jobs run when the outermost call returns).
	RunMicrotasks()

	// Close releases the engine. The runtime is unusable afterwards.
	Close() error
}

// RuntimeFactory creates a fresh runtime for every loaded document.
type RuntimeFactory func(cfg EngineConfig) (JSRuntime, error)

// Interrupter is implemented by runtimes that can abort a running script
// from another goroutine. The interrupted call returns an error.
type Interrupter interface {
	Interrupt()
}
