// Package webapi installs the browser surface that page scripts expect on
// top of a bare core.JSRuntime: timers, console, a read-only DOM, the host
// bridge objects and the MathJax entry points.
//
// Each Setup function registers its Go-backed helpers (prefixed with __)
// and then evaluates a small JS polyfill that wraps them.
package webapi

import (
	"github.com/cryguy/mathrender/internal/core"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("mathrender.webapi")
}

// SetupFunc configures one aspect of a fresh page runtime.
type SetupFunc func(rt core.JSRuntime) error

// Install runs fns in order and stops at the first error.
func Install(rt core.JSRuntime, fns ...SetupFunc) error {
	for _, fn := range fns {
		if err := fn(rt); err != nil {
			return err
		}
	}
	return nil
}
