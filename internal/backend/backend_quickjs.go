//go:build !v8 && !goja

package backend

import (
	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/quickjs"
)

// Name is the script engine compiled in.
const Name = "quickjs"

// Factory returns the runtime constructor of the compiled-in engine.
func Factory() core.RuntimeFactory {
	return quickjs.New
}
