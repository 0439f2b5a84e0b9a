//go:build goja && !v8

package backend

import (
	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/gojaengine"
)

// Name is the script engine compiled in.
const Name = "goja"

// Factory returns the runtime constructor of the compiled-in engine.
func Factory() core.RuntimeFactory {
	return gojaengine.New
}
