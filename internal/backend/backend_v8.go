//go:build v8

package backend

import (
	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/v8engine"
)

// Name is the script engine compiled in.
const Name = "v8"

// Factory returns the runtime constructor of the compiled-in engine.
func Factory() core.RuntimeFactory {
	return v8engine.New
}
