/*
Package mathrender renders LaTeX math into images.

A Renderer drives a headless web engine through load, measure, resize and
rasterize, posting every step to a Host task queue, and hands the finished
image to a Callback:

	loop := mathrender.NewLoop(2)
	defer loop.Close()
	r := mathrender.New(loop, mathrender.CallbackFunc(func(img *mathrender.RenderedImage) {
		data, _ := mathrender.Extract(img)
		...
	}))
	defer r.Close()
	r.Submit(`x^2+y^2=z^2`)

The engine runs page scripts on QuickJS by default; build with -tags v8 or
-tags goja to use V8 or goja instead. Pool runs several renderers for
blocking batch work.
*/
package mathrender

import (
	"strings"

	"github.com/cryguy/mathrender/internal/backend"
	"github.com/cryguy/mathrender/internal/debugimage"
	"github.com/cryguy/mathrender/internal/pipeline"
	"github.com/cryguy/mathrender/internal/webview"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mathrender'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender")
}

// DebugDir is the directory SaveDebugImage writes to.
var DebugDir = debugimage.DefaultDir

// Backend names the script engine compiled in: quickjs, v8 or goja.
func Backend() string {
	return backend.Name
}

// NewEngineFactory returns a factory creating headless web engines with
// cfg, running scripts on the compiled-in backend.
func NewEngineFactory(cfg EngineConfig) EngineFactory {
	return webview.Factory(cfg, backend.Factory())
}

// New creates a renderer on host with the default engine configuration.
func New(host Host, cb Callback, opts ...Option) *Renderer {
	return NewWithEngine(host, DefaultEngineConfig(), cb, opts...)
}

// NewWithEngine creates a renderer on host whose engine uses cfg.
func NewWithEngine(host Host, cfg EngineConfig, cb Callback, opts ...Option) *Renderer {
	return pipeline.New(host, NewEngineFactory(cfg), cb, opts...)
}

// SaveDebugImage writes img to <DebugDir>/<filename>.jpg and returns the
// absolute path. The image is not released.
func SaveDebugImage(img *RenderedImage, filename string) (string, error) {
	if img == nil || img.Released() {
		return "", &PersistenceError{Path: filename, Err: ErrImageReleased}
	}
	return debugimage.Save(img.RGBA(), DebugDir, filename)
}

// NormalizeSource prepares LaTeX typed across several lines for
// submission: surrounding space is trimmed and line breaks become spaces.
func NormalizeSource(latex string) string {
	latex = strings.TrimSpace(latex)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(latex)
}
