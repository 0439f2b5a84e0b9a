package core

import "image/draw"

// WebEngine is an embedded web view together with the off-screen container
// hosting it. All methods must be called from the host queue and all
// callbacks are delivered on the host queue. Callbacks belonging to a
// document that has since been replaced by LoadHTML are dropped.
type WebEngine interface {
	// OnLoadFinished installs the observer fired when the initial load and
	// parse of a document is complete. It says nothing about typesetting.
	OnLoadFinished(fn func())

	// AddBridge exposes a host object to page scripts as window[name] with
	// the listed methods. Calling one of them from the page invokes fn with
	// the method name.
	AddBridge(name string, fn func(method string), methods ...string)

	// LoadHTML replaces the current document with doc. Scripts are enabled.
	LoadHTML(doc string)

	// Evaluate runs script against the current document and hands its
	// string result to fn.
	Evaluate(script string, fn func(value string, err error))

	// Resize sets the container size in device pixels.
	Resize(size Size)

	// Layout forces a synchronous layout pass at exactly size.
	Layout(size Size)

	// Draw paints the container's current visual contents onto dst.
	Draw(dst draw.Image)

	// Invalidate marks the container as needing a redraw.
	Invalidate()

	// Close releases the engine.
	Close() error
}

// EngineFactory creates the engine. It is invoked on the host queue.
type EngineFactory func(host Host) (WebEngine, error)
