package webapi

import (
	"encoding/json"

	"github.com/cryguy/mathrender/internal/core"
)

// Rect is the DOMRect returned by getBoundingClientRect, in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect fills the derived edges of a rect.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h, Top: y, Left: x, Right: x + w, Bottom: y + h}
}

// Document is the page model the DOM shim reads from. Lookups are by
// element id; ids that don't exist report false from HasElement.
type Document interface {
	HasElement(id string) bool
	TextContent(id string) string
	BoundingRect(id string) Rect
	ReadyState() string
}

const domJS = `
(function() {
	function Element(id) { this.id = id; }
	Element.prototype.getBoundingClientRect = function() {
		return JSON.parse(__domRect(this.id));
	};
	Object.defineProperty(Element.prototype, 'textContent', {
		get: function() { return __domText(this.id); }
	});
	Object.defineProperty(Element.prototype, 'innerText', {
		get: function() { return __domText(this.id); }
	});
	var listeners = {};
	function addEventListener(type, fn) {
		if (typeof fn !== 'function') return;
		(listeners[type] = listeners[type] || []).push(fn);
	}
	globalThis.window = globalThis;
	globalThis.self = globalThis;
	globalThis.addEventListener = addEventListener;
	globalThis.document = {
		getElementById: function(id) {
			id = String(id);
			return __domHas(id) ? new Element(id) : null;
		},
		addEventListener: addEventListener
	};
	Object.defineProperty(globalThis.document, 'readyState', {
		get: function() { return __domReadyState(); }
	});
	globalThis.__domDispatch = function(type) {
		var fns = listeners[type] || [];
		listeners[type] = [];
		for (var i = 0; i < fns.length; i++) {
			try { fns[i]({ type: type }); } catch (e) { console.error(String(e)); }
		}
	};
})();
`

// SetupDOM installs window, document.getElementById and element geometry
// backed by doc. Must run after SetupConsole.
func SetupDOM(doc Document) SetupFunc {
	return func(rt core.JSRuntime) error {
		if err := rt.RegisterFunc("__domHas", func(id string) bool {
			return doc.HasElement(id)
		}); err != nil {
			return err
		}
		if err := rt.RegisterFunc("__domText", func(id string) string {
			return doc.TextContent(id)
		}); err != nil {
			return err
		}
		if err := rt.RegisterFunc("__domRect", func(id string) (string, error) {
			b, err := json.Marshal(doc.BoundingRect(id))
			return string(b), err
		}); err != nil {
			return err
		}
		if err := rt.RegisterFunc("__domReadyState", func() string {
			return doc.ReadyState()
		}); err != nil {
			return err
		}
		return rt.Eval(domJS)
	}
}

// DispatchEvent fires a document-level event such as DOMContentLoaded.
func DispatchEvent(rt core.JSRuntime, event string) error {
	b, _ := json.Marshal(event)
	return rt.Eval("globalThis.__domDispatch(" + string(b) + ")")
}
