package webapi

import (
	"strings"

	"github.com/cryguy/mathrender/internal/core"
)

// Typesetter is the Go side of the MathJax entry points.
type Typesetter interface {
	// Configure receives the tex configuration as JSON.
	Configure(config string) error
	// Typeset lays out every math region of the document.
	Typeset() error
}

// IsMathJaxURL reports whether src points at a MathJax 3 component bundle.
func IsMathJaxURL(src string) bool {
	s := strings.ToLower(src)
	return strings.Contains(s, "mathjax") &&
		(strings.Contains(s, "tex-svg") || strings.Contains(s, "tex-chtml") ||
			strings.Contains(s, "tex-mml") || strings.Contains(s, "startup"))
}

// mathjaxJS mirrors the MathJax 3 global: it reads the window.MathJax
// configuration object, replaces it with the API object and typesets on
// DOMContentLoaded unless startup.typeset is false.
const mathjaxJS = `
(function() {
	var cfg = (typeof globalThis.MathJax === 'object' && globalThis.MathJax) || {};
	var tex = cfg.tex || {};
	__mathjaxConfigure(JSON.stringify({
		inlineMath: tex.inlineMath || [['\\(', '\\)']],
		displayMath: tex.displayMath || [['$$', '$$'], ['\\[', '\\]']],
		processEnvironments: tex.processEnvironments !== false
	}));
	function run() {
		var err = __mathjaxTypeset();
		if (err) throw new Error(err);
	}
	var startup = cfg.startup || {};
	startup.promise = Promise.resolve();
	cfg.startup = startup;
	cfg.version = '3.2.2';
	cfg.typeset = function() { run(); };
	cfg.typesetPromise = function() {
		return new Promise(function(resolve) { run(); resolve(); });
	};
	globalThis.MathJax = cfg;
	if (startup.typeset !== false) {
		document.addEventListener('DOMContentLoaded', function() { run(); });
	}
})();
`

// SetupMathJax installs the MathJax global backed by ts. It runs when the
// page loads a MathJax script and requires SetupDOM.
func SetupMathJax(ts Typesetter) SetupFunc {
	return func(rt core.JSRuntime) error {
		if err := rt.RegisterFunc("__mathjaxConfigure", func(config string) (bool, error) {
			return true, ts.Configure(config)
		}); err != nil {
			return err
		}
		if err := rt.RegisterFunc("__mathjaxTypeset", func() string {
			if err := ts.Typeset(); err != nil {
				tracer().Errorf("typeset: %v", err)
				return err.Error()
			}
			return ""
		}); err != nil {
			return err
		}
		return rt.Eval(mathjaxJS)
	}
}
