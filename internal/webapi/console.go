package webapi

import (
	"github.com/cryguy/mathrender/internal/core"
)

// consoleJS builds a console object whose methods forward to __console.
const consoleJS = `
(function() {
	var levels = ['log', 'info', 'warn', 'error', 'debug'];
	var con = {};
	for (var i = 0; i < levels.length; i++) {
		(function(lvl) {
			con[lvl] = function() {
				var parts = [];
				for (var j = 0; j < arguments.length; j++) {
					var arg = arguments[j];
					if (typeof arg === 'object' && arg !== null) {
						try { parts.push(JSON.stringify(arg)); } catch (e) { parts.push('[object Object]'); }
					} else {
						parts.push(String(arg));
					}
				}
				__console(lvl, parts.join(' '));
			};
		})(levels[i]);
	}
	globalThis.console = con;
})();
`

// LogFunc receives console output from page scripts.
type LogFunc func(level, message string)

// SetupConsole replaces globalThis.console with a Go-backed version.
// A nil sink routes output to the package tracer.
func SetupConsole(sink LogFunc) SetupFunc {
	if sink == nil {
		sink = traceConsole
	}
	return func(rt core.JSRuntime) error {
		if err := rt.RegisterFunc("__console", func(level, message string) {
			sink(level, message)
		}); err != nil {
			return err
		}
		return rt.Eval(consoleJS)
	}
}

func traceConsole(level, message string) {
	switch level {
	case "error", "warn":
		tracer().Errorf("console.%s: %s", level, message)
	case "debug":
		tracer().Debugf("console.%s: %s", level, message)
	default:
		tracer().Infof("console.%s: %s", level, message)
	}
}
