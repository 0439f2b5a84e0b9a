package webapi

import (
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/eventloop"
)

// timersJS keeps callbacks in __timerCallbacks, keyed by the event loop's
// timer id. The event loop fires an entry by id.
const timersJS = `
(function() {
	var callbacks = globalThis.__timerCallbacks = {};
	function schedule(fn, delay, extra, repeat) {
		if (typeof fn !== 'function') return 0;
		delay = Math.max(0, Math.floor(Number(delay) || 0));
		var id = __scheduleTimer(delay, repeat);
		callbacks[id] = { fn: fn, args: Array.prototype.slice.call(extra, 2), interval: repeat };
		return id;
	}
	function cancel(id) {
		if (typeof id !== 'number' || !(id in callbacks)) return;
		__cancelTimer(id);
		delete callbacks[id];
	}
	globalThis.setTimeout = function(fn, delay) { return schedule(fn, delay, arguments, false); };
	globalThis.setInterval = function(fn, delay) { return schedule(fn, delay, arguments, true); };
	globalThis.clearTimeout = globalThis.clearInterval = cancel;
})();
`

// SetupTimers installs setTimeout, setInterval and their clear functions,
// scheduled on el. MathJax defers its startup through them.
func SetupTimers(el *eventloop.EventLoop) SetupFunc {
	return func(rt core.JSRuntime) error {
		err := rt.RegisterFunc("__scheduleTimer", func(ms int, repeat bool) int {
			return el.RegisterTimer(time.Duration(ms)*time.Millisecond, repeat)
		})
		if err == nil {
			err = rt.RegisterFunc("__cancelTimer", el.ClearTimer)
		}
		if err != nil {
			return err
		}
		return rt.Eval(timersJS)
	}
}
