package webapi

import (
	"errors"
	"testing"
	"time"

	"github.com/cryguy/mathrender/internal/backend"
	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/eventloop"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T, fns ...SetupFunc) core.JSRuntime {
	t.Helper()
	rt, err := backend.Factory()(core.DefaultEngineConfig())
	require.NoError(t, err)
	require.NoError(t, Install(rt, fns...))
	return rt
}

type fakeDoc struct {
	ready   string
	configs []string
	typeset int
	fail    error
}

func (d *fakeDoc) HasElement(id string) bool    { return id == "math" }
func (d *fakeDoc) TextContent(id string) string { return `\(x\)` }
func (d *fakeDoc) BoundingRect(id string) Rect  { return NewRect(0, 2, 39.2, 19.5) }
func (d *fakeDoc) ReadyState() string           { return d.ready }
func (d *fakeDoc) Configure(config string) error {
	d.configs = append(d.configs, config)
	return nil
}
func (d *fakeDoc) Typeset() error {
	d.typeset++
	return d.fail
}

type logLine struct{ level, message string }

func TestConsoleForwardsToSink(t *testing.T) {
	var lines []logLine
	rt := newRuntime(t, SetupConsole(func(level, message string) {
		lines = append(lines, logLine{level, message})
	}))
	defer rt.Close()

	require.NoError(t, rt.Eval(`console.log("a", 1, {b: 2}); console.error("boom")`))
	assert.Equal(t, []logLine{{"log", `a 1 {"b":2}`}, {"error", "boom"}}, lines)
}

func TestBridgeForwardsMethodNames(t *testing.T) {
	var calls []string
	rt := newRuntime(t, SetupBridge("MathBridge", func(m string) { calls = append(calls, m) }, "onRendered", "onFailed"))
	defer rt.Close()

	require.NoError(t, rt.Eval(`MathBridge.onRendered(); MathBridge.onFailed("ignored"); MathBridge.onRendered()`))
	assert.Equal(t, []string{"onRendered", "onFailed", "onRendered"}, calls)

	ok, err := rt.EvalBool(`typeof MathBridge.other === 'undefined'`)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBridgeRejectsBadNames(t *testing.T) {
	rt, err := backend.Factory()(core.DefaultEngineConfig())
	require.NoError(t, err)
	defer rt.Close()
	assert.Error(t, SetupBridge("Math Bridge", func(string) {})(rt))
	assert.Error(t, SetupBridge("MathBridge", func(string) {}, "on-rendered")(rt))
}

func TestDOMGeometryAndEvents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webapi")
	defer teardown()
	//
	doc := &fakeDoc{ready: "loading"}
	rt := newRuntime(t, SetupConsole(nil), SetupDOM(doc))
	defer rt.Close()

	v, err := rt.EvalString(`(function() {
		var r = document.getElementById('math').getBoundingClientRect();
		return Math.ceil(r.width) + ',' + Math.ceil(r.height) + ',' + r.bottom;
	})()`)
	require.NoError(t, err)
	assert.Equal(t, "40,20,21.5", v)

	ok, err := rt.EvalBool(`document.getElementById('nope') === null && window === globalThis`)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err = rt.EvalString(`document.getElementById('math').textContent + document.readyState`)
	require.NoError(t, err)
	assert.Equal(t, `\(x\)loading`, v)

	require.NoError(t, rt.Eval(`
		globalThis.seen = [];
		document.addEventListener('DOMContentLoaded', function(e) { seen.push(e.type); });
		window.addEventListener('load', function(e) { seen.push(e.type); });
		document.addEventListener('load', function() { throw new Error('listener failure'); });
	`))
	require.NoError(t, DispatchEvent(rt, "DOMContentLoaded"))
	require.NoError(t, DispatchEvent(rt, "load"))
	require.NoError(t, DispatchEvent(rt, "load"))
	v, err = rt.EvalString(`seen.join(',')`)
	require.NoError(t, err)
	assert.Equal(t, "DOMContentLoaded,load", v)
}

func TestMathJaxShim(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webapi")
	defer teardown()
	//
	doc := &fakeDoc{ready: "loading"}
	var calls []string
	rt := newRuntime(t, SetupConsole(nil), SetupDOM(doc),
		SetupBridge("MathBridge", func(m string) { calls = append(calls, m) }, "onRendered"))
	defer rt.Close()

	require.NoError(t, rt.Eval(`window.MathJax = { tex: { inlineMath: [['$', '$']] }, startup: { typeset: false } };`))
	require.NoError(t, SetupMathJax(doc)(rt))
	require.Len(t, doc.configs, 1)
	assert.Contains(t, doc.configs[0], `"inlineMath":[["$","$"]]`)
	assert.Contains(t, doc.configs[0], `"displayMath":[["$$","$$"],["\\[","\\]"]]`)

	require.NoError(t, DispatchEvent(rt, "DOMContentLoaded"))
	assert.Equal(t, 0, doc.typeset, "startup typesetting disabled")

	require.NoError(t, rt.Eval(`MathJax.typesetPromise().then(MathBridge.onRendered)`))
	rt.RunMicrotasks()
	assert.Equal(t, 1, doc.typeset)
	assert.Equal(t, []string{"onRendered"}, calls)

	doc.fail = errors.New("bad input")
	err := rt.Eval(`MathJax.typeset()`)
	assert.Error(t, err)
}

func TestIsMathJaxURL(t *testing.T) {
	assert.True(t, IsMathJaxURL("https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-svg.js"))
	assert.True(t, IsMathJaxURL("/static/MathJax/es5/tex-chtml.js"))
	assert.False(t, IsMathJaxURL("https://cdn.jsdelivr.net/npm/katex/dist/katex.js"))
	assert.False(t, IsMathJaxURL("mathjax-config.js"))
}

func TestTimersRunThroughEventLoop(t *testing.T) {
	el := eventloop.New()
	rt := newRuntime(t, SetupTimers(el))
	defer rt.Close()

	require.NoError(t, rt.Eval(`
		globalThis.order = [];
		setTimeout(function(x) { order.push(x); }, 5, 'b');
		setTimeout(function() { order.push('a'); }, 0);
		var dropped = setTimeout(function() { order.push('never'); }, 1);
		clearTimeout(dropped);
	`))
	assert.True(t, el.HasPending())
	el.Drain(rt, time.Now().Add(time.Second), nil)
	v, err := rt.EvalString(`order.join(',')`)
	require.NoError(t, err)
	assert.Equal(t, "a,b", v)
	assert.False(t, el.HasPending())
}

func TestTimersIgnoreNonFunctions(t *testing.T) {
	el := eventloop.New()
	rt := newRuntime(t, SetupTimers(el))
	defer rt.Close()

	ok, err := rt.EvalBool(`setTimeout('order.push(1)', 5) === 0 && setInterval(null) === 0`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, el.HasPending())

	require.NoError(t, rt.Eval(`globalThis.fired = false; setTimeout(function() { fired = true; }, -20); clearTimeout('x');`))
	el.Drain(rt, time.Now().Add(time.Second), nil)
	ok, err = rt.EvalBool(`fired`)
	require.NoError(t, err)
	assert.True(t, ok)
}
