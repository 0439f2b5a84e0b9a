package webview

import (
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cryguy/mathrender/internal/backend"
	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/markup"
	"github.com/cryguy/mathrender/internal/uiloop"
	"github.com/fortytw2/leaktest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

func newView(t *testing.T, cfg core.EngineConfig) (*View, *uiloop.Loop, func()) {
	t.Helper()
	l := uiloop.New(2)
	v, err := New(l, cfg, backend.Factory())
	require.NoError(t, err)
	return v, l, func() {
		v.Close()
		l.Close()
	}
}

func receive[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case x := <-ch:
		return x
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

type evalResult struct {
	value string
	err   error
}

func evaluate(t *testing.T, v *View, script string) evalResult {
	t.Helper()
	ch := make(chan evalResult, 1)
	v.Evaluate(script, func(value string, err error) { ch <- evalResult{value, err} })
	return receive(t, ch, "evaluation")
}

func TestViewRendersMarkup(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webview")
	defer teardown()
	//
	v, _, closeView := newView(t, core.DefaultEngineConfig())
	defer closeView()
	loaded := make(chan struct{}, 1)
	rendered := make(chan string, 1)
	v.OnLoadFinished(func() { loaded <- struct{}{} })
	v.AddBridge(markup.BridgeName, func(method string) { rendered <- method }, markup.BridgeRendered)

	req := core.RenderRequest{Latex: `\(\sqrt{x^2+1}\)`, Style: core.DefaultStyle()}
	v.LoadHTML(markup.Builder{}.Build(req))
	assert.Equal(t, markup.BridgeRendered, receive(t, rendered, "typeset signal"))
	receive(t, loaded, "load")

	res := evaluate(t, v, markup.MeasureScript)
	require.NoError(t, res.err)
	assert.Equal(t, byte('"'), res.value[0], "values are JSON encoded")
	m, err := core.ParseMeasurement(res.value)
	require.NoError(t, err)
	assert.Greater(t, m.Width, 0)
	assert.Greater(t, m.Height, 0)

	size := m.DeviceSize(2)
	v.Resize(size)
	v.Layout(size)
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	v.Draw(img)
	dark := 0
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			if img.RGBAAt(x, y).R < 0x80 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "formula is painted")
}

func TestViewEvaluateWithoutDocument(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webview")
	defer teardown()
	//
	v, _, closeView := newView(t, core.DefaultEngineConfig())
	defer closeView()
	res := evaluate(t, v, "1")
	assert.ErrorIs(t, res.err, ErrNoDocument)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	v.Draw(img)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(2, 2))
}

func TestViewDropsCallbacksOfReplacedDocument(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webview")
	defer teardown()
	//
	v, l, closeView := newView(t, core.DefaultEngineConfig())
	defer closeView()
	var loads atomic.Int32
	loaded := make(chan struct{}, 2)
	v.OnLoadFinished(func() {
		loads.Add(1)
		loaded <- struct{}{}
	})
	v.LoadHTML(`<html><body><div id="math">first</div></body></html>`)
	v.LoadHTML(`<html><body><div id="math">second</div></body></html>`)
	receive(t, loaded, "load")
	v.Layout(core.DefaultSize)
	require.NoError(t, l.Wait())
	assert.Equal(t, int32(1), loads.Load())

	res := evaluate(t, v, `document.getElementById('math').textContent`)
	require.NoError(t, res.err)
	assert.Equal(t, `"second"`, res.value)
}

func TestViewTimersAndExternalScripts(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webview")
	defer teardown()
	//
	cfg := core.DefaultEngineConfig()
	cfg.Scripts = map[string]string{"lib.js": "globalThis.answer = 42;"}
	cfg.MinifyScripts = true
	v, _, closeView := newView(t, cfg)
	defer closeView()
	signals := make(chan string, 2)
	v.AddBridge("Host", func(method string) { signals <- method }, "ready", "late")
	v.LoadHTML(`<html><head><script src="lib.js"></script><script src="https://example.com/other.js"></script>
		<script>
		document.addEventListener('DOMContentLoaded', function () { Host.ready(); });
		setTimeout(function () { Host.late(); }, 20);
		</script></head><body></body></html>`)
	assert.Equal(t, "ready", receive(t, signals, "DOMContentLoaded"))
	assert.Equal(t, "late", receive(t, signals, "timer"))

	res := evaluate(t, v, `String(globalThis.answer) + ',' + document.readyState`)
	require.NoError(t, res.err)
	assert.Equal(t, `"42,complete"`, res.value)
}

func TestViewInterruptsRunawayScripts(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webview")
	defer teardown()
	//
	cfg := core.DefaultEngineConfig()
	cfg.ScriptTimeout = 100 * time.Millisecond
	v, _, closeView := newView(t, cfg)
	defer closeView()
	loaded := make(chan struct{}, 1)
	v.OnLoadFinished(func() { loaded <- struct{}{} })
	v.LoadHTML(`<html><head><script>for (;;) {}</script></head><body></body></html>`)
	receive(t, loaded, "load after interrupted script")
	assert.ErrorIs(t, evaluate(t, v, "1").err, ErrInterrupted)

	v.LoadHTML(`<html><body><div id="math">x</div></body></html>`)
	receive(t, loaded, "load of the next document")
	res := evaluate(t, v, "1 + 1")
	require.NoError(t, res.err)
	assert.Equal(t, `"2"`, res.value)
}

// stubbornRuntime ignores interrupts while a script containing "stall"
// runs, so the watchdog fires and its interrupt arrives late.
type stubbornRuntime struct {
	core.JSRuntime
	stall      time.Duration
	interrupts atomic.Int32
}

func (r *stubbornRuntime) EvalString(js string) (string, error) {
	if strings.Contains(js, "stall") {
		time.Sleep(r.stall)
		return "stalled", nil
	}
	return r.JSRuntime.EvalString(js)
}

func (r *stubbornRuntime) Interrupt() { r.interrupts.Add(1) }

func TestViewRefusesScriptsAfterLateInterrupt(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender.webview")
	defer teardown()
	//
	cfg := core.DefaultEngineConfig()
	cfg.ScriptTimeout = 200 * time.Millisecond
	var rt *stubbornRuntime
	factory := func(c core.EngineConfig) (core.JSRuntime, error) {
		inner, err := backend.Factory()(c)
		if err != nil {
			return nil, err
		}
		rt = &stubbornRuntime{JSRuntime: inner, stall: 3 * cfg.ScriptTimeout}
		return rt, nil
	}
	l := uiloop.New(1)
	defer l.Close()
	v, err := New(l, cfg, factory)
	require.NoError(t, err)
	defer v.Close()
	loaded := make(chan struct{}, 1)
	v.OnLoadFinished(func() { loaded <- struct{}{} })
	v.LoadHTML(`<html><body><div id="math">x</div></body></html>`)
	receive(t, loaded, "load")

	res := evaluate(t, v, "'stall'")
	require.NoError(t, res.err, "the stalled script itself completed")
	assert.Equal(t, `"stalled"`, res.value)
	assert.Equal(t, int32(1), rt.interrupts.Load())

	res = evaluate(t, v, "1")
	assert.ErrorIs(t, res.err, ErrInterrupted)
	assert.Equal(t, int32(1), rt.interrupts.Load())
}
