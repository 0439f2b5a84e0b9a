package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) core.JSRuntime {
	t.Helper()
	rt, err := Factory()(core.DefaultEngineConfig())
	require.NoError(t, err)
	return rt
}

func TestNameMatchesBuild(t *testing.T) {
	assert.Contains(t, []string{"quickjs", "v8", "goja"}, Name)
}

func TestEvalResults(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close()

	s, err := rt.EvalString(`Math.ceil(39.2) + ',' + Math.ceil(19.5)`)
	require.NoError(t, err)
	assert.Equal(t, "40,20", s)

	b, err := rt.EvalBool(`1 < 2`)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = rt.EvalBool(`'yes'`)
	assert.Error(t, err)

	assert.Error(t, rt.Eval(`throw new Error('boom')`))
	assert.Error(t, rt.Eval(`this is not javascript`))
}

func TestRegisterFuncThrowsTrailingError(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close()

	require.NoError(t, rt.RegisterFunc("twice", func(s string) (string, error) {
		if s == "" {
			return "", errors.New("empty input")
		}
		return s + s, nil
	}))
	s, err := rt.EvalString(`twice('ab')`)
	require.NoError(t, err)
	assert.Equal(t, "abab", s)

	s, err = rt.EvalString(`(function() {
		try { twice(''); return 'no error'; } catch (e) { return String(e); }
	})()`)
	require.NoError(t, err)
	assert.Contains(t, s, "empty input")

	assert.Error(t, rt.Eval(`twice('')`), "uncaught throw fails the evaluation")

	b, err := rt.EvalBool(`typeof globalThis.__raw_twice === 'undefined'`)
	require.NoError(t, err)
	assert.True(t, b, "no helper globals left behind")
}

func TestRegisterFuncWithoutResult(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close()

	var got []float64
	require.NoError(t, rt.RegisterFunc("note", func(x float64) { got = append(got, x) }))
	b, err := rt.EvalBool(`note(1.5) === undefined`)
	require.NoError(t, err)
	assert.True(t, b)
	assert.Equal(t, []float64{1.5}, got)
}

func TestSetGlobal(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close()

	require.NoError(t, rt.SetGlobal("density", 2.5))
	require.NoError(t, rt.SetGlobal("latex", `x^2`))
	s, err := rt.EvalString(`latex + '@' + density`)
	require.NoError(t, err)
	assert.Equal(t, "x^2@2.5", s)
}

func TestPromiseCallbacksRunAfterScript(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close()

	var order []string
	require.NoError(t, rt.RegisterFunc("record", func(s string) { order = append(order, s) }))
	require.NoError(t, rt.Eval(`
		var typeset = function() { return Promise.resolve('rendered'); };
		typeset().then(record);
		record('sync');
	`))
	rt.RunMicrotasks()
	assert.Equal(t, []string{"sync", "rendered"}, order)

	rt.RunMicrotasks()
	assert.Len(t, order, 2, "callbacks run once")
}

func TestInterruptStopsRunawayScript(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close()
	in, ok := rt.(core.Interrupter)
	require.True(t, ok, "%s runtime must be interruptible", Name)

	timer := time.AfterFunc(50*time.Millisecond, in.Interrupt)
	defer timer.Stop()
	start := time.Now()
	err := rt.Eval(`for (;;) {}`)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
