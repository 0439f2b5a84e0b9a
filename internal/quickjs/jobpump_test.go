//go:build !v8 && !goja

package quickjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/quickjs"
)

func TestJobPumpCountsJobs(t *testing.T) {
	vm, err := quickjs.NewVM()
	require.NoError(t, err)
	defer vm.Close()
	jobs, err := newJobPump(vm)
	require.NoError(t, err)

	assert.Equal(t, 0, jobs.run())
	_, err = vm.Eval(`Promise.resolve(1).then(function() {}).then(function() {}); undefined`, quickjs.EvalGlobal)
	require.NoError(t, err)
	assert.Equal(t, 2, jobs.run())
	assert.Equal(t, 0, jobs.run())
}
