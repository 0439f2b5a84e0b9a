//go:build !v8 && !goja

package quickjs

import (
	"errors"
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// jobPump runs the promise jobs queued on a VM. The modernc wrapper never
// calls JS_ExecutePendingJob itself and keeps the C runtime handle in the
// unexported field VM.runtime{cRuntime, tls}, so the pump digs it out once.
type jobPump struct {
	crt uintptr
	tls *libc.TLS
}

var errNoJobQueue = errors.New("quickjs: cannot reach the VM job queue")

func newJobPump(vm *quickjs.VM) (jobPump, error) {
	field := reflect.ValueOf(vm).Elem().FieldByName("runtime")
	if !field.IsValid() || field.Kind() != reflect.Pointer || field.IsNil() {
		return jobPump{}, errNoJobQueue
	}
	rt := reflect.NewAt(field.Type().Elem(), unsafe.Pointer(field.Pointer())).Elem()
	crt, tls := rt.FieldByName("cRuntime"), rt.FieldByName("tls")
	if !crt.IsValid() || !tls.IsValid() || tls.IsNil() {
		return jobPump{}, errNoJobQueue
	}
	return jobPump{
		crt: uintptr(crt.Uint()),
		tls: (*libc.TLS)(unsafe.Pointer(tls.Pointer())),
	}, nil
}

// run executes jobs until the queue is empty or a job throws, and reports
// how many ran.
func (p jobPump) run() (n int) {
	for lib.XJS_ExecutePendingJob(p.tls, p.crt, 0) > 0 {
		n++
	}
	return n
}
