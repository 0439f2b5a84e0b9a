// Package backend selects the JavaScript engine behind core.JSRuntime at
// build time. QuickJS is the default; -tags v8 or -tags goja switch to V8
// or goja.
package backend
