package webapi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cryguy/mathrender/internal/core"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// SetupBridge exposes a host object as globalThis[name]. Each listed method
// forwards its name to fn; arguments are ignored.
func SetupBridge(name string, fn func(method string), methods ...string) SetupFunc {
	return func(rt core.JSRuntime) error {
		if !identRe.MatchString(name) {
			return fmt.Errorf("invalid bridge name %q", name)
		}
		for _, m := range methods {
			if !identRe.MatchString(m) {
				return fmt.Errorf("invalid bridge method %s.%s", name, m)
			}
		}
		goName := "__bridge_" + name
		if err := rt.RegisterFunc(goName, func(method string) {
			fn(method)
		}); err != nil {
			return err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "globalThis[%q] = {", name)
		for i, m := range methods {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "%s: function() { %s(%q); }", m, goName, m)
		}
		b.WriteString("};")
		return rt.Eval(b.String())
	}
}
