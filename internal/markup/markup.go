/*
Package markup builds the HTML document loaded for a render request.

The document configures the typesetting script before loading it, styles a
#wrapper/#math element pair from the request's Style, and finishes with a
script that signals MathBridge.onRendered once typesetting has settled.
*/
package markup

import (
	"fmt"
	"html"
	"strings"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mathrender.markup'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.markup")
}

// MathJaxURL is the typesetting script referenced by generated documents.
const MathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-svg.js"

// BridgeName is the host object page scripts signal completion on.
const BridgeName = "MathBridge"

// BridgeRendered is the bridge method called after typesetting.
const BridgeRendered = "onRendered"

// MathElementID is the id of the element holding the LaTeX source.
const MathElementID = "math"

const configScript = `window.MathJax = {
  tex: {
    inlineMath: [['\\(', '\\)']],
    displayMath: [['\\[', '\\]'], ['$$', '$$']]
  },
  svg: { fontCache: 'global' }
};`

const renderedScript = `MathJax.typesetPromise().then(function() {
  if (window.` + BridgeName + `) window.` + BridgeName + `.` + BridgeRendered + `();
});`

// MeasureScript reports the bounding box of the math element as
// "<ceil width>,<ceil height>" CSS pixels, or "0,0" when it is missing.
const MeasureScript = `(function() {
  var el = document.getElementById('` + MathElementID + `');
  if (!el) return '0,0';
  var rect = el.getBoundingClientRect();
  return Math.ceil(rect.width) + ',' + Math.ceil(rect.height);
})()`

// Builder renders documents. The zero value references MathJaxURL and
// keeps scripts as written.
type Builder struct {
	ScriptURL string // typesetting script, MathJaxURL if empty
	Minify    bool   // minify inline scripts with esbuild
}

// Build returns the complete document for req.
func (b Builder) Build(req core.RenderRequest) string {
	url := b.ScriptURL
	if url == "" {
		url = MathJaxURL
	}
	s := req.Style
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head>")
	sb.WriteString("<meta charset='utf-8'>")
	sb.WriteString("<meta name='viewport' content='width=device-width, initial-scale=1'>")
	fmt.Fprintf(&sb, "<script>%s</script>", b.script(configScript))
	fmt.Fprintf(&sb, "<script src='%s'></script>", html.EscapeString(url))
	sb.WriteString("<style>")
	fmt.Fprintf(&sb, "html, body { margin:%s; padding:%s; background:%s; display:flex; "+
		"justify-content:%s; align-items:%s; height:%s; width:%s; }",
		s.BodyMargin, s.BodyPadding, s.BackgroundColor, s.Justify, s.Align, s.HTMLHeight, s.HTMLWidth)
	fmt.Fprintf(&sb, " #wrapper { padding:%s; display:inline-block; background:%s; }",
		s.Padding, s.BackgroundColor)
	fmt.Fprintf(&sb, " #%s { font-size:%s; color:%s; font-family:%s;%s }",
		MathElementID, s.FontSize, s.TextColor, s.FontFamily, s.CustomMathStyle)
	sb.WriteString("</style>")
	sb.WriteString("</head><body>")
	fmt.Fprintf(&sb, "<div id='wrapper'><div id='%s'>%s</div></div>", MathElementID, html.EscapeString(req.Latex))
	fmt.Fprintf(&sb, "<script>%s</script>", b.script(renderedScript))
	sb.WriteString("</body></html>")
	return sb.String()
}

// script returns js, minified if requested. Scripts esbuild rejects are
// kept as written.
func (b Builder) script(js string) string {
	if !b.Minify {
		return js
	}
	return Minify(js)
}

// Minify minifies a classic script with esbuild.
func Minify(js string) string {
	result := api.Transform(js, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
		Target:            api.ES2015,
	})
	if len(result.Errors) > 0 {
		tracer().Errorf("minify: %s", result.Errors[0].Text)
		return js
	}
	return strings.TrimSpace(string(result.Code))
}
