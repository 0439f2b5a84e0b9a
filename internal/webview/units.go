package webview

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// lengthContext carries the reference sizes relative units resolve to.
type lengthContext struct {
	em, rem   float64
	vw, vh    float64 // one percent of the viewport
	percentOf float64 // base of percentages, negative if indefinite
}

// parseLength resolves a CSS length to CSS px. ok is false for auto,
// unknown units and percentages of an indefinite base.
func parseLength(value string, ctx lengthContext) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "auto" || v == "none" || v == "normal" {
		return 0, false
	}
	if v == "0" {
		return 0, true
	}
	units := []struct {
		suffix string
		scale  float64
	}{
		{"rem", ctx.rem}, {"px", 1}, {"em", ctx.em}, {"vw", ctx.vw}, {"vh", ctx.vh},
		{"pt", 4.0 / 3}, {"pc", 16}, {"in", 96}, {"cm", 96 / 2.54}, {"mm", 96 / 25.4},
		{"%", ctx.percentOf / 100},
	}
	for _, u := range units {
		num, found := strings.CutSuffix(v, u.suffix)
		if !found {
			continue
		}
		if u.suffix == "%" && ctx.percentOf < 0 {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, false
		}
		return f * u.scale, true
	}
	return 0, false
}

// parseColor parses hex, rgb()/rgba() and named colours. ok is false for
// transparent and unparsable values.
func parseColor(value string) (color.RGBA, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "transparent" || v == "none" {
		return color.RGBA{}, false
	}
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		return parseHex(hex)
	}
	if args, ok := functionArgs(v, "rgba"); ok {
		return parseRGB(args)
	}
	if args, ok := functionArgs(v, "rgb"); ok {
		return parseRGB(args)
	}
	if c, ok := colornames.Map[v]; ok {
		return c, true
	}
	return color.RGBA{}, false
}

func functionArgs(v, name string) ([]string, bool) {
	rest, ok := strings.CutPrefix(v, name+"(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return nil, false
	}
	rest = strings.TrimSuffix(rest, ")")
	rest = strings.ReplaceAll(rest, "/", " ")
	return strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ' ' }), true
}

func parseHex(hex string) (color.RGBA, bool) {
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, c := range hex {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		hex = b.String()
	case 6, 8:
	default:
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	if len(hex) == 6 {
		return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
	}
	c := color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}
	return premultiply(c), c.A > 0
}

func parseRGB(args []string) (color.RGBA, bool) {
	if len(args) < 3 {
		return color.RGBA{}, false
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i, a := range args[:min(len(args), 4)] {
		var f float64
		var err error
		if p, ok := strings.CutSuffix(a, "%"); ok {
			f, err = strconv.ParseFloat(p, 64)
			f = f / 100 * 255
		} else {
			f, err = strconv.ParseFloat(a, 64)
			if i == 3 {
				f *= 255
			}
		}
		if err != nil {
			return color.RGBA{}, false
		}
		ch[i] = uint8(max(0, min(255, f+0.5)))
	}
	c := color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
	return premultiply(c), c.A > 0
}

func premultiply(c color.NRGBA) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
