package texlayout

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Style selects one of the bundled font faces.
type Style int

const (
	Regular Style = iota
	Italic
	Bold
	Mono
	numStyles
)

func (s Style) String() string {
	switch s {
	case Regular:
		return "regular"
	case Italic:
		return "italic"
	case Bold:
		return "bold"
	case Mono:
		return "mono"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

var (
	parseOnce   sync.Once
	parsedFonts [numStyles]*opentype.Font
	parseErr    error
)

// parseGoFonts parses the Go font family once per process. Parsed fonts are
// safe for concurrent use; faces are not.
func parseGoFonts() ([numStyles]*opentype.Font, error) {
	parseOnce.Do(func() {
		sources := [numStyles][]byte{goregular.TTF, goitalic.TTF, gobold.TTF, gomono.TTF}
		for i, ttf := range sources {
			f, err := opentype.Parse(ttf)
			if err != nil {
				parseErr = fmt.Errorf("parsing %s font: %w", Style(i), err)
				return
			}
			parsedFonts[i] = f
		}
	})
	return parsedFonts, parseErr
}

type faceKey struct {
	style Style
	size  int32 // 26.6 fixed point
}

// Fonts caches unhinted faces per style and size. Unhinted metrics scale
// linearly, so layout done at CSS size can be painted at any density.
// A Fonts value must not be used from more than one goroutine at a time.
type Fonts struct {
	fonts [numStyles]*opentype.Font
	faces map[faceKey]font.Face
	// monoText sets plain text runs in the monospace face.
	monoText bool
}

// NewFonts returns a face cache over the Go font family.
func NewFonts() (*Fonts, error) {
	fonts, err := parseGoFonts()
	if err != nil {
		return nil, err
	}
	return &Fonts{fonts: fonts, faces: make(map[faceKey]font.Face)}, nil
}

// SetFamily maps a CSS font-family list onto the bundled faces.
func (f *Fonts) SetFamily(family string) {
	f.monoText = familyIsMono(family)
}

// Face returns the face for style at size pixels.
func (f *Fonts) Face(style Style, size float64) font.Face {
	if style < 0 || style >= numStyles {
		style = Regular
	}
	key := faceKey{style: style, size: int32(math.Round(size * 64))}
	if face, ok := f.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(f.fonts[style], &opentype.FaceOptions{
		Size:    float64(key.size) / 64,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		tracer().Errorf("creating %s face at %.2fpx: %v", style, size, err)
		if style != Regular {
			return f.Face(Regular, size)
		}
		return nil
	}
	f.faces[key] = face
	return face
}

// Close releases all cached faces.
func (f *Fonts) Close() error {
	for k, face := range f.faces {
		face.Close()
		delete(f.faces, k)
	}
	return nil
}

// metrics is the measurement of a run of text.
type metrics struct {
	advance float64
	// line ascent and descent of the face
	ascent, descent float64
	// ink extent relative to the baseline, y down
	inkTop, inkBottom float64
}

func (f *Fonts) measure(style Style, size float64, text string) metrics {
	face := f.Face(style, size)
	if face == nil || size <= 0 {
		return metrics{}
	}
	bounds, adv := font.BoundString(face, text)
	fm := face.Metrics()
	m := metrics{
		advance: fromFixed(adv),
		ascent:  fromFixed(fm.Ascent),
		descent: fromFixed(fm.Descent),
	}
	if bounds.Max.Y > bounds.Min.Y {
		m.inkTop = fromFixed(bounds.Min.Y)
		m.inkBottom = fromFixed(bounds.Max.Y)
	}
	return m
}

// lineMetrics returns ascent and descent of the regular face at size.
func (f *Fonts) lineMetrics(size float64) (ascent, descent float64) {
	face := f.Face(Regular, size)
	if face == nil {
		return 0.8 * size, 0.2 * size
	}
	fm := face.Metrics()
	return fromFixed(fm.Ascent), fromFixed(fm.Descent)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func familyIsMono(family string) bool {
	for _, name := range splitFamily(family) {
		switch name {
		case "monospace", "courier", "courier new", "go mono", "menlo", "consolas":
			return true
		case "sans-serif", "serif", "arial", "helvetica", "times", "times new roman", "go":
			return false
		}
	}
	return false
}
