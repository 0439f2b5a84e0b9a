package core

// Style holds the CSS knobs applied to the generated document. Values are
// CSS strings inserted verbatim into the style block.
type Style struct {
	FontSize        string
	TextColor       string
	BackgroundColor string
	Padding         string // around the math element, inside #wrapper
	FontFamily      string
	CustomMathStyle string // extra declarations appended to #math

	BodyPadding string
	BodyMargin  string
	Justify     string // justify-content of the body flex box
	Align       string // align-items of the body flex box
	HTMLWidth   string
	HTMLHeight  string
}

// DefaultStyle returns the style used when none is configured.
func DefaultStyle() Style {
	return Style{
		FontSize:        "8px",
		TextColor:       "#000000",
		BackgroundColor: "#ffffff",
		Padding:         "2px",
		FontFamily:      "sans-serif",
		BodyPadding:     "0",
		BodyMargin:      "0",
		Justify:         "center",
		Align:           "center",
		HTMLWidth:       "100vw",
		HTMLHeight:      "100vh",
	}
}

// RenderRequest is the immutable input of one pipeline run.
type RenderRequest struct {
	Latex string
	Style Style
}
