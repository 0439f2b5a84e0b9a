package pipeline

import "github.com/cryguy/mathrender/internal/core"

// Settings read by the pipeline when a request is submitted. Changing them
// never affects a request already in flight.

// Style returns the style used for the next submission.
func (r *Renderer) Style() core.Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// SetStyle replaces the style used for later submissions.
func (r *Renderer) SetStyle(s core.Style) {
	r.updateStyle(func(st *core.Style) { *st = s })
}

func (r *Renderer) updateStyle(fn func(*core.Style)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.style)
}

// Size returns the surface size in device pixels.
func (r *Renderer) Size() core.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// SetSize sets the surface size, clamped to at least 1x1. Measurement
// overwrites it.
func (r *Renderer) SetSize(s core.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = s.Clamp()
}

func (r *Renderer) Width() int { return r.Size().Width }

func (r *Renderer) SetWidth(w int) {
	s := r.Size()
	s.Width = w
	r.SetSize(s)
}

func (r *Renderer) Height() int { return r.Size().Height }

func (r *Renderer) SetHeight(h int) {
	s := r.Size()
	s.Height = h
	r.SetSize(s)
}

// Latex returns the most recently submitted source.
func (r *Renderer) Latex() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latex
}

// IsPageLoaded reports whether the current document finished loading.
// It says nothing about typesetting.
func (r *Renderer) IsPageLoaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageLoaded
}

func (r *Renderer) setPageLoaded(loaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageLoaded = loaded
}

func (r *Renderer) FontSize() string { return r.Style().FontSize }
func (r *Renderer) TextColor() string { return r.Style().TextColor }
func (r *Renderer) BgColor() string { return r.Style().BackgroundColor }
func (r *Renderer) Padding() string { return r.Style().Padding }
func (r *Renderer) FontFamily() string { return r.Style().FontFamily }
func (r *Renderer) CustomMathStyle() string { return r.Style().CustomMathStyle }
func (r *Renderer) PaddingBody() string { return r.Style().BodyPadding }
func (r *Renderer) MarginBody() string { return r.Style().BodyMargin }
func (r *Renderer) Justify() string { return r.Style().Justify }
func (r *Renderer) Align() string { return r.Style().Align }
func (r *Renderer) HTMLWidth() string { return r.Style().HTMLWidth }
func (r *Renderer) HTMLHeight() string { return r.Style().HTMLHeight }

func (r *Renderer) SetFontSize(v string) { r.updateStyle(func(s *core.Style) { s.FontSize = v }) }
func (r *Renderer) SetTextColor(v string) { r.updateStyle(func(s *core.Style) { s.TextColor = v }) }
func (r *Renderer) SetBgColor(v string) { r.updateStyle(func(s *core.Style) { s.BackgroundColor = v }) }
func (r *Renderer) SetPadding(v string) { r.updateStyle(func(s *core.Style) { s.Padding = v }) }
func (r *Renderer) SetFontFamily(v string) { r.updateStyle(func(s *core.Style) { s.FontFamily = v }) }
func (r *Renderer) SetCustomMathStyle(v string) { r.updateStyle(func(s *core.Style) { s.CustomMathStyle = v }) }
func (r *Renderer) SetPaddingBody(v string) { r.updateStyle(func(s *core.Style) { s.BodyPadding = v }) }
func (r *Renderer) SetMarginBody(v string) { r.updateStyle(func(s *core.Style) { s.BodyMargin = v }) }
func (r *Renderer) SetJustify(v string) { r.updateStyle(func(s *core.Style) { s.Justify = v }) }
func (r *Renderer) SetAlign(v string) { r.updateStyle(func(s *core.Style) { s.Align = v }) }
func (r *Renderer) SetHTMLWidth(v string) { r.updateStyle(func(s *core.Style) { s.HTMLWidth = v }) }
func (r *Renderer) SetHTMLHeight(v string) { r.updateStyle(func(s *core.Style) { s.HTMLHeight = v }) }
