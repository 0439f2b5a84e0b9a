package pipeline

import (
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/markup"
)

// QueueMode decides what happens to a request submitted while another one
// is in flight.
type QueueMode int

const (
	// Supersede cancels the in-flight request with ErrSuperseded and starts
	// the new one. Only the newest queued request survives.
	Supersede QueueMode = iota
	// Serialize runs requests to completion in submission order.
	Serialize
)

func (m QueueMode) String() string {
	switch m {
	case Supersede:
		return "supersede"
	case Serialize:
		return "serialize"
	}
	return "unknown"
}

const (
	// DefaultSettleDelay is the wait between layout and rasterization.
	DefaultSettleDelay = 100 * time.Millisecond
	// DefaultTimeout bounds a request from load to callback.
	DefaultTimeout = 10 * time.Second
)

// Config holds the renderer settings. Options modify it.
type Config struct {
	Density        float64       // device pixels per CSS pixel, 0 to ask the host
	SettleDelay    time.Duration // wait before rasterizing
	Timeout        time.Duration // per request, 0 disables
	QueueMode      QueueMode
	WaitForTypeset bool // measure only after the typeset signal
	Size           core.Size
	Style          core.Style
	Markup         markup.Builder
	OnFailure      FailureCallback
}

// DefaultConfig returns the settings used when no option is given.
func DefaultConfig() Config {
	return Config{
		SettleDelay:    DefaultSettleDelay,
		Timeout:        DefaultTimeout,
		QueueMode:      Supersede,
		WaitForTypeset: true,
		Size:           core.DefaultSize,
		Style:          core.DefaultStyle(),
	}
}

// Option configures a Renderer.
type Option func(*Config)

// WithDensity overrides the host's display density.
func WithDensity(d float64) Option {
	return func(c *Config) { c.Density = d }
}

// WithSettleDelay sets the wait between layout and rasterization.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) { c.SettleDelay = max(0, d) }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = max(0, d) }
}

// WithQueueMode selects how concurrent submissions are handled.
func WithQueueMode(m QueueMode) Option {
	return func(c *Config) { c.QueueMode = m }
}

// WithWaitForTypeset chooses between measuring on the typeset signal (true)
// and measuring as soon as the page has loaded (false).
func WithWaitForTypeset(wait bool) Option {
	return func(c *Config) { c.WaitForTypeset = wait }
}

// WithFailureCallback receives requests that end without an image.
func WithFailureCallback(cb FailureCallback) Option {
	return func(c *Config) { c.OnFailure = cb }
}

// WithSize sets the initial surface size.
func WithSize(s core.Size) Option {
	return func(c *Config) { c.Size = s.Clamp() }
}

// WithStyle sets the initial style.
func WithStyle(s core.Style) Option {
	return func(c *Config) { c.Style = s }
}

// WithMarkup sets the document builder.
func WithMarkup(b markup.Builder) Option {
	return func(c *Config) { c.Markup = b }
}
