package mathrender

import (
	"github.com/cryguy/mathrender/internal/core"
	"github.com/cryguy/mathrender/internal/debugimage"
	"github.com/cryguy/mathrender/internal/markup"
	"github.com/cryguy/mathrender/internal/pipeline"
	"github.com/cryguy/mathrender/internal/pixels"
	"github.com/cryguy/mathrender/internal/uiloop"
)

// Type aliases re-exporting internal types so callers can use
// mathrender.Style, mathrender.Renderer, etc. without importing the
// internal packages directly.

type Style = core.Style
type Size = core.Size
type RenderRequest = core.RenderRequest
type Measurement = core.Measurement
type MeasurementParseError = core.MeasurementParseError
type EngineConfig = core.EngineConfig
type Host = core.Host
type WebEngine = core.WebEngine
type EngineFactory = core.EngineFactory
type JSRuntime = core.JSRuntime
type RenderedImage = pixels.RenderedImage
type PersistenceError = debugimage.PersistenceError
type Loop = uiloop.Loop
type MarkupBuilder = markup.Builder

type Renderer = pipeline.Renderer
type Callback = pipeline.Callback
type CallbackFunc = pipeline.CallbackFunc
type FailureCallback = pipeline.FailureCallback
type FailureFunc = pipeline.FailureFunc
type Option = pipeline.Option
type QueueMode = pipeline.QueueMode

// Queue modes re-exported from pipeline.
const (
	Supersede = pipeline.Supersede
	Serialize = pipeline.Serialize
)

// Constants re-exported from the internal packages.
const (
	BytesPerPixel      = pixels.BytesPerPixel
	DefaultSettleDelay = pipeline.DefaultSettleDelay
	DefaultTimeout     = pipeline.DefaultTimeout
)

// Errors re-exported from the internal packages.
var (
	ErrSuperseded    = pipeline.ErrSuperseded
	ErrTimeout       = pipeline.ErrTimeout
	ErrClosed        = pipeline.ErrClosed
	ErrStaleLoad     = pipeline.ErrStaleLoad
	ErrImageReleased = pixels.ErrImageReleased
)

// Functions re-exported from the internal packages.
var (
	DefaultStyle        = core.DefaultStyle
	DefaultEngineConfig = core.DefaultEngineConfig
	ParseMeasurement    = core.ParseMeasurement
	NewLoop             = uiloop.New
	Extract             = pixels.Extract
	ExtractFlipped      = pixels.ExtractFlipped
	CopyPixels          = pixels.Copy
	WrapImage           = pixels.Wrap

	WithDensity         = pipeline.WithDensity
	WithSettleDelay     = pipeline.WithSettleDelay
	WithTimeout         = pipeline.WithTimeout
	WithQueueMode       = pipeline.WithQueueMode
	WithWaitForTypeset  = pipeline.WithWaitForTypeset
	WithFailureCallback = pipeline.WithFailureCallback
	WithSize            = pipeline.WithSize
	WithStyle           = pipeline.WithStyle
	WithMarkup          = pipeline.WithMarkup
)
