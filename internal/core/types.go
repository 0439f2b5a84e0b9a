package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultSize is the surface size before the first measurement.
var DefaultSize = Size{Width: 512, Height: 512}

// Size is a surface size in device pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Clamp returns s with both dimensions raised to at least 1.
func (s Size) Clamp() Size {
	return Size{Width: max(1, s.Width), Height: max(1, s.Height)}
}

// Measurement is the content box of the math element in CSS pixels, as
// reported by the page.
type Measurement struct {
	Width  int
	Height int
}

// DeviceSize converts m to device pixels with ceiling rounding and clamps
// the result to at least 1x1.
func (m Measurement) DeviceSize(density float64) Size {
	return Size{
		Width:  int(math.Ceil(float64(m.Width) * density)),
		Height: int(math.Ceil(float64(m.Height) * density)),
	}.Clamp()
}

// MeasurementParseError reports a measurement script result that is not a
// pair of integers.
type MeasurementParseError struct {
	Value string
	Err   error
}

func (e *MeasurementParseError) Error() string {
	return fmt.Sprintf("invalid size %q: %v", e.Value, e.Err)
}

func (e *MeasurementParseError) Unwrap() error { return e.Err }

var errMissingDimension = errors.New("expected \"<int>,<int>\"")

// ParseMeasurement parses the "<width>,<height>" reply of the measurement
// script. Surrounding JSON quotes are tolerated since engines return script
// values JSON-encoded.
func ParseMeasurement(value string) (Measurement, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(value, "\"", ""))
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Measurement{}, &MeasurementParseError{Value: value, Err: errMissingDimension}
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Measurement{}, &MeasurementParseError{Value: value, Err: err}
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Measurement{}, &MeasurementParseError{Value: value, Err: err}
	}
	if w < 0 || h < 0 {
		return Measurement{}, &MeasurementParseError{Value: value, Err: errors.New("negative dimension")}
	}
	return Measurement{Width: w, Height: h}, nil
}
