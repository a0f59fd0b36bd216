package domain

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinOpacity = 0
	MaxOpacity = 100

	MinScale = 0.1
	MaxScale = 10.0
)

// Position is a top-left page coordinate in integer pixels
type Position struct {
	X int
	Y int
}

// Size is a pixel width/height pair. A zero Size means "unknown".
type Size struct {
	Width  int
	Height int
}

// Known reports whether both dimensions have been resolved
func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	if !s.Known() {
		return "?×?"
	}
	return fmt.Sprintf("%d×%d", s.Width, s.Height)
}

// Sign is a flip multiplier, always +1 or -1
type Sign int

const (
	Positive Sign = 1
	Negative Sign = -1
)

// Toggle returns the opposite sign
func (s Sign) Toggle() Sign {
	if s == Negative {
		return Positive
	}
	return Negative
}

// normalizeSign maps negative values to -1 and everything else to +1
func normalizeSign(v float64) Sign {
	if v < 0 {
		return Negative
	}
	return Positive
}

// Axis selects which flip multiplier an intent targets
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis accepts "x", "h", "horizontal" or "y", "v", "vertical"
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "h", "horizontal":
		return AxisX, nil
	case "y", "v", "vertical":
		return AxisY, nil
	}
	return AxisX, fmt.Errorf("unknown flip axis %q (use x or y)", s)
}

// ClampOpacity bounds v to [0,100]
func ClampOpacity(v int) int {
	if v < MinOpacity {
		return MinOpacity
	}
	if v > MaxOpacity {
		return MaxOpacity
	}
	return v
}

// ClampScale bounds v to [0.1,10]
func ClampScale(v float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, v))
}

// NormalizeRotation maps any integer degree value into [0,360)
func NormalizeRotation(deg int) int {
	return ((deg % 360) + 360) % 360
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ScaledSize returns natural*scale rounded, or a zero Size when natural is unknown
func ScaledSize(natural Size, scale float64) Size {
	if !natural.Known() {
		return Size{}
	}
	return Size{
		Width:  int(math.Round(float64(natural.Width) * scale)),
		Height: int(math.Round(float64(natural.Height) * scale)),
	}
}

// FitWithin shrinks size to fit inside bounds while keeping its aspect ratio.
// Sizes that already fit are returned unchanged.
func FitWithin(size, bounds Size) Size {
	if !size.Known() || !bounds.Known() {
		return size
	}

	ratio := float64(size.Width) / float64(size.Height)
	w := float64(size.Width)
	h := float64(size.Height)

	if w > float64(bounds.Width) {
		w = float64(bounds.Width)
		h = w / ratio
	}
	if h > float64(bounds.Height) {
		h = float64(bounds.Height)
		w = h * ratio
	}

	return Size{Width: int(math.Round(w)), Height: int(math.Round(h))}
}
