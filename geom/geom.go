// Package geom holds the value types shared by the layout and drawing code:
// float sizes with an unspecified sentinel, integer sizes and offsets,
// box constraints and scale factors.
package geom

import (
	"fmt"
	"math"

	"github.com/kmmage/kmmage/utils"
)

// Size is a two dimensional size expressed in fractional pixels.
// A Size whose components are NaN is unspecified.
type Size struct {
	Width, Height float32
}

var (
	// Zero is the empty size.
	Zero = Size{}
	// Unspecified marks an absent size, e.g. the intrinsic size of a painter
	// that can fill any area.
	Unspecified = Size{Width: float32(math.NaN()), Height: float32(math.NaN())}
)

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float32) Size {
	return Size{Width: w, Height: h}
}

// IsSpecified reports whether s is not the Unspecified sentinel.
func (s Size) IsSpecified() bool {
	return !s.IsUnspecified()
}

// IsUnspecified reports whether s is the Unspecified sentinel.
func (s Size) IsUnspecified() bool {
	return isNaN(s.Width) && isNaN(s.Height)
}

// IsEmpty reports whether s has no area.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Times scales s component-wise.
func (s Size) Times(f ScaleFactor) Size {
	return Size{Width: s.Width * f.X, Height: s.Height * f.Y}
}

// Round converts s to an IntSize, rounding half away from zero.
func (s Size) Round() IntSize {
	return IntSize{Width: roundToInt(s.Width), Height: roundToInt(s.Height)}
}

func (s Size) String() string {
	if s.IsUnspecified() {
		return "Size.Unspecified"
	}
	return fmt.Sprintf("Size(%.1f, %.1f)", s.Width, s.Height)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// TakeOrElse returns v when it is finite, otherwise fallback.
func TakeOrElse(v, fallback float32) float32 {
	if IsFinite(v) {
		return v
	}
	return fallback
}

func isNaN(v float32) bool {
	return v != v
}

func roundToInt(v float32) int {
	return int(math.Round(float64(v)))
}

// IntSize is a size in whole pixels.
type IntSize struct {
	Width, Height int
}

// Size converts s to a fractional Size.
func (s IntSize) Size() Size {
	return Size{Width: float32(s.Width), Height: float32(s.Height)}
}

// Offset is a position in whole pixels.
type Offset struct {
	X, Y int
}

// ScaleFactor is a non-uniform scale multiplier.
type ScaleFactor struct {
	X, Y float32
}

// Identity leaves sizes unchanged.
var Identity = ScaleFactor{X: 1, Y: 1}

// Uniform returns a ScaleFactor with the same multiplier on both axes.
func Uniform(v float32) ScaleFactor {
	return ScaleFactor{X: v, Y: v}
}

// LayoutDirection is the reading direction used to resolve start/end alignment.
type LayoutDirection uint8

const (
	LTR LayoutDirection = iota
	RTL
)

func (d LayoutDirection) String() string {
	if d == RTL {
		return "Rtl"
	}
	return "Ltr"
}

// Infinity is the maximum of an unbounded constraint.
const Infinity = math.MaxInt32

// Constraints bounds the size a measured element may take.
type Constraints struct {
	MinWidth, MaxWidth   int
	MinHeight, MaxHeight int
}

// Fixed returns constraints admitting exactly one size.
func Fixed(width, height int) Constraints {
	return Constraints{MinWidth: width, MaxWidth: width, MinHeight: height, MaxHeight: height}
}

// Loose returns constraints with a zero minimum and the given maximum.
func Loose(maxWidth, maxHeight int) Constraints {
	return Constraints{MaxWidth: maxWidth, MaxHeight: maxHeight}
}

// Unbounded returns constraints without any upper bound.
func Unbounded() Constraints {
	return Constraints{MaxWidth: Infinity, MaxHeight: Infinity}
}

func (c Constraints) HasFixedWidth() bool    { return c.MinWidth == c.MaxWidth }
func (c Constraints) HasFixedHeight() bool   { return c.MinHeight == c.MaxHeight }
func (c Constraints) HasBoundedWidth() bool  { return c.MaxWidth != Infinity }
func (c Constraints) HasBoundedHeight() bool { return c.MaxHeight != Infinity }

// ConstrainWidth clamps width into [MinWidth, MaxWidth].
func (c Constraints) ConstrainWidth(width int) int {
	return utils.Clamp(width, c.MinWidth, c.MaxWidth)
}

// ConstrainHeight clamps height into [MinHeight, MaxHeight].
func (c Constraints) ConstrainHeight(height int) int {
	return utils.Clamp(height, c.MinHeight, c.MaxHeight)
}

// ConstrainWidthF clamps a fractional width into [MinWidth, MaxWidth].
func (c Constraints) ConstrainWidthF(width float32) float32 {
	return utils.Clamp(width, float32(c.MinWidth), maxF(c.MaxWidth))
}

// ConstrainHeightF clamps a fractional height into [MinHeight, MaxHeight].
func (c Constraints) ConstrainHeightF(height float32) float32 {
	return utils.Clamp(height, float32(c.MinHeight), maxF(c.MaxHeight))
}

// Constrain clamps both dimensions of s.
func (c Constraints) Constrain(s IntSize) IntSize {
	return IntSize{Width: c.ConstrainWidth(s.Width), Height: c.ConstrainHeight(s.Height)}
}

// Min returns the smallest size admitted by c.
func (c Constraints) Min() IntSize {
	return IntSize{Width: c.MinWidth, Height: c.MinHeight}
}

func (c Constraints) String() string {
	return fmt.Sprintf("Constraints(w=%s, h=%s)", span(c.MinWidth, c.MaxWidth), span(c.MinHeight, c.MaxHeight))
}

func span(lo, hi int) string {
	if hi == Infinity {
		return fmt.Sprintf("%d..Inf", lo)
	}
	return fmt.Sprintf("%d..%d", lo, hi)
}

func maxF(v int) float32 {
	if v == Infinity {
		return float32(math.Inf(1))
	}
	return float32(v)
}
