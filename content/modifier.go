// Package content scales and positions a Painter inside a layout box.
//
// The Modifier type is toolkit independent: a host toolkit measures its child
// through Modifier.Measure and draws through Modifier.Draw, supplying its own
// Measurable and DrawScope implementations (see the raster, gioimage and
// termview packages).
package content

import (
	"math"

	"github.com/kmmage/kmmage/geom"
	"github.com/kmmage/kmmage/utils"
)

// Measurable is a child element that can be measured under constraints.
type Measurable interface {
	Measure(c geom.Constraints) geom.IntSize
}

// IntrinsicMeasurable answers intrinsic size queries.
type IntrinsicMeasurable interface {
	MinIntrinsicWidth(height int) int
	MaxIntrinsicWidth(height int) int
	MinIntrinsicHeight(width int) int
	MaxIntrinsicHeight(width int) int
}

// MeasureResult is the outcome of Modifier.Measure.
type MeasureResult struct {
	// Size is the size reported for the decorated element.
	Size geom.IntSize
	// Constraints are the constraints the child was measured with.
	Constraints geom.Constraints
	// Position is where the child is placed.
	Position geom.Offset
}

// Modifier lays out and draws a Painter according to an alignment and a content scale.
type Modifier struct {
	Painter      Painter
	Alignment    Alignment
	ContentScale ContentScale
	Alpha        float32
	ColorFilter  ColorFilter
}

// NewModifier returns a Modifier drawing p centered, fitted and fully opaque.
func NewModifier(p Painter) Modifier {
	return Modifier{
		Painter:      p,
		Alignment:    Center,
		ContentScale: Fit,
		Alpha:        1,
	}
}

func (m Modifier) intrinsicSize() geom.Size {
	if m.Painter == nil {
		return geom.Unspecified
	}
	return m.Painter.IntrinsicSize()
}

func (m Modifier) alignment() Alignment {
	if m.Alignment == nil {
		return Center
	}
	return m.Alignment
}

// ScaledSize returns the size the painter is drawn at inside dst.
func (m Modifier) ScaledSize(dst geom.Size) geom.Size {
	if dst.IsEmpty() {
		return geom.Zero
	}
	intrinsic := m.intrinsicSize()
	if intrinsic.IsUnspecified() {
		return dst
	}
	src := geom.Size{
		Width:  geom.TakeOrElse(intrinsic.Width, dst.Width),
		Height: geom.TakeOrElse(intrinsic.Height, dst.Height),
	}
	return src.Times(m.ContentScale.ComputeScaleFactor(src, dst))
}

// AdjustConstraints raises the minimum of c to the scaled painter size, so the
// host measures to a size consistent with the drawn content. Maxima are kept.
func (m Modifier) AdjustConstraints(c geom.Constraints) geom.Constraints {
	fixedWidth, fixedHeight := c.HasFixedWidth(), c.HasFixedHeight()
	if fixedWidth && fixedHeight {
		return c
	}

	bounded := c.HasBoundedWidth() && c.HasBoundedHeight()
	intrinsic := m.intrinsicSize()
	if intrinsic.IsUnspecified() {
		if bounded {
			c.MinWidth, c.MinHeight = c.MaxWidth, c.MaxHeight
		}
		return c
	}

	var dst geom.Size
	if bounded && (fixedWidth || fixedHeight) {
		dst = geom.Sz(float32(c.MaxWidth), float32(c.MaxHeight))
	} else {
		dst.Width = float32(c.MinWidth)
		if geom.IsFinite(intrinsic.Width) {
			dst.Width = c.ConstrainWidthF(intrinsic.Width)
		}
		dst.Height = float32(c.MinHeight)
		if geom.IsFinite(intrinsic.Height) {
			dst.Height = c.ConstrainHeightF(intrinsic.Height)
		}
	}

	scaled := m.ScaledSize(dst)
	c.MinWidth = c.ConstrainWidth(round(scaled.Width))
	c.MinHeight = c.ConstrainHeight(round(scaled.Height))
	return c
}

// Measure measures child under the adjusted constraints and reports its size.
// The child is placed at the origin; alignment only applies when drawing.
func (m Modifier) Measure(child Measurable, c geom.Constraints) MeasureResult {
	adjusted := m.AdjustConstraints(c)
	return MeasureResult{
		Size:        child.Measure(adjusted),
		Constraints: adjusted,
	}
}

func (m Modifier) MinIntrinsicWidth(child IntrinsicMeasurable, height int) int {
	return m.intrinsicWidth(height, child.MinIntrinsicWidth)
}

func (m Modifier) MaxIntrinsicWidth(child IntrinsicMeasurable, height int) int {
	return m.intrinsicWidth(height, child.MaxIntrinsicWidth)
}

func (m Modifier) MinIntrinsicHeight(child IntrinsicMeasurable, width int) int {
	return m.intrinsicHeight(width, child.MinIntrinsicHeight)
}

func (m Modifier) MaxIntrinsicHeight(child IntrinsicMeasurable, width int) int {
	return m.intrinsicHeight(width, child.MaxIntrinsicHeight)
}

// intrinsicWidth never reports less than what the child itself needs.
func (m Modifier) intrinsicWidth(height int, query func(int) int) int {
	if m.intrinsicSize().IsUnspecified() {
		return query(height)
	}
	c := geom.Constraints{MaxWidth: geom.Infinity, MaxHeight: height}
	layoutWidth := query(m.AdjustConstraints(c).MaxHeight)
	scaled := m.ScaledSize(geom.Sz(float32(layoutWidth), float32(height)))
	return utils.Max(round(scaled.Width), layoutWidth)
}

func (m Modifier) intrinsicHeight(width int, query func(int) int) int {
	if m.intrinsicSize().IsUnspecified() {
		return query(width)
	}
	c := geom.Constraints{MaxWidth: width, MaxHeight: geom.Infinity}
	layoutHeight := query(m.AdjustConstraints(c).MaxWidth)
	scaled := m.ScaledSize(geom.Sz(float32(width), float32(layoutHeight)))
	return utils.Max(round(scaled.Height), layoutHeight)
}

// Draw paints the scaled and aligned painter, then the decorated content.
func (m Modifier) Draw(ds DrawScope) {
	size := ds.Size()
	scaled := m.ScaledSize(size)
	off := m.alignment().Align(scaled.Round(), size.Round(), ds.LayoutDirection())

	ds.Translate(float32(off.X), float32(off.Y), func(ds DrawScope) {
		if m.Painter != nil {
			m.Painter.Draw(ds, scaled, m.Alpha, m.ColorFilter)
		}
	})
	ds.DrawContent()
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
