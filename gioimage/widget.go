// Package gioimage displays painters in Gio user interfaces.
package gioimage

import (
	"image"

	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// unbounded is the smallest Gio maximum treated as infinite. Gio lists lay
// out their children with maxima of this size.
const unbounded = 1e6

// ToConstraints converts Gio constraints. Maxima of a million pixels or
// more are unbounded.
func ToConstraints(c layout.Constraints) geom.Constraints {
	maxW, maxH := c.Max.X, c.Max.Y
	if maxW >= unbounded {
		maxW = geom.Infinity
	}
	if maxH >= unbounded {
		maxH = geom.Infinity
	}
	return geom.Constraints{MinWidth: c.Min.X, MaxWidth: maxW, MinHeight: c.Min.Y, MaxHeight: maxH}
}

// FromConstraints is the inverse of ToConstraints.
func FromConstraints(c geom.Constraints) layout.Constraints {
	maxW, maxH := c.MaxWidth, c.MaxHeight
	if !c.HasBoundedWidth() {
		maxW = unbounded
	}
	if !c.HasBoundedHeight() {
		maxH = unbounded
	}
	return layout.Constraints{
		Min: image.Pt(c.MinWidth, c.MinHeight),
		Max: image.Pt(maxW, maxH),
	}
}

// Image is a widget that sizes itself and draws a painter following the
// embedded modifier.
type Image struct {
	content.Modifier
	// Clip restricts drawing to the widget bounds. Cropped content is
	// drawn outside of them otherwise.
	Clip bool

	cache opCache
}

// New returns an image widget for p with the default modifier values.
func New(p content.Painter) *Image {
	return &Image{Modifier: content.NewModifier(p)}
}

// Layout lays out child decorated by the image. A nil child is an empty box.
func (im *Image) Layout(gtx C, child layout.Widget) D {
	if child == nil {
		child = func(gtx C) D { return D{Size: gtx.Constraints.Min} }
	}
	ch := &measuredChild{gtx: gtx, widget: child}
	res := im.Modifier.Measure(ch, ToConstraints(gtx.Constraints))
	size := image.Pt(res.Size.Width, res.Size.Height)

	if im.Clip {
		defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	}
	im.Modifier.Draw(&scope{
		ops:     gtx.Ops,
		size:    size,
		dir:     direction(gtx),
		content: ch.call,
		cache:   &im.cache,
	})
	return D{Size: size}
}

func direction(gtx C) geom.LayoutDirection {
	if gtx.Locale.Direction == system.RTL {
		return geom.RTL
	}
	return geom.LTR
}

// measuredChild runs a Gio widget as a content.Measurable and records its
// operations for DrawContent.
type measuredChild struct {
	gtx    C
	widget layout.Widget
	call   op.CallOp
}

func (c *measuredChild) Measure(cs geom.Constraints) geom.IntSize {
	gtx := c.gtx
	gtx.Constraints = FromConstraints(cs)

	macro := op.Record(gtx.Ops)
	dims := c.widget(gtx)
	c.call = macro.Stop()
	return geom.IntSize{Width: dims.Size.X, Height: dims.Size.Y}
}
