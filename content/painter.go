package content

import (
	"image"
	"image/color"

	"github.com/kmmage/kmmage/geom"
)

// ColorFilter modifies the pixels of an image before it is drawn.
type ColorFilter interface {
	Apply(src *image.NRGBA) *image.NRGBA
}

// DrawScope is the drawing surface handed to a Painter. Coordinates are relative
// to the current translation.
type DrawScope interface {
	// Size is the size of the area being drawn.
	Size() geom.Size
	LayoutDirection() geom.LayoutDirection
	// Translate runs fn with the origin moved by (dx, dy) and restores it afterwards.
	Translate(dx, dy float32, fn func(DrawScope))
	// DrawImage draws img scaled to size at the current origin.
	DrawImage(img image.Image, size geom.Size, alpha float32, filter ColorFilter)
	// FillRect fills a size wide rectangle at the current origin.
	FillRect(c color.Color, size geom.Size, alpha float32)
	// DrawContent draws the content the scope decorates, if any.
	DrawContent()
}

// Painter is anything that can draw itself at an arbitrary size.
type Painter interface {
	// IntrinsicSize is the natural size of the painter, or geom.Unspecified.
	IntrinsicSize() geom.Size
	Draw(ds DrawScope, size geom.Size, alpha float32, filter ColorFilter)
}

// ImagePainter paints a decoded image. Its intrinsic size is the image size.
type ImagePainter struct {
	Src image.Image
}

// NewImagePainter returns a painter for img.
func NewImagePainter(img image.Image) *ImagePainter {
	return &ImagePainter{Src: img}
}

func (p *ImagePainter) IntrinsicSize() geom.Size {
	if p.Src == nil {
		return geom.Unspecified
	}
	b := p.Src.Bounds()
	return geom.Sz(float32(b.Dx()), float32(b.Dy()))
}

func (p *ImagePainter) Draw(ds DrawScope, size geom.Size, alpha float32, filter ColorFilter) {
	if p.Src == nil || size.IsEmpty() {
		return
	}
	ds.DrawImage(p.Src, size, alpha, filter)
}

// ColorPainter fills the whole area with a single color. Color filters are not applied.
type ColorPainter struct {
	Color color.Color
}

func (p ColorPainter) IntrinsicSize() geom.Size { return geom.Unspecified }

func (p ColorPainter) Draw(ds DrawScope, size geom.Size, alpha float32, _ ColorFilter) {
	if size.IsEmpty() {
		return
	}
	ds.FillRect(p.Color, size, alpha)
}

// EmptyPainter draws nothing and has no intrinsic size.
type EmptyPainter struct{}

func (EmptyPainter) IntrinsicSize() geom.Size                       { return geom.Unspecified }
func (EmptyPainter) Draw(DrawScope, geom.Size, float32, ColorFilter) {}
