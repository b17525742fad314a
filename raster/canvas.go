// Package raster draws painters into in-memory images. It is the headless
// counterpart of the gioimage widget and backs the command line renderer.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
)

var _ content.DrawScope = (*Canvas)(nil)

// Canvas is a content.DrawScope backed by an *image.NRGBA.
type Canvas struct {
	// Filter is the resampling filter used when an image is drawn at a different size.
	Filter imaging.ResampleFilter

	dst     *image.NRGBA
	origin  image.Point
	dir     geom.LayoutDirection
	content func(*Canvas)
}

// NewCanvas returns a canvas drawing into dst.
func NewCanvas(dst *image.NRGBA, dir geom.LayoutDirection) *Canvas {
	return &Canvas{
		Filter: imaging.Lanczos,
		dst:    dst,
		dir:    dir,
	}
}

// WithContent sets the function invoked by DrawContent.
func (c *Canvas) WithContent(fn func(*Canvas)) *Canvas {
	c.content = fn
	return c
}

// Image returns the image drawn so far.
func (c *Canvas) Image() *image.NRGBA {
	return c.dst
}

func (c *Canvas) Size() geom.Size {
	b := c.dst.Bounds()
	return geom.Sz(float32(b.Dx()), float32(b.Dy()))
}

func (c *Canvas) LayoutDirection() geom.LayoutDirection {
	return c.dir
}

func (c *Canvas) Translate(dx, dy float32, fn func(content.DrawScope)) {
	prev := c.origin
	defer func() { c.origin = prev }()

	c.origin = c.origin.Add(image.Pt(round(dx), round(dy)))
	fn(c)
}

func (c *Canvas) DrawImage(img image.Image, size geom.Size, alpha float32, filter content.ColorFilter) {
	s := size.Round()
	if s.Width <= 0 || s.Height <= 0 || alpha <= 0 {
		return
	}

	var src *image.NRGBA
	if b := img.Bounds(); b.Dx() == s.Width && b.Dy() == s.Height {
		src = imaging.Clone(img)
	} else {
		src = imaging.Resize(img, s.Width, s.Height, c.Filter)
	}
	if filter != nil {
		src = filter.Apply(src)
	}
	c.overlay(src, alpha)
}

func (c *Canvas) FillRect(col color.Color, size geom.Size, alpha float32) {
	s := size.Round()
	if s.Width <= 0 || s.Height <= 0 || alpha <= 0 {
		return
	}
	c.overlay(imaging.New(s.Width, s.Height, col), alpha)
}

func (c *Canvas) DrawContent() {
	if c.content != nil {
		c.content(c)
	}
}

func (c *Canvas) overlay(src *image.NRGBA, alpha float32) {
	pos := c.dst.Bounds().Min.Add(c.origin)
	c.dst = imaging.Overlay(c.dst, src, pos, math.Min(float64(alpha), 1))
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
