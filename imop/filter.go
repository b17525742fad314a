package imop

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// TintFilter composes a solid color with every pixel of an image.
// The image is the backdrop and the color is the source.
type TintFilter struct {
	Color color.NRGBA
	Op    CompositeOp
	Mode  BlendMode
}

// Tint returns a filter that recolors the opaque parts of an image, keeping its alpha.
func Tint(c color.NRGBA) TintFilter {
	return TintFilter{Color: c, Op: SrcIn, Mode: Normal}
}

// Apply implements content.ColorFilter.
func (f TintFilter) Apply(src *image.NRGBA) *image.NRGBA {
	op := InitOp()
	if f.Op != "" {
		if err := op.Set(f.Op); err != nil {
			return src
		}
	}

	var blend *Blend
	if f.Mode != "" && f.Mode != Normal {
		blend = NewBlend()
		if err := blend.Set(f.Mode); err != nil {
			return src
		}
	}

	bounds := src.Bounds()
	tint := image.NewNRGBA(bounds)
	draw.Draw(tint, bounds, &image.Uniform{C: f.Color}, image.Point{}, draw.Src)

	bmp := NewBitmap(bounds)
	op.Draw(bmp, tint, src, blend)
	return bmp.Img
}

// SaturationFilter changes the color saturation of an image. Percentage is in
// the [-100, 100] range; -100 produces a grayscale image.
type SaturationFilter struct {
	Percentage float64
}

// Apply implements content.ColorFilter.
func (f SaturationFilter) Apply(src *image.NRGBA) *image.NRGBA {
	return imaging.AdjustSaturation(src, f.Percentage)
}

// Chain applies several filters in order.
type Chain []interface {
	Apply(*image.NRGBA) *image.NRGBA
}

// Apply implements content.ColorFilter.
func (c Chain) Apply(src *image.NRGBA) *image.NRGBA {
	for _, f := range c {
		src = f.Apply(src)
	}
	return src
}
