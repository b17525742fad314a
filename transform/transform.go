// Package transform holds the image transformations that can be attached to
// a request. Transformations run in order after decoding and sampling, and
// their cache keys become part of the memory cache key.
package transform

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/kmmage/kmmage/content"
)

// Transformation modifies a decoded image.
type Transformation interface {
	// CacheKey uniquely identifies the transformation and its parameters.
	CacheKey() string
	Transform(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error)
}

// Keys returns the cache keys of ts in order.
func Keys(ts []Transformation) []string {
	keys := make([]string, 0, len(ts))
	for _, t := range ts {
		keys = append(keys, t.CacheKey())
	}
	return keys
}

// Apply runs ts over img in order, stopping at the first error.
func Apply(ctx context.Context, img *image.NRGBA, ts ...Transformation) (*image.NRGBA, error) {
	var err error
	for _, t := range ts {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if img, err = t.Transform(ctx, img); err != nil {
			return nil, fmt.Errorf("transform %s: %w", t.CacheKey(), err)
		}
	}
	return img, nil
}

// Grayscale converts the image to shades of gray, keeping the alpha channel.
type Grayscale struct{}

func (Grayscale) CacheKey() string { return "Grayscale" }

func (Grayscale) Transform(_ context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	dst := imaging.Clone(src)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		r, g, b := float32(dst.Pix[i]), float32(dst.Pix[i+1]), float32(dst.Pix[i+2])
		lum := uint8(r*0.299 + g*0.587 + b*0.114 + 0.5)
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = lum, lum, lum
	}
	return dst, nil
}

// Dither converts the image to black and white where the black is fully transparent.
type Dither struct {
	// Threshold is the channel value every channel has to exceed to become white.
	// Zero means 127.
	Threshold uint8
}

func (d Dither) CacheKey() string { return fmt.Sprintf("Dither(%d)", d.threshold()) }

func (d Dither) threshold() uint8 {
	if d.Threshold == 0 {
		return 127
	}
	return d.Threshold
}

func (d Dither) Transform(_ context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	var (
		th  = d.threshold()
		dst = image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	for y := 0; y < dst.Rect.Dy(); y++ {
		for x := 0; x < dst.Rect.Dx(); x++ {
			c := src.NRGBAAt(src.Rect.Min.X+x, src.Rect.Min.Y+y)
			if c.R > th && c.G > th && c.B > th {
				dst.SetNRGBA(x, y, white)
			}
		}
	}
	return dst, nil
}

// Blur applies a stack blur of the given radius.
type Blur struct {
	Radius int
}

func (b Blur) CacheKey() string { return fmt.Sprintf("Blur(%d)", b.Radius) }

func (b Blur) Transform(_ context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	if b.Radius < 0 {
		return nil, fmt.Errorf("negative blur radius %d", b.Radius)
	}
	dst := imaging.Clone(src)
	stackBlur(dst, b.Radius)
	return dst, nil
}

// ColorFilter applies a color filter, e.g. an imop tint, as a transformation.
type ColorFilter struct {
	Filter content.ColorFilter
}

func (c ColorFilter) CacheKey() string { return fmt.Sprintf("ColorFilter(%+v)", c.Filter) }

func (c ColorFilter) Transform(_ context.Context, src *image.NRGBA) (*image.NRGBA, error) {
	if c.Filter == nil {
		return src, nil
	}
	return c.Filter.Apply(src), nil
}
