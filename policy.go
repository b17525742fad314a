package kmmage

import (
	"fmt"
	"image"
	"image/draw"
)

// CachePolicy controls reads and writes of a cache source.
type CachePolicy int

const (
	CacheEnabled CachePolicy = iota
	CacheReadOnly
	CacheWriteOnly
	CacheDisabled
)

func (p CachePolicy) ReadEnabled() bool  { return p == CacheEnabled || p == CacheReadOnly }
func (p CachePolicy) WriteEnabled() bool { return p == CacheEnabled || p == CacheWriteOnly }

func (p CachePolicy) String() string {
	switch p {
	case CacheEnabled:
		return "enabled"
	case CacheReadOnly:
		return "read-only"
	case CacheWriteOnly:
		return "write-only"
	case CacheDisabled:
		return "disabled"
	}
	return fmt.Sprintf("CachePolicy(%d)", int(p))
}

// Precision tells the loader how closely the decoded image has to match the
// resolved size.
type Precision int

const (
	// PrecisionAutomatic is exact for fixed sizes and inexact otherwise.
	PrecisionAutomatic Precision = iota
	// PrecisionExact scales the image to the resolved size, upscaling if needed.
	PrecisionExact
	// PrecisionInexact only ever downscales.
	PrecisionInexact
)

// Scale decides how the image is fitted into the resolved size when sampling.
type Scale int

const (
	// ScaleFit makes both dimensions fit inside the resolved size.
	ScaleFit Scale = iota
	// ScaleFill makes both dimensions cover the resolved size.
	ScaleFill
)

// BitmapConfig selects the pixel layout of the loaded image.
type BitmapConfig int

const (
	// ARGB8888 produces 8 bit per channel color images: *image.RGBA when the
	// request uses premultiplied alpha, *image.NRGBA otherwise.
	ARGB8888 BitmapConfig = iota
	// Alpha8 keeps only the alpha channel (*image.Alpha).
	Alpha8
	// Gray8 produces an 8 bit grayscale image (*image.Gray).
	Gray8
	// RGBA64 produces 16 bit per channel images (*image.RGBA64 or *image.NRGBA64).
	RGBA64
)

// convert returns img in the layout described by c.
func (c BitmapConfig) convert(img *image.NRGBA, premultiplied bool) image.Image {
	var dst draw.Image
	b := img.Bounds()
	switch c {
	case Alpha8:
		dst = image.NewAlpha(b)
	case Gray8:
		dst = image.NewGray(b)
	case RGBA64:
		if premultiplied {
			dst = image.NewRGBA64(b)
		} else {
			dst = image.NewNRGBA64(b)
		}
	default:
		if !premultiplied {
			return img
		}
		dst = image.NewRGBA(b)
	}
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// DefaultRequestOptions fill the values a request builder leaves unset.
type DefaultRequestOptions struct {
	Precision          Precision
	BitmapConfig       BitmapConfig
	MemoryCachePolicy  CachePolicy
	DiskCachePolicy    CachePolicy
	NetworkCachePolicy CachePolicy
	Placeholder        image.Image
	Error              image.Image
}
