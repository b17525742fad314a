package kmmage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/kmmage/kmmage/utils"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decode decodes encoded image data into an *image.NRGBA with its origin at (0, 0).
func decode(data []byte) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: detected %s", ErrNotImage, utils.DetectContentType(data))
		}
		return nil, "", fmt.Errorf("could not decode the image: %w", err)
	}
	return toNRGBA(img), format, nil
}

// toNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if src, ok := img.(*image.NRGBA); ok && src.Rect.Min == (image.Point{}) {
		return src
	}
	return imaging.Clone(img)
}

// sampledSize returns the size an image of w x h is scaled to for the
// requested size, or w x h when no scaling is needed.
func sampledSize(w, h int, size Size, scale Scale, exact bool) (int, int) {
	if size.IsOriginal() || w <= 0 || h <= 0 {
		return w, h
	}

	var (
		wr = float64(size.Width) / float64(w)
		hr = float64(size.Height) / float64(h)
		m  float64
	)
	switch {
	case !size.Width.IsDefined():
		m = hr
	case !size.Height.IsDefined():
		m = wr
	case scale == ScaleFill:
		m = math.Max(wr, hr)
	default:
		m = math.Min(wr, hr)
	}
	if !exact {
		m = math.Min(m, 1)
	}

	sw := utils.Max(1, int(math.Round(float64(w)*m)))
	sh := utils.Max(1, int(math.Round(float64(h)*m)))
	return sw, sh
}

// sample scales img to the requested size.
func sample(img *image.NRGBA, size Size, scale Scale, exact bool) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	sw, sh := sampledSize(w, h, size, scale, exact)
	if sw == w && sh == h {
		return img
	}
	return imaging.Resize(img, sw, sh, imaging.Lanczos)
}
