package content

import (
	"fmt"
	"strings"

	"github.com/kmmage/kmmage/geom"
	"github.com/kmmage/kmmage/utils"
)

// ContentScale decides how a source size is scaled into a destination size.
type ContentScale uint8

const (
	// Fit scales uniformly so the source fits inside the destination.
	Fit ContentScale = iota
	// Crop scales uniformly so the source covers the destination.
	Crop
	// Fill stretches the source to the destination, not preserving aspect-ratio.
	Fill
	// Inside behaves like Fit when the source is larger than the destination
	// and leaves it unscaled otherwise.
	Inside
	// None never scales.
	None
	// FillWidth scales uniformly so the widths match.
	FillWidth
	// FillHeight scales uniformly so the heights match.
	FillHeight
)

var contentScaleNames = map[ContentScale]string{
	Fit:        "fit",
	Crop:       "crop",
	Fill:       "fill",
	Inside:     "inside",
	None:       "none",
	FillWidth:  "fillwidth",
	FillHeight: "fillheight",
}

func (c ContentScale) String() string {
	if n, ok := contentScaleNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ContentScale(%d)", c)
}

// ParseContentScale returns the ContentScale with the given (case insensitive) name.
func ParseContentScale(name string) (ContentScale, error) {
	name = strings.ToLower(strings.ReplaceAll(name, "-", ""))
	for c, n := range contentScaleNames {
		if n == name {
			return c, nil
		}
	}
	return Fit, fmt.Errorf("unknown content scale %q", name)
}

// ComputeScaleFactor returns the multiplier that maps src into dst.
// A source without area is never scaled.
func (c ContentScale) ComputeScaleFactor(src, dst geom.Size) geom.ScaleFactor {
	if src.IsEmpty() {
		return geom.Identity
	}
	wr := dst.Width / src.Width
	hr := dst.Height / src.Height

	switch c {
	case Fit:
		return geom.Uniform(utils.Min(wr, hr))
	case Crop:
		return geom.Uniform(utils.Max(wr, hr))
	case Fill:
		return geom.ScaleFactor{X: wr, Y: hr}
	case Inside:
		if src.Width <= dst.Width && src.Height <= dst.Height {
			return geom.Identity
		}
		return geom.Uniform(utils.Min(wr, hr))
	case FillWidth:
		return geom.Uniform(wr)
	case FillHeight:
		return geom.Uniform(hr)
	default:
		return geom.Identity
	}
}
