package raster

import (
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
	"github.com/pkg/errors"
)

// ErrEmptyLayout is returned when the measured layout has no area.
var ErrEmptyLayout = errors.New("layout measured to an empty size")

// Box is an empty layout element taking the smallest size it is allowed.
type Box struct{}

func (Box) Measure(c geom.Constraints) geom.IntSize { return c.Min() }
func (Box) MinIntrinsicWidth(int) int               { return 0 }
func (Box) MaxIntrinsicWidth(int) int               { return 0 }
func (Box) MinIntrinsicHeight(int) int              { return 0 }
func (Box) MaxIntrinsicHeight(int) int              { return 0 }

// Options configure Render.
type Options struct {
	Background color.Color
	Direction  geom.LayoutDirection
	// Filter overrides the Lanczos resampling filter when set.
	Filter *imaging.ResampleFilter
}

// Render measures an empty box decorated by m under c and draws it.
// The returned image has the measured size.
func Render(m content.Modifier, c geom.Constraints, opts Options) (*Canvas, error) {
	res := m.Measure(Box{}, c)
	if res.Size.Width <= 0 || res.Size.Height <= 0 {
		return nil, ErrEmptyLayout
	}

	bg := opts.Background
	if bg == nil {
		bg = color.Transparent
	}
	canvas := NewCanvas(imaging.New(res.Size.Width, res.Size.Height, bg), opts.Direction)
	if opts.Filter != nil {
		canvas.Filter = *opts.Filter
	}
	m.Draw(canvas)

	return canvas, nil
}
