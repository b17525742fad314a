// Package imop implements the Porter-Duff composition operations and the
// separable blend modes used by the color filters applied to painted images.
// The image/draw core package implements only source-over-destination and source;
// this package covers the remaining operators.
package imop

import (
	"fmt"

	"github.com/kmmage/kmmage/utils"
)

// BlendMode selects how a source color is mixed with its backdrop.
type BlendMode string

const (
	Normal     BlendMode = "normal"
	Darken     BlendMode = "darken"
	Lighten    BlendMode = "lighten"
	Multiply   BlendMode = "multiply"
	Screen     BlendMode = "screen"
	Overlay    BlendMode = "overlay"
	Difference BlendMode = "difference"
)

var blendModes = []BlendMode{Normal, Darken, Lighten, Multiply, Screen, Overlay, Difference}

// Blend holds the currently active blend mode.
type Blend struct {
	Mode BlendMode
}

// NewBlend initializes a new Blend in Normal mode.
func NewBlend() *Blend {
	return &Blend{Mode: Normal}
}

// Set activates one of the supported blend modes.
func (b *Blend) Set(mode BlendMode) error {
	if !utils.Contains(blendModes, mode) {
		return fmt.Errorf("unsupported blend mode: %v", mode)
	}
	b.Mode = mode
	return nil
}

// Get returns the currently active blend mode.
func (b *Blend) Get() BlendMode {
	return b.Mode
}

// apply returns the blended channel value of the source cs over backdrop cb.
// Both values are in the [0, 1] range.
func (b *Blend) apply(cs, cb float64) float64 {
	switch b.Mode {
	case Darken:
		return utils.Min(cs, cb)
	case Lighten:
		return utils.Max(cs, cb)
	case Multiply:
		return cs * cb
	case Screen:
		return 1 - (1-cs)*(1-cb)
	case Overlay:
		// Overlay is HardLight with the layers swapped.
		if cb <= 0.5 {
			return 2 * cs * cb
		}
		return 1 - 2*(1-cs)*(1-cb)
	case Difference:
		return utils.Abs(cs - cb)
	default:
		return cs
	}
}
