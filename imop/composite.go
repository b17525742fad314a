package imop

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/kmmage/kmmage/utils"
)

// CompositeOp is a Porter-Duff operator.
type CompositeOp string

const (
	Clear   CompositeOp = "clear"
	Copy    CompositeOp = "copy"
	Dst     CompositeOp = "dst"
	SrcOver CompositeOp = "src_over"
	DstOver CompositeOp = "dst_over"
	SrcIn   CompositeOp = "src_in"
	DstIn   CompositeOp = "dst_in"
	SrcOut  CompositeOp = "src_out"
	DstOut  CompositeOp = "dst_out"
	SrcAtop CompositeOp = "src_atop"
	DstAtop CompositeOp = "dst_atop"
	Xor     CompositeOp = "xor"
)

var compositeOps = []CompositeOp{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Bitmap is the destination of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap returns an empty (fully transparent) bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the currently active composition operator.
type Composite struct {
	current CompositeOp
}

// InitOp returns a Composite using source-over.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operators.
func (op *Composite) Set(cop CompositeOp) error {
	if !utils.Contains(compositeOps, cop) {
		return fmt.Errorf("unsupported composite operation: %v", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operator.
func (op *Composite) Get() CompositeOp {
	return op.current
}

// factors returns the Porter-Duff fractions (Fa, Fb) applied to the source and the backdrop.
func (op *Composite) factors(as, ab float64) (float64, float64) {
	switch op.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 1, 1 - as
}

// Draw composes src over the dst backdrop into bitmap. The blend mode, when
// not nil, mixes the source color with the backdrop before composition.
// All three images are expected to share the same bounds.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) {
	bounds := src.Bounds()
	if bitmap == nil {
		bitmap = NewBitmap(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			s := src.NRGBAAt(x, y)
			d := dst.NRGBAAt(x, y)

			as, ab := norm(s.A), norm(d.A)
			cs := [3]float64{norm(s.R), norm(s.G), norm(s.B)}
			cb := [3]float64{norm(d.R), norm(d.G), norm(d.B)}

			if blend != nil {
				for i := range cs {
					cs[i] = (1-ab)*cs[i] + ab*blend.apply(cs[i], cb[i])
				}
			}

			fa, fb := op.factors(as, ab)
			ao := as*fa + ab*fb

			var out color.NRGBA
			if ao > 0 {
				var co [3]float64
				for i := range co {
					// premultiplied result divided back by the output alpha
					co[i] = (as*fa*cs[i] + ab*fb*cb[i]) / ao
				}
				out = color.NRGBA{R: denorm(co[0]), G: denorm(co[1]), B: denorm(co[2]), A: denorm(ao)}
			}
			bitmap.Img.SetNRGBA(x, y, out)
		}
	}
}

func norm(v uint8) float64 {
	return float64(v) / 255
}

func denorm(v float64) uint8 {
	return uint8(math.Round(utils.Clamp(v, 0, 1) * 255))
}
