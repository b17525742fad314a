package content

import (
	"fmt"
	"strings"

	"github.com/kmmage/kmmage/geom"
)

// Alignment positions content of a given size inside the available space.
type Alignment interface {
	Align(size, space geom.IntSize, dir geom.LayoutDirection) geom.Offset
}

// BiasAlignment places content using a bias in [-1, 1] on each axis,
// -1 being the start/top edge and 1 the end/bottom edge.
// The horizontal bias is mirrored in right-to-left layouts.
type BiasAlignment struct {
	Horizontal, Vertical float32
}

var (
	TopStart     = BiasAlignment{-1, -1}
	TopCenter    = BiasAlignment{0, -1}
	TopEnd       = BiasAlignment{1, -1}
	CenterStart  = BiasAlignment{-1, 0}
	Center       = BiasAlignment{0, 0}
	CenterEnd    = BiasAlignment{1, 0}
	BottomStart  = BiasAlignment{-1, 1}
	BottomCenter = BiasAlignment{0, 1}
	BottomEnd    = BiasAlignment{1, 1}
)

var alignmentNames = map[string]BiasAlignment{
	"topstart":     TopStart,
	"topcenter":    TopCenter,
	"topend":       TopEnd,
	"centerstart":  CenterStart,
	"center":       Center,
	"centerend":    CenterEnd,
	"bottomstart":  BottomStart,
	"bottomcenter": BottomCenter,
	"bottomend":    BottomEnd,
}

// ParseAlignment returns the named alignment, e.g. "center" or "bottom-end".
func ParseAlignment(name string) (BiasAlignment, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	if a, ok := alignmentNames[key]; ok {
		return a, nil
	}
	return Center, fmt.Errorf("unknown alignment %q", name)
}

// Align implements Alignment. Offsets are truncated toward zero.
func (a BiasAlignment) Align(size, space geom.IntSize, dir geom.LayoutDirection) geom.Offset {
	cx := float32(space.Width-size.Width) / 2
	cy := float32(space.Height-size.Height) / 2

	h := a.Horizontal
	if dir == geom.RTL {
		h = -h
	}
	return geom.Offset{
		X: int(cx * (1 + h)),
		Y: int(cy * (1 + a.Vertical)),
	}
}

func (a BiasAlignment) String() string {
	for n, v := range alignmentNames {
		if v == a {
			return n
		}
	}
	return fmt.Sprintf("BiasAlignment(%g, %g)", a.Horizontal, a.Vertical)
}
