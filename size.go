package kmmage

import (
	"context"
	"fmt"
)

// Dimension is a length in pixels. Undefined means the loader is free to pick it.
type Dimension int

// Undefined marks a dimension with no requested value.
const Undefined Dimension = -1

func (d Dimension) IsDefined() bool { return d >= 0 }

func (d Dimension) String() string {
	if !d.IsDefined() {
		return "undefined"
	}
	return fmt.Sprintf("%dpx", int(d))
}

// Size is the requested size of a loaded image.
type Size struct {
	Width, Height Dimension
}

// OriginalSize requests the image at its decoded size.
var OriginalSize = Size{Undefined, Undefined}

// IsOriginal reports whether neither dimension is defined.
func (s Size) IsOriginal() bool {
	return !s.Width.IsDefined() && !s.Height.IsDefined()
}

func (s Size) String() string {
	return fmt.Sprintf("%vx%v", s.Width, s.Height)
}

// SizeResolver resolves the target size of a request. Resolvers may block,
// e.g. until a widget is laid out.
type SizeResolver interface {
	Size(ctx context.Context) (Size, error)
}

// FixedSize resolves to itself.
type FixedSize Size

func (f FixedSize) Size(context.Context) (Size, error) { return Size(f), nil }

// SizeResolverFunc adapts a function to a SizeResolver.
type SizeResolverFunc func(ctx context.Context) (Size, error)

func (f SizeResolverFunc) Size(ctx context.Context) (Size, error) { return f(ctx) }
