package gioimage

import (
	"context"
	"sync"

	"gioui.org/layout"
	"github.com/kmmage/kmmage"
)

var _ kmmage.SizeResolver = (*ConstraintsSizeResolver)(nil)

// ConstraintsSizeResolver resolves the size of a request from the
// constraints of the widget displaying it. Size blocks until the first
// call to Update.
type ConstraintsSizeResolver struct {
	once  sync.Once
	ready chan struct{}

	mu   sync.Mutex
	size kmmage.Size
}

func NewConstraintsSizeResolver() *ConstraintsSizeResolver {
	return &ConstraintsSizeResolver{ready: make(chan struct{})}
}

// Update records the constraints the widget is laid out with. Unbounded
// maxima resolve to undefined dimensions.
func (r *ConstraintsSizeResolver) Update(c layout.Constraints) {
	gc := ToConstraints(c)
	size := kmmage.OriginalSize
	if gc.HasBoundedWidth() {
		size.Width = kmmage.Dimension(gc.MaxWidth)
	}
	if gc.HasBoundedHeight() {
		size.Height = kmmage.Dimension(gc.MaxHeight)
	}

	r.mu.Lock()
	r.size = size
	r.mu.Unlock()
	r.once.Do(func() { close(r.ready) })
}

// Layout records the constraints of gtx and lays out nothing. It is meant
// to be called from the widget that shows the requested image.
func (r *ConstraintsSizeResolver) Layout(gtx C) D {
	r.Update(gtx.Constraints)
	return D{Size: gtx.Constraints.Min}
}

func (r *ConstraintsSizeResolver) Size(ctx context.Context) (kmmage.Size, error) {
	select {
	case <-ctx.Done():
		return kmmage.Size{}, ctx.Err()
	case <-r.ready:
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size, nil
}
