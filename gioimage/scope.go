package gioimage

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/disintegration/imaging"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
)

var _ content.DrawScope = (*scope)(nil)

// scope is a content.DrawScope emitting Gio operations.
type scope struct {
	ops     *op.Ops
	size    image.Point
	dir     geom.LayoutDirection
	content op.CallOp
	cache   *opCache
}

func (s *scope) Size() geom.Size {
	return geom.Sz(float32(s.size.X), float32(s.size.Y))
}

func (s *scope) LayoutDirection() geom.LayoutDirection { return s.dir }

func (s *scope) Translate(dx, dy float32, fn func(content.DrawScope)) {
	defer op.Affine(f32.Affine2D{}.Offset(f32.Pt(dx, dy))).Push(s.ops).Pop()
	fn(s)
}

func (s *scope) DrawImage(img image.Image, size geom.Size, alpha float32, filter content.ColorFilter) {
	if size.IsEmpty() || alpha <= 0 {
		return
	}
	imgOp := s.cache.imageOp(img, filter)
	b := imgOp.Size()
	if b.X == 0 || b.Y == 0 {
		return
	}

	scale := f32.Pt(size.Width/float32(b.X), size.Height/float32(b.Y))
	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, scale)).Push(s.ops).Pop()
	if alpha < 1 {
		defer paint.PushOpacity(s.ops, alpha).Pop()
	}
	defer clip.Rect{Max: b}.Push(s.ops).Pop()

	imgOp.Add(s.ops)
	paint.PaintOp{}.Add(s.ops)
}

func (s *scope) FillRect(col color.Color, size geom.Size, alpha float32) {
	r := size.Round()
	if r.Width <= 0 || r.Height <= 0 || alpha <= 0 {
		return
	}
	if alpha < 1 {
		defer paint.PushOpacity(s.ops, alpha).Pop()
	}
	defer clip.Rect{Max: image.Pt(r.Width, r.Height)}.Push(s.ops).Pop()

	paint.ColorOp{Color: color.NRGBAModel.Convert(col).(color.NRGBA)}.Add(s.ops)
	paint.PaintOp{}.Add(s.ops)
}

func (s *scope) DrawContent() {
	s.content.Add(s.ops)
}

// opCache keeps the image operation of the last drawn image, so filters and
// uploads do not run on every frame.
type opCache struct {
	src    image.Image
	filter string
	op     paint.ImageOp
	valid  bool
}

func (c *opCache) imageOp(img image.Image, filter content.ColorFilter) paint.ImageOp {
	var key string
	if filter != nil {
		key = fmt.Sprintf("%T%+v", filter, filter)
	}
	if c != nil && c.valid && c.src == img && c.filter == key {
		return c.op
	}

	src := img
	if filter != nil {
		src = filter.Apply(imaging.Clone(img))
	}
	imgOp := paint.NewImageOp(src)
	if c != nil {
		c.src, c.filter, c.op, c.valid = img, key, imgOp, true
	}
	return imgOp
}
