package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposite_Basic(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.Get())
	assert.Error(op.Set("composite_mode_not_supported"))
	assert.Equal(SrcOver, op.Get())
	assert.NoError(op.Set(Xor))
	assert.Equal(Xor, op.Get())
}

func TestComposite_Operators(t *testing.T) {
	var (
		cyan        = color.NRGBA{R: 0, G: 255, B: 255, A: 255}
		magenta     = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
		transparent = color.NRGBA{}
	)

	// The source covers the left-bottom half and the backdrop the top-right half,
	// overlapping in the middle.
	rect := image.Rect(0, 0, 10, 10)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	draw.Draw(source, image.Rect(0, 3, 7, 10), &image.Uniform{C: cyan}, image.Point{}, draw.Src)
	draw.Draw(backdrop, image.Rect(3, 0, 10, 7), &image.Uniform{C: magenta}, image.Point{}, draw.Src)

	testCases := []struct {
		op                          CompositeOp
		topRight, bottomLeft, center color.NRGBA
	}{
		{Clear, transparent, transparent, transparent},
		{Copy, transparent, cyan, cyan},
		{Dst, magenta, transparent, magenta},
		{SrcOver, magenta, cyan, cyan},
		{DstOver, magenta, cyan, magenta},
		{SrcIn, transparent, transparent, cyan},
		{DstIn, transparent, transparent, magenta},
		{SrcOut, transparent, cyan, transparent},
		{DstOut, magenta, transparent, transparent},
		{SrcAtop, magenta, transparent, cyan},
		{DstAtop, transparent, cyan, magenta},
		{Xor, magenta, cyan, transparent},
	}

	for _, tc := range testCases {
		t.Run(string(tc.op), func(t *testing.T) {
			op := InitOp()
			assert.NoError(t, op.Set(tc.op))
			bmp := NewBitmap(rect)
			op.Draw(bmp, source, backdrop, nil)

			assert.Equal(t, tc.topRight, bmp.Img.NRGBAAt(9, 0))
			assert.Equal(t, tc.bottomLeft, bmp.Img.NRGBAAt(0, 9))
			assert.Equal(t, tc.center, bmp.Img.NRGBAAt(5, 5))
		})
	}
}

func TestBlend_Modes(t *testing.T) {
	assert := assert.New(t)

	blend := NewBlend()
	assert.Equal(Normal, blend.Get())
	assert.Error(blend.Set("blend_mode_not_supported"))

	front := color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	back := color.NRGBA{R: 255, G: 255, B: 0, A: 255}

	rect := image.Rect(0, 0, 1, 1)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	source.SetNRGBA(0, 0, front)
	backdrop.SetNRGBA(0, 0, back)

	testCases := []struct {
		mode BlendMode
		want []uint8
	}{
		{Normal, []uint8{255, 0, 255, 255}},
		{Darken, []uint8{255, 0, 0, 255}},
		{Lighten, []uint8{255, 255, 255, 255}},
		{Multiply, []uint8{255, 0, 0, 255}},
		{Screen, []uint8{255, 255, 255, 255}},
		{Overlay, []uint8{255, 255, 0, 255}},
		{Difference, []uint8{0, 255, 255, 255}},
	}

	op := InitOp()
	for _, tc := range testCases {
		assert.NoError(blend.Set(tc.mode))
		bmp := NewBitmap(rect)
		op.Draw(bmp, source, backdrop, blend)
		assert.Equal(tc.want, bmp.Img.Pix, string(tc.mode))
	}
}

func TestFilter_Tint(t *testing.T) {
	rect := image.Rect(0, 0, 2, 1)
	src := image.NewNRGBA(rect)
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	// (1, 0) stays transparent

	red := color.NRGBA{R: 255, A: 255}
	out := Tint(red).Apply(src)

	assert.Equal(t, red, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(1, 0))
}

func TestFilter_TintUnknownOperatorKeepsImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	f := TintFilter{Color: color.NRGBA{A: 255}, Op: "bogus"}
	assert.Same(t, src, f.Apply(src))
}

func TestFilter_SaturationAndChain(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 40, B: 40, A: 255})

	out := Chain{SaturationFilter{Percentage: -100}}.Apply(src)
	c := out.NRGBAAt(0, 0)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
	assert.Equal(t, uint8(255), c.A)
}
