package transform

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/kmmage/kmmage/imop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestGrayscale(t *testing.T) {
	src := imaging.New(10, 10, color.NRGBA{R: 177, G: 40, B: 90, A: 128})

	dst, err := Grayscale{}.Transform(context.Background(), src)
	require.NoError(t, err)

	for i := 0; i < len(dst.Pix); i += 4 {
		r, g, b, a := dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3]
		if r != g || r != b {
			t.Fatalf("R, G, B value expected to be equal. Got %v, %v, %v", r, g, b)
		}
		assert.Equal(t, uint8(128), a)
	}
	// The source is left untouched.
	assert.Equal(t, uint8(177), src.Pix[0])
}

func TestDither(t *testing.T) {
	src := imaging.New(2, 1, color.White)
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 200, A: 255})

	dst, err := Dither{}.Transform(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, dst.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(1, 0))
	assert.Equal(t, "Dither(127)", Dither{}.CacheKey())
}

func TestBlur_UniformImageIsUnchanged(t *testing.T) {
	src := imaging.New(20, 12, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	for _, radius := range []int{0, 1, 3, 10, 300} {
		dst, err := Blur{Radius: radius}.Transform(context.Background(), src)
		require.NoError(t, err)
		for i, v := range dst.Pix {
			assert.InDelta(t, src.Pix[i], v, 1, "radius %d", radius)
		}
	}
}

func TestBlur_SpreadsPixels(t *testing.T) {
	src := imaging.New(9, 9, color.Black)
	src.SetNRGBA(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	dst, err := Blur{Radius: 2}.Transform(context.Background(), src)
	require.NoError(t, err)

	center := dst.NRGBAAt(4, 4)
	near := dst.NRGBAAt(5, 4)
	far := dst.NRGBAAt(0, 0)

	assert.Less(t, center.R, uint8(255))
	assert.Greater(t, center.R, near.R)
	assert.Greater(t, near.R, uint8(0))
	assert.Equal(t, uint8(0), far.R)
	assert.Equal(t, uint8(255), src.NRGBAAt(4, 4).R)

	_, err = Blur{Radius: -1}.Transform(context.Background(), src)
	assert.Error(t, err)
}

func TestColorFilter(t *testing.T) {
	src := imaging.New(4, 4, red)
	cf := ColorFilter{Filter: imop.Tint(blue)}

	dst, err := cf.Transform(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, blue, dst.NRGBAAt(1, 1))
	assert.Contains(t, cf.CacheKey(), "ColorFilter")

	dst, err = ColorFilter{}.Transform(context.Background(), src)
	require.NoError(t, err)
	assert.Same(t, src, dst)
}

func TestApply(t *testing.T) {
	src := imaging.New(4, 4, red)

	dst, err := Apply(context.Background(), src, Grayscale{}, Dither{})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, dst.NRGBAAt(0, 0))
	assert.Equal(t, []string{"Grayscale", "Dither(127)", "Blur(3)"}, Keys([]Transformation{Grayscale{}, Dither{}, Blur{Radius: 3}}))

	_, err = Apply(context.Background(), src, FaceCrop{})
	assert.ErrorContains(t, err, "FaceCrop(0x0)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Apply(ctx, src, Grayscale{})
	assert.ErrorIs(t, err, context.Canceled)
}

type fixedDetector []image.Rectangle

func (d fixedDetector) Detect(*image.NRGBA) []image.Rectangle { return d }

// halves returns an image whose left half is red and right half is blue.
func halves(w, h int) *image.NRGBA {
	img := imaging.New(w, h, red)
	return imaging.Paste(img, imaging.New(w/2, h, blue), image.Pt(w/2, 0))
}

func TestFaceCrop_CentersOnLargestFace(t *testing.T) {
	src := halves(200, 100)
	crop := FaceCrop{
		Width:  50,
		Height: 50,
		Detector: fixedDetector{
			image.Rect(10, 40, 20, 50),
			image.Rect(140, 40, 160, 60),
		},
	}

	dst, err := crop.Transform(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), dst.Bounds())
	assert.Equal(t, blue, dst.NRGBAAt(0, 25))
	assert.Equal(t, blue, dst.NRGBAAt(49, 25))
}

func TestFaceCrop_FallsBackToCenter(t *testing.T) {
	src := halves(200, 100)

	for _, d := range []FaceDetector{nil, fixedDetector{}} {
		dst, err := FaceCrop{Width: 50, Height: 50, Detector: d}.Transform(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, red, dst.NRGBAAt(2, 25))
		assert.Equal(t, blue, dst.NRGBAAt(47, 25))
	}
}

func TestCropAround(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)

	testCases := []struct {
		name   string
		face   image.Rectangle
		aspect float64
		want   image.Rectangle
	}{
		{"centred", image.Rect(90, 40, 110, 60), 1, image.Rect(50, 0, 150, 100)},
		{"clamped left", image.Rect(0, 0, 10, 10), 1, image.Rect(0, 0, 100, 100)},
		{"clamped right", image.Rect(190, 90, 200, 100), 1, image.Rect(100, 0, 200, 100)},
		{"wide", image.Rect(0, 0, 10, 10), 4, image.Rect(0, 0, 200, 50)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cropAround(bounds, tc.face, tc.aspect))
		})
	}
}
