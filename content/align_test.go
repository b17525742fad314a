package content

import (
	"testing"

	"github.com/kmmage/kmmage/geom"
	"github.com/stretchr/testify/assert"
)

func TestAlignment_Center(t *testing.T) {
	space := geom.IntSize{Width: 200, Height: 200}

	testCases := []struct {
		size geom.IntSize
		want geom.Offset
	}{
		{geom.IntSize{Width: 200, Height: 100}, geom.Offset{X: 0, Y: 50}},
		{geom.IntSize{Width: 101, Height: 100}, geom.Offset{X: 49, Y: 50}},
		{geom.IntSize{Width: 0, Height: 0}, geom.Offset{X: 100, Y: 100}},
		{geom.IntSize{Width: 300, Height: 201}, geom.Offset{X: -50, Y: 0}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Center.Align(tc.size, space, geom.LTR))
	}
}

func TestAlignment_Edges(t *testing.T) {
	size := geom.IntSize{Width: 100, Height: 50}
	space := geom.IntSize{Width: 200, Height: 200}

	testCases := []struct {
		name  string
		align BiasAlignment
		dir   geom.LayoutDirection
		want  geom.Offset
	}{
		{"top-start ltr", TopStart, geom.LTR, geom.Offset{X: 0, Y: 0}},
		{"top-start rtl", TopStart, geom.RTL, geom.Offset{X: 100, Y: 0}},
		{"bottom-end ltr", BottomEnd, geom.LTR, geom.Offset{X: 100, Y: 150}},
		{"bottom-end rtl", BottomEnd, geom.RTL, geom.Offset{X: 0, Y: 150}},
		{"center-end", CenterEnd, geom.LTR, geom.Offset{X: 100, Y: 75}},
		{"top-center rtl", TopCenter, geom.RTL, geom.Offset{X: 50, Y: 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.align.Align(size, space, tc.dir))
		})
	}
}

func TestAlignment_Parse(t *testing.T) {
	a, err := ParseAlignment("bottom-end")
	assert.NoError(t, err)
	assert.Equal(t, BottomEnd, a)
	assert.Equal(t, "bottomend", a.String())

	a, err = ParseAlignment("Top_Start")
	assert.NoError(t, err)
	assert.Equal(t, TopStart, a)

	_, err = ParseAlignment("middle")
	assert.Error(t, err)
	assert.Equal(t, "BiasAlignment(0.5, 0)", BiasAlignment{0.5, 0}.String())
}
