package content

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/kmmage/kmmage/geom"
	"github.com/stretchr/testify/assert"
)

type sizedPainter struct {
	size geom.Size
}

func (p sizedPainter) IntrinsicSize() geom.Size { return p.size }

func (p sizedPainter) Draw(ds DrawScope, size geom.Size, alpha float32, filter ColorFilter) {
	if size.IsEmpty() {
		return
	}
	ds.FillRect(color.Black, size, alpha)
}

// minChild behaves like an empty box: it takes the minimum size it is allowed.
type minChild struct {
	got geom.Constraints
}

func (c *minChild) Measure(cs geom.Constraints) geom.IntSize {
	c.got = cs
	return cs.Min()
}

type fixedIntrinsics struct {
	width, height int
	queried       []int
}

func (f *fixedIntrinsics) MinIntrinsicWidth(h int) int  { f.queried = append(f.queried, h); return f.width }
func (f *fixedIntrinsics) MaxIntrinsicWidth(h int) int  { f.queried = append(f.queried, h); return f.width }
func (f *fixedIntrinsics) MinIntrinsicHeight(w int) int { f.queried = append(f.queried, w); return f.height }
func (f *fixedIntrinsics) MaxIntrinsicHeight(w int) int { f.queried = append(f.queried, w); return f.height }

type drawOp struct {
	kind   string
	origin geom.Offset
	size   geom.Size
	alpha  float32
}

type recordingScope struct {
	size   geom.Size
	dir    geom.LayoutDirection
	origin geom.Offset
	ops    []drawOp
}

func (r *recordingScope) Size() geom.Size                       { return r.size }
func (r *recordingScope) LayoutDirection() geom.LayoutDirection { return r.dir }

func (r *recordingScope) Translate(dx, dy float32, fn func(DrawScope)) {
	prev := r.origin
	r.origin = geom.Offset{X: prev.X + int(dx), Y: prev.Y + int(dy)}
	fn(r)
	r.origin = prev
}

func (r *recordingScope) DrawImage(img image.Image, size geom.Size, alpha float32, _ ColorFilter) {
	r.ops = append(r.ops, drawOp{"image", r.origin, size, alpha})
}

func (r *recordingScope) FillRect(_ color.Color, size geom.Size, alpha float32) {
	r.ops = append(r.ops, drawOp{"rect", r.origin, size, alpha})
}

func (r *recordingScope) DrawContent() {
	r.ops = append(r.ops, drawOp{kind: "content", origin: r.origin})
}

func modifierFor(size geom.Size, scale ContentScale) Modifier {
	m := NewModifier(sizedPainter{size})
	m.ContentScale = scale
	return m
}

func TestModifier_ScaledSizeZeroDestination(t *testing.T) {
	for c := range contentScaleNames {
		for _, intrinsic := range []geom.Size{geom.Sz(100, 50), geom.Unspecified} {
			m := modifierFor(intrinsic, c)
			assert.Equal(t, geom.Zero, m.ScaledSize(geom.Sz(0, 50)))
			assert.Equal(t, geom.Zero, m.ScaledSize(geom.Sz(50, 0)))
		}
	}
}

func TestModifier_ScaledSizeUnspecifiedIntrinsic(t *testing.T) {
	for c := range contentScaleNames {
		m := modifierFor(geom.Unspecified, c)
		assert.Equal(t, geom.Sz(123, 45), m.ScaledSize(geom.Sz(123, 45)))
	}
	// A nil painter behaves as if it had no intrinsic size.
	assert.Equal(t, geom.Sz(10, 20), Modifier{}.ScaledSize(geom.Sz(10, 20)))
}

func TestModifier_ScaledSize(t *testing.T) {
	m := modifierFor(geom.Sz(100, 50), Fit)
	assert.Equal(t, geom.Sz(200, 100), m.ScaledSize(geom.Sz(200, 200)))

	m = modifierFor(geom.Sz(100, 50), Fill)
	assert.Equal(t, geom.Sz(200, 200), m.ScaledSize(geom.Sz(200, 200)))
}

func TestModifier_ScaledSizePartialIntrinsic(t *testing.T) {
	inf := float32(math.Inf(1))

	m := modifierFor(geom.Sz(inf, 50), Fit)
	assert.Equal(t, geom.Sz(200, 50), m.ScaledSize(geom.Sz(200, 200)))

	m = modifierFor(geom.Sz(80, inf), Crop)
	assert.Equal(t, geom.Sz(400, 1000), m.ScaledSize(geom.Sz(400, 200)))
}

func TestModifier_AdjustConstraints(t *testing.T) {
	testCases := []struct {
		name      string
		intrinsic geom.Size
		scale     ContentScale
		in        geom.Constraints
		want      geom.Constraints
	}{
		{
			name:      "fixed constraints are kept",
			intrinsic: geom.Sz(100, 50),
			in:        geom.Fixed(300, 300),
			want:      geom.Fixed(300, 300),
		},
		{
			name:      "fixed constraints are kept without intrinsic size",
			intrinsic: geom.Unspecified,
			in:        geom.Fixed(300, 300),
			want:      geom.Fixed(300, 300),
		},
		{
			name:      "unspecified intrinsic fills bounded space",
			intrinsic: geom.Unspecified,
			in:        geom.Loose(100, 200),
			want:      geom.Fixed(100, 200),
		},
		{
			name:      "unspecified intrinsic leaves unbounded space",
			intrinsic: geom.Unspecified,
			in:        geom.Unbounded(),
			want:      geom.Unbounded(),
		},
		{
			name:      "small intrinsic within loose bounds",
			intrinsic: geom.Sz(100, 50),
			in:        geom.Loose(300, 300),
			want:      geom.Constraints{MinWidth: 100, MaxWidth: 300, MinHeight: 50, MaxHeight: 300},
		},
		{
			name:      "wide intrinsic is fitted",
			intrinsic: geom.Sz(400, 100),
			in:        geom.Loose(300, 300),
			want:      geom.Constraints{MinWidth: 300, MaxWidth: 300, MinHeight: 75, MaxHeight: 300},
		},
		{
			name:      "fixed width uses the bounded maximum",
			intrinsic: geom.Sz(100, 50),
			in:        geom.Constraints{MinWidth: 200, MaxWidth: 200, MaxHeight: 500},
			want:      geom.Constraints{MinWidth: 200, MaxWidth: 200, MinHeight: 100, MaxHeight: 500},
		},
		{
			name:      "unbounded height",
			intrinsic: geom.Sz(600, 300),
			in:        geom.Constraints{MaxWidth: 300, MaxHeight: geom.Infinity},
			want:      geom.Constraints{MinWidth: 300, MaxWidth: 300, MinHeight: 150, MaxHeight: geom.Infinity},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := modifierFor(tc.intrinsic, tc.scale)
			got := m.AdjustConstraints(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, m.AdjustConstraints(got), "adjusting twice must be a no-op")
		})
	}
}

func TestModifier_AdjustConstraintsIdempotent(t *testing.T) {
	testCases := []struct {
		intrinsic geom.Size
		in        geom.Constraints
	}{
		{geom.Sz(200, 50), geom.Loose(100, 300)},
		{geom.Sz(400, 100), geom.Loose(300, 300)},
		{geom.Sz(100, 50), geom.Loose(300, 300)},
		{geom.Sz(600, 300), geom.Constraints{MaxWidth: 300, MaxHeight: geom.Infinity}},
		{geom.Unspecified, geom.Loose(100, 200)},
	}

	for _, scale := range []ContentScale{Fit, Inside, None, FillWidth} {
		for _, tc := range testCases {
			m := modifierFor(tc.intrinsic, scale)
			once := m.AdjustConstraints(tc.in)
			assert.Equal(t, once, m.AdjustConstraints(once), "%v %v %+v", scale, tc.intrinsic, tc.in)
		}
	}
}

// Filling scales are measured against the bounded maximum once an axis is
// fixed, so a second pass can raise the minimum on the other axis.
func TestModifier_AdjustConstraintsSecondPass(t *testing.T) {
	in := geom.Loose(100, 300)
	once := geom.Constraints{MinWidth: 100, MaxWidth: 100, MinHeight: 50, MaxHeight: 300}
	twice := geom.Fixed(100, 300)

	for _, scale := range []ContentScale{Crop, Fill, FillHeight} {
		t.Run(scale.String(), func(t *testing.T) {
			m := modifierFor(geom.Sz(200, 50), scale)
			got := m.AdjustConstraints(in)
			assert.Equal(t, once, got)
			got = m.AdjustConstraints(got)
			assert.Equal(t, twice, got)
			assert.Equal(t, twice, m.AdjustConstraints(got))
		})
	}
}

func TestModifier_Measure(t *testing.T) {
	m := modifierFor(geom.Sz(100, 50), Fit)
	child := &minChild{}

	res := m.Measure(child, geom.Loose(300, 300))
	assert.Equal(t, geom.IntSize{Width: 100, Height: 50}, res.Size)
	assert.Equal(t, geom.Offset{}, res.Position)
	assert.Equal(t, res.Constraints, child.got)
}

func TestModifier_IntrinsicWidth(t *testing.T) {
	child := &fixedIntrinsics{width: 10, height: 7}

	m := modifierFor(geom.Unspecified, Fit)
	assert.Equal(t, 10, m.MinIntrinsicWidth(child, 200))
	assert.Equal(t, []int{200}, child.queried)

	m = modifierFor(geom.Sz(100, 50), Fit)
	assert.Equal(t, 10, m.MaxIntrinsicWidth(child, 200))

	m = modifierFor(geom.Sz(100, 50), Crop)
	assert.Equal(t, 400, m.MinIntrinsicWidth(child, 200))
}

func TestModifier_IntrinsicHeight(t *testing.T) {
	child := &fixedIntrinsics{width: 10, height: 7}

	m := modifierFor(geom.Unspecified, Fit)
	assert.Equal(t, 7, m.MinIntrinsicHeight(child, 40))
	assert.Equal(t, 7, m.MaxIntrinsicHeight(child, 40))

	m = modifierFor(geom.Sz(100, 50), Fill)
	assert.Equal(t, 7, m.MaxIntrinsicHeight(child, 40))

	m = modifierFor(geom.Sz(100, 50), Crop)
	assert.Equal(t, 20, m.MinIntrinsicHeight(child, 40))
}

func TestModifier_Draw(t *testing.T) {
	m := modifierFor(geom.Sz(100, 50), Fit)
	m.Alpha = 0.5
	scope := &recordingScope{size: geom.Sz(200, 200)}

	m.Draw(scope)

	assert.Equal(t, []drawOp{
		{kind: "rect", origin: geom.Offset{X: 0, Y: 50}, size: geom.Sz(200, 100), alpha: 0.5},
		{kind: "content", origin: geom.Offset{}},
	}, scope.ops)
}

func TestModifier_DrawRTL(t *testing.T) {
	m := modifierFor(geom.Sz(100, 50), None)
	m.Alignment = TopStart
	scope := &recordingScope{size: geom.Sz(200, 200), dir: geom.RTL}

	m.Draw(scope)

	assert.Len(t, scope.ops, 2)
	assert.Equal(t, geom.Offset{X: 100, Y: 0}, scope.ops[0].origin)
	assert.Equal(t, geom.Sz(100, 50), scope.ops[0].size)
}

func TestModifier_DrawImagePainter(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	p := NewImagePainter(img)
	assert.Equal(t, geom.Sz(40, 20), p.IntrinsicSize())

	m := NewModifier(p)
	m.ContentScale = Crop
	scope := &recordingScope{size: geom.Sz(100, 100)}
	m.Draw(scope)

	assert.Equal(t, "image", scope.ops[0].kind)
	assert.Equal(t, geom.Sz(200, 100), scope.ops[0].size)
	assert.Equal(t, geom.Offset{X: -50, Y: 0}, scope.ops[0].origin)
}

func TestModifier_DrawEmptyArea(t *testing.T) {
	m := modifierFor(geom.Sz(100, 50), Fit)
	scope := &recordingScope{size: geom.Sz(0, 100)}
	m.Draw(scope)

	// Only the decorated content is drawn.
	assert.Equal(t, []drawOp{{kind: "content"}}, scope.ops)
}
