package termview

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gdamore/tcell/v2"
	"github.com/kmmage/kmmage/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

// stripes returns a 4x4 image with red upper and blue lower half.
func stripes() content.Painter {
	img := imaging.New(4, 4, color.NRGBA{R: 255, A: 255})
	img = imaging.Paste(img, imaging.New(4, 2, color.NRGBA{B: 255, A: 255}), image.Pt(0, 2))
	return content.NewImagePainter(img)
}

func TestViewer_RenderHalfBlocks(t *testing.T) {
	s := newScreen(t, 4, 2)
	m := content.NewModifier(stripes())
	m.ContentScale = content.Fill

	v := NewViewer(s, m)
	v.Filter = &imaging.NearestNeighbor
	require.NoError(t, v.Render())

	cells, w, h := s.GetContents()
	require.Equal(t, 4, w)
	require.Equal(t, 2, h)

	top := cells[0]
	assert.Equal(t, []rune{halfBlock}, top.Runes)
	fg, bg, _ := top.Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), bg)

	bottom := cells[w]
	fg, bg, _ = bottom.Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
}

func TestViewer_TransparentCellsUseDefaultColors(t *testing.T) {
	s := newScreen(t, 8, 2)
	m := content.NewModifier(content.NewImagePainter(imaging.New(2, 4, color.NRGBA{R: 255, A: 255})))
	m.Alignment = content.CenterStart

	require.NoError(t, NewViewer(s, m).Render())

	cells, w, _ := s.GetContents()
	fg, bg, _ := cells[w-1].Style.Decompose()
	assert.Equal(t, tcell.ColorReset, fg)
	assert.Equal(t, tcell.ColorReset, bg)
}

func TestViewer_RunQuits(t *testing.T) {
	for _, key := range []struct {
		k tcell.Key
		r rune
	}{
		{tcell.KeyRune, 'q'},
		{tcell.KeyEscape, 0},
	} {
		s := newScreen(t, 4, 2)
		v := NewViewer(s, content.NewModifier(stripes()))

		s.InjectKey(key.k, key.r, tcell.ModNone)
		assert.NoError(t, v.Run(context.Background()))
	}
}

func TestViewer_RunStopsOnCancel(t *testing.T) {
	s := newScreen(t, 4, 2)
	v := NewViewer(s, content.NewModifier(stripes()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, v.Run(ctx), context.DeadlineExceeded)
}

func TestViewer_SetPainterRepaints(t *testing.T) {
	s := newScreen(t, 2, 1)
	m := content.NewModifier(content.ColorPainter{Color: color.NRGBA{R: 255, A: 255}})
	v := NewViewer(s, m)

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	v.SetPainter(content.ColorPainter{Color: color.NRGBA{G: 255, A: 255}})
	assert.Eventually(t, func() bool {
		cells, _, _ := s.GetContents()
		fg, _, _ := cells[0].Style.Decompose()
		return fg == tcell.NewRGBColor(0, 255, 0)
	}, time.Second, 5*time.Millisecond)

	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	assert.NoError(t, <-done)
}
