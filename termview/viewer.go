// Package termview shows painters in a terminal. Every cell holds two
// vertically stacked pixels drawn with an upper half block.
package termview

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gdamore/tcell/v2"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/geom"
	"github.com/kmmage/kmmage/raster"
)

const halfBlock = '▀'

// repaint is posted to the event loop when the painter changes.
type repaint struct{}

// Viewer renders a modifier into a tcell screen.
type Viewer struct {
	Background color.Color
	Filter     *imaging.ResampleFilter

	screen tcell.Screen
	mu     sync.Mutex
	m      content.Modifier
}

// NewViewer returns a viewer drawing m into an initialised screen.
func NewViewer(s tcell.Screen, m content.Modifier) *Viewer {
	return &Viewer{screen: s, m: m}
}

// SetPainter replaces the displayed painter and schedules a repaint.
func (v *Viewer) SetPainter(p content.Painter) {
	v.mu.Lock()
	v.m.Painter = p
	v.mu.Unlock()
	v.screen.PostEvent(tcell.NewEventInterrupt(repaint{}))
}

// Render draws the modifier over the whole screen.
func (v *Viewer) Render() error {
	w, h := v.screen.Size()
	if w <= 0 || h <= 0 {
		return nil
	}

	v.mu.Lock()
	m := v.m
	v.mu.Unlock()

	canvas, err := raster.Render(m, geom.Fixed(w, h*2), raster.Options{
		Background: v.Background,
		Filter:     v.Filter,
	})
	if err != nil {
		return fmt.Errorf("could not render the image: %w", err)
	}

	img := canvas.Image()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			style := tcell.StyleDefault.
				Foreground(cellColor(img.NRGBAAt(x, 2*y))).
				Background(cellColor(img.NRGBAAt(x, 2*y+1)))
			v.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	v.screen.Show()
	return nil
}

// Run renders the viewer and redraws it on resize until ESC, q or Ctrl+C is
// pressed or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	if err := v.Render(); err != nil {
		return err
	}
	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
			if err := v.Render(); err != nil {
				return err
			}
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return nil
			}
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := ev.Data().(repaint); ok {
				if err := v.Render(); err != nil {
					return err
				}
			}
		}
	}
}

func cellColor(c color.NRGBA) tcell.Color {
	if c.A == 0 {
		return tcell.ColorReset
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
