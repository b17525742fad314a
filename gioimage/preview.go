package gioimage

import (
	"image/color"
	"math"
	"sync"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/kmmage/kmmage/content"
)

const (
	maxScreenX = 1366
	maxScreenY = 768
)

// PreviewOptions configure the preview window.
type PreviewOptions struct {
	Title      string
	Background color.NRGBA
	// Width and Height size the window. Zero uses the intrinsic size of the painter.
	Width, Height int
}

// WindowSize returns the window size showing content of w x h, shrunk to
// fit the screen while keeping the aspect ratio.
func WindowSize(w, h int) (float64, float64) {
	fw, fh := float64(w), float64(h)
	if w > maxScreenX || h > maxScreenY {
		r := math.Min(maxScreenX/fw, maxScreenY/fh)
		fw, fh = fw*r, fh*r
	}
	return fw, fh
}

// Preview opens a window showing im until it is closed or ESC is pressed.
// Painters received from updates replace the displayed one, e.g. when a
// placeholder is followed by the loaded image. Preview must not run on the
// main goroutine, which has to call app.Main.
func Preview(opts PreviewOptions, im *Image, updates <-chan content.Painter) error {
	var mu sync.Mutex

	w, h := opts.Width, opts.Height
	if (w == 0 || h == 0) && im.Painter != nil {
		if s := im.Painter.IntrinsicSize(); s.IsSpecified() {
			r := s.Round()
			w, h = r.Width, r.Height
		}
	}
	if w <= 0 || h <= 0 {
		w, h = maxScreenX/2, maxScreenY/2
	}
	ww, wh := WindowSize(w, h)

	win := new(app.Window)
	win.Option(
		app.Title(opts.Title),
		app.Size(unit.Dp(ww), unit.Dp(wh)),
	)

	if updates != nil {
		go func() {
			for p := range updates {
				mu.Lock()
				im.Painter = p
				mu.Unlock()
				win.Invalidate()
			}
		}()
	}

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			for {
				ev, ok := gtx.Event(key.Filter{Name: key.NameEscape})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					win.Perform(system.ActionClose)
				}
			}

			paint.Fill(gtx.Ops, opts.Background)

			mu.Lock()
			if im.Painter == nil {
				layout.Center.Layout(gtx, material.Body1(th, "Loading...").Layout)
			} else {
				gtx.Constraints.Min = gtx.Constraints.Max
				im.Layout(gtx, nil)
			}
			mu.Unlock()

			e.Frame(gtx.Ops)
		}
	}
}
