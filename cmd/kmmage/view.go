package main

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/kmmage/kmmage/content"
	"github.com/kmmage/kmmage/gioimage"
	"github.com/kmmage/kmmage/termview"
)

// Preview shows the source in a Gio window. The window opens right away and
// displays the image once it is loaded. It must not run on the main goroutine.
func (op *Ops) Preview(ctx context.Context, bg color.NRGBA) error {
	data, err := op.source(op.Src)
	if err != nil {
		return err
	}

	im := gioimage.New(nil)
	im.Modifier = op.Modifier
	im.Modifier.Painter = nil
	im.Clip = true

	updates := make(chan content.Painter, 1)
	go func() {
		defer close(updates)

		img, err := op.load(ctx, data)
		if err != nil {
			log.Printf("could not load the image: %v", err)
			updates <- content.EmptyPainter{}
			return
		}
		updates <- content.NewImagePainter(img)
	}()

	return gioimage.Preview(gioimage.PreviewOptions{
		Title:      fmt.Sprintf("kmmage - %s", op.Src),
		Background: bg,
		Width:      op.Width,
		Height:     op.Height,
	}, im, updates)
}

// Terminal shows the source in the terminal until a quit key is pressed.
func (op *Ops) Terminal(ctx context.Context) error {
	data, err := op.source(op.Src)
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	m := op.Modifier
	m.Painter = nil
	v := termview.NewViewer(s, m)
	v.Background = op.Render.Background
	v.Filter = op.Render.Filter

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		img, err := op.load(ctx, data)
		if err != nil {
			errc <- err
			cancel()
			return
		}
		v.SetPainter(content.NewImagePainter(img))
	}()

	err = v.Run(ctx)
	select {
	case lerr := <-errc:
		return lerr
	default:
		return err
	}
}
