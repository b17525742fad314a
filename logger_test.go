package kmmage

import (
	"bytes"
	"context"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(l)
	assert.Same(t, l, Logger())

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestLoader_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewImageLoader(WithLogger(log))

	req := l.NewBuilder().Data(pngBytes(t, 2, 2, color.Black)).Build()
	_, ok := l.Execute(context.Background(), req).(*SuccessResult)
	require.True(t, ok)
	assert.Contains(t, buf.String(), "decoded image")
	assert.Contains(t, buf.String(), "format=png")

	buf.Reset()
	req = l.NewBuilder().Data([]byte("not an image")).Build()
	_, ok = l.Execute(context.Background(), req).(*ErrorResult)
	require.True(t, ok)
	assert.Contains(t, buf.String(), "request failed")
}

func TestLoader_LogsDiskCacheReadFailure(t *testing.T) {
	srv, _ := imageServer(t, pngBytes(t, 2, 2, color.White))
	url := srv.URL + "/a.png"
	dc := unreadableEntry(t, url)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	l := NewImageLoader(WithLogger(log), WithDiskCache(dc))

	res, ok := l.Execute(context.Background(), l.NewBuilder().Data(url).Build()).(*SuccessResult)
	require.True(t, ok)
	assert.Equal(t, SourceNetwork, res.DataSource)
	assert.Contains(t, buf.String(), "disk cache read failed")
}
