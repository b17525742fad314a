package kmmage

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/kmmage/kmmage/transform"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// ImageLoader executes image requests. It is safe for concurrent use.
type ImageLoader struct {
	memoryCache *MemoryCache
	diskCache   *DiskCache
	client      *http.Client
	defaults    DefaultRequestOptions
	log         *slog.Logger

	group singleflight.Group
}

// Option configures an ImageLoader.
type Option func(*ImageLoader)

// WithMemoryCache sets the memory cache. A nil cache disables memory caching.
func WithMemoryCache(c *MemoryCache) Option {
	return func(l *ImageLoader) {
		l.memoryCache = c
	}
}

// WithDiskCache sets the cache used for network responses.
func WithDiskCache(c *DiskCache) Option {
	return func(l *ImageLoader) {
		l.diskCache = c
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(l *ImageLoader) {
		l.client = c
	}
}

// WithDefaults sets the options applied to requests created by NewBuilder.
func WithDefaults(d DefaultRequestOptions) Option {
	return func(l *ImageLoader) {
		l.defaults = d
	}
}

// WithLogger overrides the package logger for this loader.
func WithLogger(log *slog.Logger) Option {
	return func(l *ImageLoader) {
		l.log = log
	}
}

// NewImageLoader creates a loader with a memory cache of
// DefaultMemoryCacheSize entries and no disk cache.
func NewImageLoader(opts ...Option) *ImageLoader {
	mc, _ := NewMemoryCache(DefaultMemoryCacheSize)
	l := &ImageLoader{
		memoryCache: mc,
		client:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewBuilder returns a request builder using the loader defaults.
func (l *ImageLoader) NewBuilder() *Builder {
	return NewBuilder().Defaults(l.defaults)
}

func (l *ImageLoader) MemoryCache() *MemoryCache { return l.memoryCache }
func (l *ImageLoader) DiskCache() *DiskCache     { return l.diskCache }

func (l *ImageLoader) logger() *slog.Logger {
	if l.log != nil {
		return l.log
	}
	return Logger()
}

// Execute runs req and blocks until it completes. The returned result is a
// *SuccessResult or an *ErrorResult.
func (l *ImageLoader) Execute(ctx context.Context, req *ImageRequest) Result {
	placeholder := req.Placeholder()
	if k := req.PlaceholderMemoryCacheKey(); k != nil && l.memoryCache != nil {
		if img, ok := l.memoryCache.Get(*k); ok {
			placeholder = img
		}
	}
	if t := req.Target(); t != nil {
		t.OnStart(placeholder)
	}
	if ls := req.Listener(); ls != nil {
		ls.OnStart(req)
	}

	res, err := l.execute(ctx, req)
	if err != nil {
		return l.fail(ctx, req, err)
	}

	l.logger().Debug("request succeeded", "data", describeData(req.Data()), "source", res.DataSource)
	if t := req.Target(); t != nil {
		t.OnSuccess(res.Img)
	}
	if ls := req.Listener(); ls != nil {
		ls.OnSuccess(req, res)
	}
	return res
}

// Disposable is the handle of an enqueued request.
type Disposable struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Enqueue runs req in a new goroutine.
func (l *ImageLoader) Enqueue(ctx context.Context, req *ImageRequest) *Disposable {
	ctx, cancel := context.WithCancel(ctx)
	d := &Disposable{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(d.done)
		defer cancel()
		d.result = l.Execute(ctx, req)
	}()
	return d
}

// Dispose cancels the request if it is still running.
func (d *Disposable) Dispose() { d.cancel() }

// Done is closed once the request completed or was cancelled.
func (d *Disposable) Done() <-chan struct{} { return d.done }

// IsDisposed reports whether the request is no longer running.
func (d *Disposable) IsDisposed() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the request is done and returns its result.
func (d *Disposable) Wait() Result {
	<-d.done
	return d.result
}

type loaded struct {
	img    image.Image
	source DataSource
}

func (l *ImageLoader) execute(ctx context.Context, req *ImageRequest) (*SuccessResult, error) {
	if _, ok := req.Data().(NullRequestData); ok {
		return nil, ErrNullRequestData
	}

	size, err := req.SizeResolver().Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not resolve the image size: %w", err)
	}

	res := &SuccessResult{
		Req:            req,
		MemoryCacheKey: l.memoryCacheKey(req, size),
		DiskCacheKey:   diskCacheKey(req),
	}
	key := res.MemoryCacheKey
	useMemory := key != nil && l.memoryCache != nil

	if useMemory && req.MemoryCachePolicy().ReadEnabled() {
		if img, ok := l.memoryCache.Get(*key); ok {
			l.logger().Debug("memory cache hit", "key", key.String())
			res.Img, res.DataSource = img, SourceMemoryCache
			return res, nil
		}
	}

	out, err := l.loadShared(ctx, req, size, key)
	if err != nil {
		return nil, err
	}
	if useMemory && req.MemoryCachePolicy().WriteEnabled() {
		l.memoryCache.Set(*key, out.img)
	}
	res.Img, res.DataSource = out.img, out.source
	return res, nil
}

// loadShared de-duplicates concurrent loads of the same memory cache key.
func (l *ImageLoader) loadShared(ctx context.Context, req *ImageRequest, size Size, key *Key) (*loaded, error) {
	if key == nil {
		return l.load(ctx, req, size)
	}

	ch := l.group.DoChan(flightKey(req, key), func() (any, error) {
		return l.load(ctx, req, size)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			// The load was started by a request that has since been cancelled.
			if r.Shared && isCancellation(r.Err) && ctx.Err() == nil {
				return l.load(ctx, req, size)
			}
			return nil, r.Err
		}
		return r.Val.(*loaded), nil
	}
}

// flightKey extends the memory cache key with the request headers, so requests
// fetching the same data with different credentials never share a load.
func flightKey(req *ImageRequest, key *Key) string {
	if len(req.headers) == 0 {
		return key.String()
	}
	var b strings.Builder
	b.WriteString(key.String())
	for _, name := range slices.Sorted(maps.Keys(req.headers)) {
		fmt.Fprintf(&b, "|%s=%s", name, strings.Join(req.headers[name], ","))
	}
	return "headers:" + hashKey(b.String())
}

func (l *ImageLoader) load(ctx context.Context, req *ImageRequest, size Size) (*loaded, error) {
	f, err := l.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	var img *image.NRGBA
	if f.img != nil {
		img = toNRGBA(f.img)
	} else {
		var format string
		if img, format, err = decode(f.data); err != nil {
			return nil, err
		}
		l.logger().Debug("decoded image", "format", format, "bounds", img.Bounds())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img = sample(img, size, req.Scale(), isExact(req))
	if img, err = transform.Apply(ctx, img, req.transformations...); err != nil {
		return nil, err
	}
	return &loaded{
		img:    req.BitmapConfig().convert(img, req.PremultipliedAlpha()),
		source: f.source,
	}, nil
}

func (l *ImageLoader) fail(ctx context.Context, req *ImageRequest, err error) *ErrorResult {
	res := &ErrorResult{Img: req.Error(), Req: req, Err: err}

	if ctx.Err() != nil && isCancellation(err) {
		l.logger().Debug("request cancelled", "data", describeData(req.Data()))
		if ls := req.Listener(); ls != nil {
			ls.OnCancel(req)
		}
		return res
	}

	l.logger().Warn("request failed", "data", describeData(req.Data()), "err", err)
	if t := req.Target(); t != nil {
		t.OnError(res.Img)
	}
	if ls := req.Listener(); ls != nil {
		ls.OnError(req, res)
	}
	return res
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isExact reports whether the image has to be scaled to the exact resolved
// size. Automatic precision is exact only for fixed sizes.
func isExact(req *ImageRequest) bool {
	switch req.Precision() {
	case PrecisionExact:
		return true
	case PrecisionAutomatic:
		_, fixed := req.SizeResolver().(FixedSize)
		return fixed
	}
	return false
}

// memoryCacheKey returns the explicit key of req, or one derived from the
// data, the resolved size, the transformations and the parameters.
// Data that cannot be identified, like readers, is not cached.
func (l *ImageLoader) memoryCacheKey(req *ImageRequest, size Size) *Key {
	if k := req.MemoryCacheKey(); k != nil {
		return k
	}
	base := dataKey(req.Data())
	if base == "" {
		return nil
	}

	extras := make(map[string]string)
	if !size.IsOriginal() {
		extras["kmmage#size"] = size.String()
		extras["kmmage#scale"] = fmt.Sprint(int(req.Scale()))
		if isExact(req) {
			extras["kmmage#exact"] = "true"
		}
	}
	if ts := req.transformations; len(ts) > 0 {
		extras["kmmage#transformations"] = strings.Join(transform.Keys(ts), ",")
	}
	if req.BitmapConfig() != ARGB8888 || !req.PremultipliedAlpha() {
		extras["kmmage#config"] = fmt.Sprintf("%d/%t", req.BitmapConfig(), req.PremultipliedAlpha())
	}
	for k, v := range req.Parameters().MemoryCacheKeys() {
		extras["param#"+k] = v
	}
	return &Key{Key: base, Extras: extras}
}

// diskCacheKey returns the key network responses of req are cached under.
func diskCacheKey(req *ImageRequest) string {
	if k := req.DiskCacheKey(); k != "" {
		return k
	}
	var u *url.URL
	switch d := req.Data().(type) {
	case *url.URL:
		u = d
	case string:
		u, _ = url.Parse(d)
	}
	if u != nil && isHTTP(u) {
		return u.String()
	}
	return ""
}
