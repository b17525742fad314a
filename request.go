package kmmage

import (
	"fmt"
	"image"
	"net/http"
	"reflect"

	"github.com/kmmage/kmmage/transform"
)

// NullRequestData is the data of a request built without any.
type NullRequestData struct{}

func (NullRequestData) String() string { return "kmmage.NullRequestData" }

// ImageRequest is an immutable description of an image to load.
// Use a Builder to create one.
type ImageRequest struct {
	data                      any
	precision                 Precision
	bitmapConfig              BitmapConfig
	premultipliedAlpha        bool
	sizeResolver              SizeResolver
	scale                     Scale
	memoryCacheKey            *Key
	diskCacheKey              string
	placeholderMemoryCacheKey *Key
	placeholder               image.Image
	errorImage                image.Image
	listener                  Listener
	target                    Target
	transformations           []transform.Transformation
	memoryCachePolicy         CachePolicy
	diskCachePolicy           CachePolicy
	networkCachePolicy        CachePolicy
	headers                   http.Header
	tags                      Tags
	parameters                Parameters
}

// Data is the source of the image: a URL or file path string, []byte,
// io.Reader, image.Image or NullRequestData.
func (r *ImageRequest) Data() any                       { return r.data }
func (r *ImageRequest) Precision() Precision            { return r.precision }
func (r *ImageRequest) BitmapConfig() BitmapConfig      { return r.bitmapConfig }
func (r *ImageRequest) PremultipliedAlpha() bool        { return r.premultipliedAlpha }
func (r *ImageRequest) SizeResolver() SizeResolver      { return r.sizeResolver }
func (r *ImageRequest) Scale() Scale                    { return r.scale }
func (r *ImageRequest) MemoryCacheKey() *Key            { return r.memoryCacheKey.clone() }
func (r *ImageRequest) DiskCacheKey() string            { return r.diskCacheKey }
func (r *ImageRequest) PlaceholderMemoryCacheKey() *Key { return r.placeholderMemoryCacheKey.clone() }
func (r *ImageRequest) Placeholder() image.Image        { return r.placeholder }
func (r *ImageRequest) Error() image.Image              { return r.errorImage }
func (r *ImageRequest) Listener() Listener              { return r.listener }
func (r *ImageRequest) Target() Target                  { return r.target }
func (r *ImageRequest) MemoryCachePolicy() CachePolicy  { return r.memoryCachePolicy }
func (r *ImageRequest) DiskCachePolicy() CachePolicy    { return r.diskCachePolicy }
func (r *ImageRequest) NetworkCachePolicy() CachePolicy { return r.networkCachePolicy }

// Transformations returns a copy of the request transformations.
func (r *ImageRequest) Transformations() []transform.Transformation {
	return append([]transform.Transformation(nil), r.transformations...)
}

// Headers returns a copy of the network headers.
func (r *ImageRequest) Headers() http.Header { return r.headers.Clone() }

// Tags returns a copy of the request tags.
func (r *ImageRequest) Tags() Tags { return r.tags.clone() }

func (r *ImageRequest) Parameters() Parameters { return r.parameters }

func (r *ImageRequest) String() string {
	return fmt.Sprintf("ImageRequest(data=%v, size=%T, scale=%d, precision=%d)",
		describeData(r.data), r.sizeResolver, r.scale, r.precision)
}

// NewBuilder returns a builder initialised with every value of r.
// Headers, tags and parameters are copied, so the builder can be changed
// without affecting r.
func (r *ImageRequest) NewBuilder() *Builder {
	b := &Builder{
		data:                      r.data,
		precision:                 ptr(r.precision),
		bitmapConfig:              ptr(r.bitmapConfig),
		premultipliedAlpha:        r.premultipliedAlpha,
		sizeResolver:              r.sizeResolver,
		scale:                     ptr(r.scale),
		memoryCacheKey:            r.memoryCacheKey.clone(),
		diskCacheKey:              r.diskCacheKey,
		placeholderMemoryCacheKey: r.placeholderMemoryCacheKey.clone(),
		placeholder:               r.placeholder,
		errorImage:                r.errorImage,
		listener:                  r.listener,
		target:                    r.target,
		transformations:           r.Transformations(),
		memoryCachePolicy:         ptr(r.memoryCachePolicy),
		diskCachePolicy:           ptr(r.diskCachePolicy),
		networkCachePolicy:        ptr(r.networkCachePolicy),
		headers:                   r.headers.Clone(),
		tags:                      r.tags.clone(),
		parameters:                r.parameters,
	}
	return b
}

// Builder assembles an ImageRequest. The zero value is not usable, call NewBuilder.
type Builder struct {
	defaults DefaultRequestOptions

	data                      any
	precision                 *Precision
	bitmapConfig              *BitmapConfig
	premultipliedAlpha        bool
	sizeResolver              SizeResolver
	scale                     *Scale
	memoryCacheKey            *Key
	diskCacheKey              string
	placeholderMemoryCacheKey *Key
	placeholder               image.Image
	errorImage                image.Image
	listener                  Listener
	target                    Target
	transformations           []transform.Transformation
	memoryCachePolicy         *CachePolicy
	diskCachePolicy           *CachePolicy
	networkCachePolicy        *CachePolicy
	headers                   http.Header
	tags                      Tags
	parameters                Parameters
}

// NewBuilder returns an empty request builder.
func NewBuilder() *Builder {
	return &Builder{premultipliedAlpha: true}
}

// Defaults sets the options used for the values left unset.
func (b *Builder) Defaults(d DefaultRequestOptions) *Builder {
	b.defaults = d
	return b
}

// Data sets the data to load. Supported types are string (http(s) URLs,
// file:// URLs and paths), *url.URL, []byte, io.Reader and image.Image.
func (b *Builder) Data(data any) *Builder {
	b.data = data
	return b
}

func (b *Builder) Precision(p Precision) *Builder {
	b.precision = &p
	return b
}

func (b *Builder) BitmapConfig(c BitmapConfig) *Builder {
	b.bitmapConfig = &c
	return b
}

func (b *Builder) PremultipliedAlpha(enabled bool) *Builder {
	b.premultipliedAlpha = enabled
	return b
}

func (b *Builder) SizeResolver(r SizeResolver) *Builder {
	b.sizeResolver = r
	return b
}

// Size sets a fixed target size in pixels.
func (b *Builder) Size(width, height int) *Builder {
	return b.SizeResolver(FixedSize{Dimension(width), Dimension(height)})
}

func (b *Builder) Scale(s Scale) *Builder {
	b.scale = &s
	return b
}

// MemoryCacheKey sets an explicit memory cache key. An empty key clears it.
func (b *Builder) MemoryCacheKey(key string) *Builder {
	b.memoryCacheKey = newKey(key)
	return b
}

func (b *Builder) PlaceholderMemoryCacheKey(key string) *Builder {
	b.placeholderMemoryCacheKey = newKey(key)
	return b
}

func (b *Builder) DiskCacheKey(key string) *Builder {
	b.diskCacheKey = key
	return b
}

func (b *Builder) Placeholder(img image.Image) *Builder {
	b.placeholder = img
	return b
}

func (b *Builder) Error(img image.Image) *Builder {
	b.errorImage = img
	return b
}

func (b *Builder) Listener(l Listener) *Builder {
	b.listener = l
	return b
}

// ListenerFuncs sets a listener made of the given callbacks.
func (b *Builder) ListenerFuncs(l ListenerFuncs) *Builder {
	return b.Listener(l)
}

func (b *Builder) Target(t Target) *Builder {
	b.target = t
	return b
}

// TargetFuncs sets a target made of the given callbacks.
func (b *Builder) TargetFuncs(t TargetFuncs) *Builder {
	return b.Target(t)
}

func (b *Builder) Transformations(ts ...transform.Transformation) *Builder {
	b.transformations = append([]transform.Transformation(nil), ts...)
	return b
}

func (b *Builder) MemoryCachePolicy(p CachePolicy) *Builder {
	b.memoryCachePolicy = &p
	return b
}

func (b *Builder) DiskCachePolicy(p CachePolicy) *Builder {
	b.diskCachePolicy = &p
	return b
}

// NetworkCachePolicy enables or disables reading from the network.
// Disabling writes has no effect.
func (b *Builder) NetworkCachePolicy(p CachePolicy) *Builder {
	b.networkCachePolicy = &p
	return b
}

// Headers replaces the network headers with a copy of h.
func (b *Builder) Headers(h http.Header) *Builder {
	b.headers = h.Clone()
	return b
}

// AddHeader adds a header value for network requests.
func (b *Builder) AddHeader(name, value string) *Builder {
	if b.headers == nil {
		b.headers = make(http.Header)
	}
	b.headers.Add(name, value)
	return b
}

// SetHeader replaces the values of a header.
func (b *Builder) SetHeader(name, value string) *Builder {
	if b.headers == nil {
		b.headers = make(http.Header)
	}
	b.headers.Set(name, value)
	return b
}

func (b *Builder) RemoveHeader(name string) *Builder {
	b.headers.Del(name)
	return b
}

// Tag attaches tag keyed by its dynamic type. A nil tag is ignored; use
// RemoveTag to drop one.
func (b *Builder) Tag(tag any) *Builder {
	if tag == nil {
		return b
	}
	if b.tags == nil {
		b.tags = make(Tags)
	}
	b.tags[reflect.TypeOf(tag)] = tag
	return b
}

// RemoveTag drops the tag stored under the dynamic type of sample.
func (b *Builder) RemoveTag(sample any) *Builder {
	delete(b.tags, reflect.TypeOf(sample))
	return b
}

// Tags replaces all tags with a copy of t.
func (b *Builder) Tags(t Tags) *Builder {
	b.tags = t.clone()
	return b
}

// SetParameter sets a parameter. A non-empty cacheKey makes it part of the
// memory cache key.
func (b *Builder) SetParameter(key string, value any, cacheKey string) *Builder {
	b.parameters = b.parameters.set(Parameter{Key: key, Value: value, MemoryCacheKey: cacheKey})
	return b
}

func (b *Builder) RemoveParameter(key string) *Builder {
	b.parameters = b.parameters.remove(key)
	return b
}

// Build returns the request. The builder can keep being used afterwards.
func (b *Builder) Build() *ImageRequest {
	r := &ImageRequest{
		data:                      b.data,
		precision:                 orDefault(b.precision, b.defaults.Precision),
		bitmapConfig:              orDefault(b.bitmapConfig, b.defaults.BitmapConfig),
		premultipliedAlpha:        b.premultipliedAlpha,
		sizeResolver:              b.sizeResolver,
		scale:                     orDefault(b.scale, ScaleFit),
		memoryCacheKey:            b.memoryCacheKey.clone(),
		diskCacheKey:              b.diskCacheKey,
		placeholderMemoryCacheKey: b.placeholderMemoryCacheKey.clone(),
		placeholder:               b.placeholder,
		errorImage:                b.errorImage,
		listener:                  b.listener,
		target:                    b.target,
		transformations:           append([]transform.Transformation(nil), b.transformations...),
		memoryCachePolicy:         orDefault(b.memoryCachePolicy, b.defaults.MemoryCachePolicy),
		diskCachePolicy:           orDefault(b.diskCachePolicy, b.defaults.DiskCachePolicy),
		networkCachePolicy:        orDefault(b.networkCachePolicy, b.defaults.NetworkCachePolicy),
		headers:                   b.headers.Clone(),
		tags:                      b.tags.clone(),
		parameters:                b.parameters,
	}
	if r.data == nil {
		r.data = NullRequestData{}
	}
	if r.sizeResolver == nil {
		r.sizeResolver = FixedSize(OriginalSize)
	}
	if r.placeholder == nil {
		r.placeholder = b.defaults.Placeholder
	}
	if r.errorImage == nil {
		r.errorImage = b.defaults.Error
	}
	if r.headers == nil {
		r.headers = make(http.Header)
	}
	return r
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func ptr[T any](v T) *T { return &v }
