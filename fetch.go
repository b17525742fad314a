package kmmage

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/kmmage/kmmage/utils"
)

// fetched is the output of a fetcher: either encoded bytes or a ready image.
type fetched struct {
	data   []byte
	img    image.Image
	source DataSource
}

// dataKey returns a stable key for data, or "" when the data cannot be
// identified across requests.
func dataKey(data any) string {
	switch d := data.(type) {
	case string:
		return d
	case *url.URL:
		return d.String()
	case []byte:
		return "bytes:" + hashKey(string(d))
	}
	return ""
}

func describeData(data any) string {
	switch d := data.(type) {
	case string:
		return d
	case *url.URL:
		return d.String()
	case []byte:
		return fmt.Sprintf("[%d bytes]", len(d))
	case image.Image:
		return fmt.Sprintf("image(%v)", d.Bounds())
	}
	return fmt.Sprintf("%T", data)
}

func isHTTP(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// fetch resolves the request data to bytes or an image.
func (l *ImageLoader) fetch(ctx context.Context, req *ImageRequest) (*fetched, error) {
	switch d := req.Data().(type) {
	case image.Image:
		return &fetched{img: d, source: SourceMemory}, nil
	case []byte:
		return &fetched{data: d, source: SourceMemory}, nil
	case io.Reader:
		data, err := io.ReadAll(d)
		if err != nil {
			return nil, fmt.Errorf("unable to read the image data: %w", err)
		}
		return &fetched{data: data, source: SourceMemory}, nil
	case *url.URL:
		return l.fetchURL(ctx, req, d)
	case string:
		if utils.IsValidUrl(d) || strings.HasPrefix(d, "file://") {
			u, err := url.Parse(d)
			if err != nil {
				return nil, fmt.Errorf("invalid image url %q: %w", d, err)
			}
			return l.fetchURL(ctx, req, u)
		}
		return fetchFile(d)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedData, req.Data())
}

func (l *ImageLoader) fetchURL(ctx context.Context, req *ImageRequest, u *url.URL) (*fetched, error) {
	switch {
	case u.Scheme == "file":
		return fetchFile(u.Path)
	case isHTTP(u):
		return l.fetchHTTP(ctx, req, u)
	}
	return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedData, u.Scheme)
}

func fetchFile(path string) (*fetched, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	return &fetched{data: data, source: SourceDisk}, nil
}

func (l *ImageLoader) fetchHTTP(ctx context.Context, req *ImageRequest, u *url.URL) (*fetched, error) {
	diskKey := diskCacheKey(req)
	if diskKey == "" {
		diskKey = u.String()
	}

	if l.diskCache != nil && req.DiskCachePolicy().ReadEnabled() {
		data, ok, err := l.diskCache.Load(diskKey)
		switch {
		case err != nil:
			l.logger().Warn("disk cache read failed", "url", u.String(), "err", err)
		case ok:
			l.logger().Debug("disk cache hit", "url", u.String())
			return &fetched{data: data, source: SourceDisk}, nil
		}
	}
	if !req.NetworkCachePolicy().ReadEnabled() {
		return nil, fmt.Errorf("%w: %s", ErrNetworkDisabled, u)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for name, values := range req.headers {
		for _, v := range values {
			hreq.Header.Add(name, v)
		}
	}

	res, err := l.client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI: %s: %w", u, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrHTTPStatus, res.Status, u)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	if l.diskCache != nil && req.DiskCachePolicy().WriteEnabled() {
		if err := l.diskCache.Put(diskKey, data); err != nil {
			l.logger().Warn("disk cache write failed", "url", u.String(), "err", err)
		}
	}
	return &fetched{data: data, source: SourceNetwork}, nil
}
