package kmmage

import (
	"fmt"
	"image"
)

// DataSource tells where a loaded image came from.
type DataSource int

const (
	// SourceMemoryCache is an image served from the memory cache.
	SourceMemoryCache DataSource = iota
	// SourceMemory is in-memory data: bytes, readers and images.
	SourceMemory
	// SourceDisk is a local file or the disk cache.
	SourceDisk
	// SourceNetwork is data fetched over the network.
	SourceNetwork
)

var dataSourceNames = map[DataSource]string{
	SourceMemoryCache: "memory-cache",
	SourceMemory:      "memory",
	SourceDisk:        "disk",
	SourceNetwork:     "network",
}

func (d DataSource) String() string {
	if s, ok := dataSourceNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DataSource(%d)", int(d))
}

// Result is either a *SuccessResult or an *ErrorResult.
type Result interface {
	// Image is the loaded image, or the error image of a failed request.
	Image() image.Image
	Request() *ImageRequest
}

// SuccessResult is the result of a completed request.
type SuccessResult struct {
	Img            image.Image
	Req            *ImageRequest
	DataSource     DataSource
	MemoryCacheKey *Key
	DiskCacheKey   string
}

func (r *SuccessResult) Image() image.Image     { return r.Img }
func (r *SuccessResult) Request() *ImageRequest { return r.Req }

// ErrorResult is the result of a failed or cancelled request.
type ErrorResult struct {
	Img image.Image
	Req *ImageRequest
	Err error
}

func (r *ErrorResult) Image() image.Image     { return r.Img }
func (r *ErrorResult) Request() *ImageRequest { return r.Req }
func (r *ErrorResult) Error() string          { return r.Err.Error() }
func (r *ErrorResult) Unwrap() error          { return r.Err }
