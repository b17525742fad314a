package kmmage

import "github.com/pkg/errors"

var (
	// ErrNullRequestData is returned for requests built without data.
	ErrNullRequestData = errors.New("kmmage: request has no data")
	// ErrNetworkDisabled is returned when the data has to be fetched from the
	// network but the network cache policy forbids reads.
	ErrNetworkDisabled = errors.New("kmmage: network reads are disabled")
	// ErrNotImage is returned when the fetched content cannot be decoded as an image.
	ErrNotImage = errors.New("kmmage: content is not a supported image")
	// ErrUnsupportedData is returned when no fetcher handles the request data type.
	ErrUnsupportedData = errors.New("kmmage: unsupported request data")
	// ErrHTTPStatus is wrapped with the status of a failed HTTP response.
	ErrHTTPStatus = errors.New("kmmage: unexpected http status")
)
