package interfaces

import (
	"context"
	"io"
	"net/http"
)

// HTTPClient defines the interface for making outbound fetches.
// This abstraction allows for easy mocking in tests and switching between
// different HTTP client implementations.
type HTTPClient interface {
	// Get performs an HTTP GET request to the specified URL.
	// Non-2xx statuses are returned as a Response, not as an error, so callers
	// can inspect rate-limit headers.
	Get(ctx context.Context, url string) (Response, error)
}

// Response defines the interface for HTTP responses.
type Response interface {
	// StatusCode returns the HTTP status code of the response.
	StatusCode() int

	// Body returns the response body as an io.ReadCloser.
	// The caller is responsible for closing the body when done.
	Body() io.ReadCloser

	// Header returns the value of the specified header.
	// Returns an empty string if the header is not present.
	// Header names are case-insensitive.
	Header(key string) string

	// Headers returns the full header multi-map
	Headers() http.Header

	// FinalURL is the URL after redirects
	FinalURL() string
}
