// ABOUTME: Standard HTTP client implementation with retry logic and timeout support
// ABOUTME: Retries transient gateway failures but hands rate-limit responses back untouched

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"digests-ingest/core/interfaces"
)

const (
	maxRetries       = 3
	defaultUserAgent = "digests-ingest/1.0"
	acceptFeeds      = "application/rss+xml, application/atom+xml, application/feed+json, application/json, text/x-opml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"
)

// StandardHTTPClient implements the HTTPClient interface using standard library
type StandardHTTPClient struct {
	client    *http.Client
	userAgent string
	backoff   time.Duration
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration) *StandardHTTPClient {
	return &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		backoff:   100 * time.Millisecond,
	}
}

// WithUserAgent sets the User-Agent sent with every request
func (c *StandardHTTPClient) WithUserAgent(ua string) *StandardHTTPClient {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// Get performs an HTTP GET request.
// 500, 502 and 504 are retried with exponential backoff. 429 and 503 are
// returned on the first attempt so their Retry-After headers reach the caller.
func (c *StandardHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptFeeds)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 100ms, 200ms
			backoff := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err = c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			break
		}

		if attempt == maxRetries-1 {
			break
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
		resp = nil
	}

	if resp == nil {
		return nil, lastErr
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
		finalURL:   finalURL,
	}, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
	finalURL   string
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}

// Headers returns all response headers
func (r *httpResponse) Headers() http.Header {
	return r.headers
}

// FinalURL returns the URL the response was served from after redirects
func (r *httpResponse) FinalURL() string {
	return r.finalURL
}
