package network

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBodyBytes = 1024

// HTTPError is returned for a non-success response once the transport has given
// up retrying.
type HTTPError struct {
	Method      string
	URL         string
	StatusCode  int
	ContentType string
	// Body holds at most the first 1024 bytes of the response body.
	Body string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d (%s): %s", e.Method, e.URL, e.StatusCode, e.ContentType, e.Body)
}

// IsTransient reports whether err is worth retrying at a higher level: any
// non-HTTP failure, 429, and 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return true
	}
	return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
}

func unwrapError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}

	httpErr := &HTTPError{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}
	if resp.Request != nil {
		httpErr.Method = resp.Request.Method
		if resp.Request.URL != nil {
			httpErr.URL = resp.Request.URL.String()
		}
	}
	return httpErr
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
