package client

import (
	"fmt"
	"net/http"
)

// ErrHTTPStatus is returned when a remote source answers with a non-2xx status.
type ErrHTTPStatus struct {
	URL        string
	StatusCode int
}

// Error implements the error interface
func (e *ErrHTTPStatus) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is allows for error checking with errors.Is()
func (e *ErrHTTPStatus) Is(target error) bool {
	_, ok := target.(*ErrHTTPStatus)
	return ok
}

// Temporary reports whether retrying the request may succeed.
func (e *ErrHTTPStatus) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout || e.StatusCode >= 500
}

// NewHTTPStatusError creates a new ErrHTTPStatus
func NewHTTPStatusError(url string, statusCode int) *ErrHTTPStatus {
	return &ErrHTTPStatus{URL: url, StatusCode: statusCode}
}
