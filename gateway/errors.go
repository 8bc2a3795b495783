package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError is returned when the request never produced an HTTP response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is returned for a non-2xx response
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// ShapeError is returned for a 2xx response whose body is missing required fields
type ShapeError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: invalid response: %s", e.Op, e.Reason)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an HTTP 404
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsUnavailable reports whether err means the remote service could not serve the
// request at all (network failure or 5xx)
func IsUnavailable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode >= http.StatusInternalServerError
}
