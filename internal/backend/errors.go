package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("recognition backend unavailable")
	ErrInvalidResponse = errors.New("invalid response from recognition backend")
)

// StatusError carries a non-2xx response decoded from the backend's
// {"error": "..."} payload.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsClientError reports whether err is a 4xx response, i.e. a request the
// backend rejected rather than failed on.
func IsClientError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
	}
	return false
}
