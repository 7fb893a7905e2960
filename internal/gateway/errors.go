package gateway

import (
	"errors"
	"fmt"
)

// StatusUnreachable is the pseudo status reported when the upstream server
// could not be reached at all (DNS failure, refused connection, timeout).
const StatusUnreachable = 0

// StatusError is the failure shape of every gateway call.
type StatusError struct {
	Op     string // gateway operation, e.g. "getBook"
	Status int    // HTTP status, or StatusUnreachable
	Body   string // truncated upstream error body, may be empty
}

func (e *StatusError) Error() string {
	if e.Status == StatusUnreachable {
		return fmt.Sprintf("gateway %s: server unreachable", e.Op)
	}
	if e.Body != "" {
		return fmt.Sprintf("gateway %s: status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("gateway %s: status %d", e.Op, e.Status)
}

// StatusOf extracts the transport status from a gateway failure.
// It returns -1 when err is nil or not a gateway failure, so callers can
// tell "no status" apart from StatusUnreachable.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return -1
}

// IsNotFound reports whether err is a gateway failure with HTTP status 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == 404
}
