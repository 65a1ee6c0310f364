package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers failures before a status line was received:
	// refused connections, DNS, TLS, deadlines.
	ErrTransport = errors.New("scoring: transport failure")
	ErrStatus    = errors.New("scoring: non-success status")
	ErrMalformed = errors.New("scoring: malformed response")
)

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scoring: server responded %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Kind names the failure class for logs and the journal.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
