package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport means the request never produced an HTTP response.
	KindTransport Kind = iota + 1
	// KindStatus means the API answered with a non-2xx status.
	KindStatus
	// KindDecode means the response body did not match the expected schema.
	KindDecode
	// KindNotFound means the requested record does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind of a gateway error, or 0 if err is not one.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// IsNotFound reports whether err means the record is absent.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
