package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTransport covers connection failures, DNS errors, timeouts and
	// cancelled contexts.
	ErrTransport = errors.New("transport failure")
	// ErrDecode means a response arrived but its body is not a JSON object.
	ErrDecode = errors.New("decode failure")
	// ErrEncode means the request payload could not be marshalled.
	ErrEncode = errors.New("encode failure")

	ErrInvalidServer      = errors.New("invalid server address")
	ErrPartialCredentials = errors.New("username and password must be set together")
)

// Error is returned by every client operation that fails. Kind is one of
// ErrTransport, ErrDecode or ErrEncode, so callers can branch with errors.Is.
type Error struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Timeout reports whether the request gave up waiting for the server.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Credentials is an optional HTTP Basic credential pair.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// Validate enforces the both-or-neither rule.
func (c Credentials) Validate() error {
	if (c.Username == "") != (c.Password == "") {
		return ErrPartialCredentials
	}
	return nil
}
