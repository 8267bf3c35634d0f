package netcast

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNoSession is returned when a command or query is attempted before a
// session has been established with Open.
var ErrNoSession = errors.New("no session established, pair with the TV first")

// ConnectionError wraps a transport failure: the TV is unreachable or
// did not answer within the configured timeout.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot reach TV at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was the request deadline expiring
// rather than a refused or dropped connection.
func (e *ConnectionError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// AuthError is returned when the TV rejects a pairing attempt.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("TV rejected the pairing key (status %d)", e.Status)
}

// ProtocolError is returned when the TV answers, but not the way the
// protocol promises: an error status on an established session, an
// unexpected root element, or a pairing response without a session id.
type ProtocolError struct {
	Status int
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unexpected TV response (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("unexpected TV response: %s", e.Reason)
}

// ParseError is returned when a response body is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed TV response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
