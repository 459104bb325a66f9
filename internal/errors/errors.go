package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// classMarker is implemented by every typed error in this package so callers
// can classify an error chain without a type switch per concrete type.
type classMarker interface {
	error
	errClass() string
}

// ConfigError indicates a bad identity/config input (e.g. a malformed
// keypair file) or a failure to generate a fresh identity. The identity
// store logs the former and falls back to generation; the latter is
// returned to its caller.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config error: %s", e.Op)
	}
	return fmt.Sprintf("config error: %s: %v", e.Op, e.Err)
}
func (e *ConfigError) Unwrap() error  { return e.Err }
func (e *ConfigError) errClass() string { return "config" }

// BindError indicates the transport endpoint could not bind. Fatal for the
// event loop: no further events follow after a single error log.
type BindError struct {
	Op  string
	Err error
}

func (e *BindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bind error: %s", e.Op)
	}
	return fmt.Sprintf("bind error: %s: %v", e.Op, e.Err)
}
func (e *BindError) Unwrap() error  { return e.Err }
func (e *BindError) errClass() string { return "bind" }

// DecodeError indicates a malformed wire frame or address blob. Scoped to
// the one stream/command that failed; never brings down a connection.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode error: %s", e.Op)
	}
	return fmt.Sprintf("decode error: %s: %v", e.Op, e.Err)
}
func (e *DecodeError) Unwrap() error  { return e.Err }
func (e *DecodeError) errClass() string { return "decode" }

// TransportError wraps a stream/connection-level I/O failure (write/read
// failure, reset, close).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error: %s", e.Op)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}
func (e *TransportError) Unwrap() error  { return e.Err }
func (e *TransportError) errClass() string { return "transport" }

// NotConnectedError is returned verbatim to the caller when an outbound
// send/stream targets an unknown peer id.
type NotConnectedError struct {
	PeerID string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("Not connected to peer: %s", e.PeerID)
}
func (e *NotConnectedError) errClass() string { return "not_connected" }

// ProtocolError indicates a well-formed but semantically invalid message,
// e.g. a stream-initiation reply that is neither HlsHeader nor Error.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol error: %s", e.Op)
	}
	return fmt.Sprintf("protocol error: %s: %v", e.Op, e.Err)
}
func (e *ProtocolError) Unwrap() error  { return e.Err }
func (e *ProtocolError) errClass() string { return "protocol" }

// TimeoutError indicates an operation exceeded a deadline, in particular the
// 30s inbound reply-slot timeout.
type TimeoutError struct {
	Op       string
	Duration time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (after %s)", e.Op, e.Duration)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}
func (e *TimeoutError) Unwrap() error    { return e.Err }
func (e *TimeoutError) errClass() string { return "timeout" }

// IsTimeout returns true if err is (or wraps) a TimeoutError, a context
// deadline exceeded, or any error type that exposes Timeout() bool and
// returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var toErr interface{ Timeout() bool }
	if stdErrors.As(err, &toErr) && toErr.Timeout() {
		return true
	}
	return false
}

// IsNotConnected reports whether err is (or wraps) a NotConnectedError.
func IsNotConnected(err error) bool {
	var nc *NotConnectedError
	return stdErrors.As(err, &nc)
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return stdErrors.As(err, &pe)
}

// Class returns the short classifier string for any typed error in this
// package, or "" if err does not wrap one of them.
func Class(err error) string {
	var cm classMarker
	if stdErrors.As(err, &cm) {
		return cm.errClass()
	}
	return ""
}

// Constructors (encourage contextual wrapping with %w when used by callers).
func NewConfigError(op string, cause error) error     { return &ConfigError{Op: op, Err: cause} }
func NewBindError(op string, cause error) error        { return &BindError{Op: op, Err: cause} }
func NewDecodeError(op string, cause error) error      { return &DecodeError{Op: op, Err: cause} }
func NewTransportError(op string, cause error) error   { return &TransportError{Op: op, Err: cause} }
func NewNotConnectedError(peerID string) error         { return &NotConnectedError{PeerID: peerID} }
func NewProtocolError(op string, cause error) error    { return &ProtocolError{Op: op, Err: cause} }
func NewTimeoutError(op string, d time.Duration, cause error) error {
	return &TimeoutError{Op: op, Duration: d, Err: cause}
}

// Reduce collapses any error into the short human-readable string the host
// façade promises at every entry point: no leaky internal types cross that
// boundary, just err.Error().
func Reduce(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
