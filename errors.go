package usbtmc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned by protocol operations invoked on a session
	// that is not open.
	ErrNotOpen = errors.New("interface not open")

	// ErrDeviceNotFound is returned by a Transport when no attached
	// device matches the requested vendor/product IDs and serial number.
	ErrDeviceNotFound = errors.New("device not found")
)

// ProtocolError reports a device response that violates the USBTMC
// standard: a malformed header, a bad btag/btag-inverse pair, an
// unexpected message ID, or a forbidden empty payload. The session
// should be considered unreliable after one of these.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol violation: " + e.Reason
}

func protocolErrorf(format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// ControlError reports a control request the device answered with a
// status other than SUCCESS.
type ControlError struct {
	Request ControlRequest
	Status  ControlStatus
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("%s request returned status %s", e.Request, e.Status)
}

// TransportError wraps an I/O failure reported by the underlying USB
// transport. It is fatal to the in-flight operation only.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
