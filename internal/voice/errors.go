package voice

import (
	"errors"
	"fmt"
)

var (
	ErrSessionActive  = errors.New("voice session already active")
	ErrSessionStopped = errors.New("voice session stopped before it became active")
)

// PermissionError is returned when a device refuses access.
type PermissionError struct {
	Device string
	Err    error
}

func (e *PermissionError) Error() string {
	if e.Err == nil {
		return e.Device + ": permission denied"
	}
	return fmt.Sprintf("%s: permission denied: %v", e.Device, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// UnavailableError is returned when a device is missing or stopped producing data.
type UnavailableError struct {
	Device string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Device + ": unavailable"
	}
	return fmt.Sprintf("%s: unavailable: %v", e.Device, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("live %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

var (
	errMicrophoneBusy   = errors.New("microphone already in use")
	errMicrophoneClosed = errors.New("microphone closed")
)
