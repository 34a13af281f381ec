package bled112

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes a caller is expected to branch on.
// Layers wrap these with context; match with errors.Is.
var (
	// ErrFrame reports a malformed BGAPI frame: an oversized or
	// inconsistent header, or a response that does not belong to the
	// outstanding command. The exchange that observed it is dead.
	ErrFrame = errors.New("malformed frame")

	// ErrDisconnected reports that the link to the device ended. The GATT
	// session drops back to idle; a fresh connect is required.
	ErrDisconnected = errors.New("disconnected")

	// ErrNotConnected reports an attribute operation on an idle session.
	ErrNotConnected = errors.New("not connected")

	// ErrNotFound reports that discovery gave up before any device
	// matched. Distinct from ErrDisconnected: there was no link to lose.
	ErrNotFound = errors.New("no matching device found")
)

// StatusError is a BGAPI response carrying a non-zero result code.
// The code values are defined by the BGAPI reference manual.
type StatusError struct {
	Op   string
	Code uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status 0x%04x", e.Op, e.Code)
}
