// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers distinguish "cannot reach the login
// service" from credential failure with errors.Is so the UI can offer
// the offline fallback instead of blaming the password.
var (
	// ErrDaemonUnavailable means the daemon socket address is
	// missing, malformed, or refused the connection.
	ErrDaemonUnavailable = errors.New("greetd daemon unavailable")

	// ErrConnectionLost means the established connection failed
	// mid-attempt. Subsequent sends fail fast with this error.
	ErrConnectionLost = errors.New("greetd connection lost")

	// ErrRequestInFlight means an intent arrived while a previous
	// request was still awaiting its response. The protocol allows
	// at most one request in flight.
	ErrRequestInFlight = errors.New("greetd request already in flight")
)

// MalformedFrameError means the bytes on the wire cannot be a frame:
// the payload is not valid UTF-8, or the length prefix exceeds the
// frame size limit. Fatal to the connection; the transport is torn
// down and a fresh connection restarts framing from scratch.
type MalformedFrameError struct {
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("greetd: malformed frame: %s", e.Reason)
}

// ProtocolDecodeError means a frame held valid UTF-8 text that does
// not match any known Response shape. Fatal to the connection, like
// MalformedFrameError.
type ProtocolDecodeError struct {
	Payload []byte
	Err     error
}

func (e *ProtocolDecodeError) Error() string {
	return fmt.Sprintf("greetd: undecodable response %q: %v", e.Payload, e.Err)
}

func (e *ProtocolDecodeError) Unwrap() error { return e.Err }
