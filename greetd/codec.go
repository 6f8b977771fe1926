// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxFrameSize caps the payload length accepted from the wire. The
// 4-byte prefix allows ~4GB in theory; greetd messages are PAM prompt
// text and never approach 1MB, so anything larger is treated as a
// corrupt or hostile frame rather than buffered.
const MaxFrameSize = 1024 * 1024

// EncodeRequest produces one complete wire frame for a request: a
// 4-byte native-endian uint32 length prefix followed by the UTF-8
// JSON payload. Native byte order matches the daemon's own framing;
// the format is deliberately not cross-architecture portable.
func EncodeRequest(request Request) ([]byte, error) {
	payload, err := marshalRequest(request)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 4+len(payload))
	binary.NativeEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)
	return frame, nil
}

// ReadResponse reads exactly one frame from reader and decodes it.
// io.ReadFull loops until the prefix and payload are complete, so the
// transport may deliver the frame in arbitrarily small pieces.
//
// Returns io.EOF when the stream ends cleanly on a frame boundary and
// io.ErrUnexpectedEOF when it ends mid-frame. Returns a
// *MalformedFrameError for oversized or non-UTF-8 payloads and a
// *ProtocolDecodeError for text that matches no known Response shape.
func ReadResponse(reader io.Reader) (Response, error) {
	var header [4]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading frame header: %w", err)
	}

	length := binary.NativeEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, &MalformedFrameError{
			Reason: fmt.Sprintf("frame length %d exceeds maximum %d", length, MaxFrameSize),
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}

	return DecodeResponse(payload)
}

// DecodeResponse decodes one frame payload (without the length
// prefix) into a Response.
func DecodeResponse(payload []byte) (Response, error) {
	if !utf8.Valid(payload) {
		return nil, &MalformedFrameError{Reason: "payload is not valid UTF-8"}
	}
	return unmarshalResponse(payload)
}
