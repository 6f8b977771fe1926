// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

// Package greetd implements the client half of the greetd IPC
// protocol: the framed wire codec, the socket transport, and the
// state machine that drives one login attempt from "no session"
// through credential prompts to "session ready to start".
//
// The wire format is fixed by the greetd daemon: each frame is a
// 4-byte native-endian uint32 length followed by that many bytes of
// UTF-8 JSON. Message payloads are tagged unions with a "type" field
// in snake_case ({"type":"create_session","username":...}).
//
// # Component layout
//
//   - Request / Response: the protocol's tagged message types.
//   - EncodeRequest / ReadResponse: one-frame codec, no buffering
//     beyond the frame being assembled.
//   - Transport: the duplex connection to the daemon, or an offline
//     stand-in when running without one (debug mode).
//   - Dispatcher: owns the write half; serializes one outbound
//     request at a time, fully flushed before the next is accepted.
//   - Listener: owns the read half; decodes inbound frames and
//     delivers them in stream order on a channel.
//   - Session: the authentication state machine. Owned by a single
//     goroutine (the UI event loop); it consumes Responses from the
//     Listener's channel and emits Requests through the Dispatcher.
//
// Because at most one request is ever in flight, responses correlate
// to requests by arrival order alone; the protocol has no request IDs.
package greetd
