// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"errors"
	"io"
	"log/slog"
	"net"
)

// Listener owns the transport's read half. Run decodes inbound frames
// one at a time and delivers them on Responses in stream order.
// Because at most one request is ever in flight, arrival order alone
// correlates each Response to the request it answers.
type Listener struct {
	reader    io.Reader
	logger    *slog.Logger
	responses chan Response
	err       error
}

// NewListener creates a listener reading frames from reader. Call Run
// on its own goroutine to start the decode loop.
func NewListener(reader io.Reader, logger *slog.Logger) *Listener {
	return &Listener{
		reader:    reader,
		logger:    logger,
		responses: make(chan Response, 1),
	}
}

// Responses delivers decoded responses in stream order. The channel
// closes when the read loop terminates; check Err afterwards.
func (l *Listener) Responses() <-chan Response { return l.responses }

// Err reports why the read loop stopped. Nil after a clean
// end-of-stream (daemon closed the connection, or the offline
// transport was closed). Only valid once Responses is closed.
func (l *Listener) Err() error { return l.err }

// Run decodes frames until the stream ends or a frame is
// undecodable. Decode errors are fatal to the connection, not the
// process: the loop stops, the channel closes, and a fresh connection
// starts decoding from a clean frame boundary. Run must be the only
// goroutine touching the read half.
//
// Run blocks indefinitely while the daemon is silent; no read timeout
// is imposed. Closing the Transport unblocks it.
func (l *Listener) Run() {
	defer close(l.responses)
	for {
		response, err := ReadResponse(l.reader)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				l.logger.Debug("daemon connection closed")
				return
			}
			l.logger.Warn("read loop terminated", "error", err)
			l.err = err
			return
		}
		l.logger.Debug("response received", "type", response.responseType())
		l.responses <- response
	}
}
