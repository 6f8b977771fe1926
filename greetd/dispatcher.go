// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// requestQueueDepth sizes the dispatcher's inbound channel. The
// single-request-in-flight invariant means the queue almost never
// holds more than one entry (a CancelSession may briefly follow an
// unanswered request); the depth only has to make Send non-blocking
// in practice.
const requestQueueDepth = 8

// Dispatcher owns the transport's write half and serializes outbound
// requests: one frame is encoded and fully flushed before the next
// request is accepted, so partial frames never interleave.
//
// Send never blocks the state machine's owner. After a write failure
// the dispatcher shuts down and every subsequent Send fails fast with
// ErrConnectionLost; the failure is also published on Failures so the
// owner learns about it without sending.
type Dispatcher struct {
	writer   io.Writer
	logger   *slog.Logger
	requests chan Request
	failures chan error

	mu     sync.Mutex
	closed bool
	failed error
}

// NewDispatcher creates a dispatcher writing frames to writer. Call
// Run on its own goroutine to start draining the queue.
func NewDispatcher(writer io.Writer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		writer:   writer,
		logger:   logger,
		requests: make(chan Request, requestQueueDepth),
		failures: make(chan error, 1),
	}
}

// Send enqueues one request for transmission. It fails with
// ErrConnectionLost after a write error and with an error after
// Close; it never blocks while the connection is healthy.
func (d *Dispatcher) Send(request Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed != nil {
		return d.failed
	}
	if d.closed {
		return fmt.Errorf("greetd: dispatcher closed")
	}
	select {
	case d.requests <- request:
		return nil
	default:
		// Cannot happen while the in-flight invariant holds; treat a
		// full queue as a wedged connection rather than blocking the
		// UI goroutine.
		return ErrConnectionLost
	}
}

// Failures delivers at most one error: the write failure that took
// the connection down.
func (d *Dispatcher) Failures() <-chan error { return d.failures }

// Close stops the dispatcher once the queue drains. Sends after Close
// fail.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.requests)
}

// Run drains the request queue, writing one fully-flushed frame per
// request. Returns when Close is called or a write fails. Run must be
// the only goroutine touching the write half.
func (d *Dispatcher) Run() {
	for request := range d.requests {
		frame, err := EncodeRequest(request)
		if err != nil {
			// Encoding a known Request variant cannot fail; log and
			// drop rather than kill the connection.
			d.logger.Error("encoding request", "type", request.requestType(), "error", err)
			continue
		}
		if _, err := d.writer.Write(frame); err != nil {
			d.logger.Warn("write to daemon failed", "error", err)
			d.fail(fmt.Errorf("writing %s frame: %v: %w", request.requestType(), err, ErrConnectionLost))
			return
		}
		d.logger.Debug("request sent", "type", request.requestType())
	}
}

func (d *Dispatcher) fail(err error) {
	d.mu.Lock()
	d.failed = err
	d.mu.Unlock()
	d.failures <- err
}
