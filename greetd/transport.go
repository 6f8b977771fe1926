// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// dialTimeout is the maximum time to wait for the daemon socket to
// accept a connection. The daemon is local; anything slower than this
// means it is not running.
const dialTimeout = 5 * time.Second

// Transport is the duplex byte stream to the greetd daemon. The read
// and write halves are handed out once each — the Listener owns
// ReadHalf, the Dispatcher owns WriteHalf — so neither half is ever
// shared between goroutines.
//
// A Transport is either connected (from Dial) or offline (from
// Offline). The offline variant exists so the greeter can be explored
// interactively without a running daemon: reads block until Close and
// writes are silently discarded. The choice is made once at
// construction, gated by the debug configuration flag, rather than
// checked at every call site.
type Transport struct {
	reader io.Reader
	writer io.Writer
	closer io.Closer
}

// Dial connects to the greetd daemon's Unix socket. An empty
// socketPath and any connection failure both wrap
// ErrDaemonUnavailable.
func Dial(socketPath string) (*Transport, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("no socket path configured (is GREETD_SOCK set?): %w", ErrDaemonUnavailable)
	}
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %v: %w", socketPath, err, ErrDaemonUnavailable)
	}
	return &Transport{reader: conn, writer: conn, closer: conn}, nil
}

// Offline returns a daemon-less Transport: reads block until Close
// then report end-of-stream, writes succeed and go nowhere. The
// Listener consequently never yields a Response and the Dispatcher
// drops requests, which is exactly the degraded behavior debug mode
// wants.
func Offline() *Transport {
	blocked := &blockedReader{done: make(chan struct{})}
	return &Transport{reader: blocked, writer: io.Discard, closer: blocked}
}

// ReadHalf returns the read side of the connection. Exactly one
// component (the Listener) may use it.
func (t *Transport) ReadHalf() io.Reader { return t.reader }

// WriteHalf returns the write side of the connection. Exactly one
// component (the Dispatcher) may use it.
func (t *Transport) WriteHalf() io.Writer { return t.writer }

// Close tears down the connection. The Listener's blocked read
// unblocks with an error, terminating its loop.
func (t *Transport) Close() error { return t.closer.Close() }

// blockedReader blocks every Read until Close, then returns io.EOF.
// It is the read half of the offline Transport.
type blockedReader struct {
	done      chan struct{}
	closeOnce sync.Once
}

func (r *blockedReader) Read(p []byte) (int, error) {
	<-r.done
	return 0, io.EOF
}

func (r *blockedReader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}
