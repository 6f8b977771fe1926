// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

// brokenWriter fails every write, as a closed socket would.
type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestDispatcherWritesWholeFramesInOrder(t *testing.T) {
	clientSide, daemonSide := net.Pipe()
	defer daemonSide.Close()

	dispatcher := NewDispatcher(clientSide, testLogger())
	var done sync.WaitGroup
	done.Add(1)
	go func() {
		defer done.Done()
		dispatcher.Run()
	}()

	password := "1234"
	requests := []Request{
		CreateSession{Username: "Bingus"},
		PostAuthMessageResponse{Response: &password},
		CancelSession{},
	}
	for _, request := range requests {
		if err := dispatcher.Send(request); err != nil {
			t.Fatalf("Send(%T): %v", request, err)
		}
	}

	// Each frame arrives intact and in submission order. Decoding the
	// daemon side through the request marshaller's counterpart is not
	// possible (requests decode on the daemon), so compare raw frames.
	for _, request := range requests {
		want, err := EncodeRequest(request)
		if err != nil {
			t.Fatalf("EncodeRequest: %v", err)
		}
		got := make([]byte, len(want))
		daemonSide.SetReadDeadline(time.Now().Add(time.Second))
		if _, err := io.ReadFull(daemonSide, got); err != nil {
			t.Fatalf("reading frame for %T: %v", request, err)
		}
		if string(got) != string(want) {
			t.Errorf("frame for %T = %q, want %q", request, got, want)
		}
	}

	dispatcher.Close()
	done.Wait()
	clientSide.Close()

	if err := dispatcher.Send(CancelSession{}); err == nil {
		t.Error("Send after Close should fail")
	}
}

func TestDispatcherFailsFastAfterWriteError(t *testing.T) {
	dispatcher := NewDispatcher(brokenWriter{}, testLogger())
	go dispatcher.Run()

	if err := dispatcher.Send(CreateSession{Username: "u"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case err := <-dispatcher.Failures():
		if !errors.Is(err, ErrConnectionLost) {
			t.Errorf("failure = %v, want ErrConnectionLost", err)
		}
	case <-time.After(time.Second):
		t.Fatal("no failure published after write error")
	}

	if err := dispatcher.Send(CancelSession{}); !errors.Is(err, ErrConnectionLost) {
		t.Errorf("Send after failure = %v, want ErrConnectionLost", err)
	}
}

func TestDispatcherDropsWritesOffline(t *testing.T) {
	transport := Offline()
	dispatcher := NewDispatcher(transport.WriteHalf(), testLogger())
	var done sync.WaitGroup
	done.Add(1)
	go func() {
		defer done.Done()
		dispatcher.Run()
	}()

	// Offline mode: sends succeed and vanish; no failure surfaces.
	if err := dispatcher.Send(CreateSession{Username: "u"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case err := <-dispatcher.Failures():
		t.Fatalf("unexpected failure offline: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	dispatcher.Close()
	done.Wait()
}
