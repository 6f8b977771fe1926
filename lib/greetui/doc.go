// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

// Package greetui is the greeter's terminal interface: a bubbletea
// model that walks the user from a username form through credential
// prompts to a session picker, driven by the greetd authentication
// state machine.
//
// The model owns the [greetd.Session] exclusively. Daemon responses
// arrive as bubbletea messages (a command re-arms on the listener's
// channel after each delivery, the standard bubbletea pattern for
// external event streams), so the state machine is only ever touched
// from the program's single update goroutine.
package greetui
