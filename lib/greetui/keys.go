// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the greeter's key bindings.
type KeyMap struct {
	Submit key.Binding
	Back   key.Binding // Cancel the attempt, return to the username form.
	Up     key.Binding
	Down   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
