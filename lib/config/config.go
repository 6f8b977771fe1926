// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Environment variable names.
const (
	// EnvSocket is set by greetd for the greeter it spawns; it holds
	// the path of the daemon's Unix socket.
	EnvSocket = "GREETD_SOCK"

	// EnvConfig optionally points at a JSONC config file, for
	// deployments that cannot pass --config on the greeter command
	// line.
	EnvConfig = "IMPOLITE_CONFIG"
)

// Config is the greeter's complete configuration. One value is built
// at startup and passed by pointer into the components that need it.
type Config struct {
	// SocketPath is the greetd daemon's Unix socket. Defaults to
	// $GREETD_SOCK.
	SocketPath string `json:"socket"`

	// Debug permits running without a reachable daemon: the greeter
	// then uses an offline transport (writes dropped, no responses)
	// so the interface can be explored during development. Without
	// Debug, a connection failure is fatal.
	Debug bool `json:"debug"`

	// Greeting is the banner line shown above the login form.
	Greeting string `json:"greeting"`

	// DefaultCommand is the session command offered when desktop
	// entry discovery finds nothing, and the preselected entry when
	// it does.
	DefaultCommand []string `json:"command"`

	// Env is appended to the environment of the started session.
	Env []string `json:"env"`

	// LogOutput is a file path receiving log records. Empty discards
	// logs — the greeter owns the terminal, so logging to stderr
	// would corrupt the display.
	LogOutput string `json:"log_output"`

	// SessionDirs overrides the desktop-entry search path. Empty
	// means the standard wayland-sessions and xsessions locations.
	SessionDirs []string `json:"session_dirs"`
}

// Default returns the built-in configuration, with the socket path
// taken from $GREETD_SOCK.
func Default() *Config {
	return &Config{
		SocketPath: os.Getenv(EnvSocket),
		Greeting:   "Authorization required.",
	}
}

// Load reads and parses a JSONC config file over base, modifying base
// in place. Unknown keys are rejected so typos surface instead of
// silently doing nothing.
func Load(path string, base *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(base); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration can actually drive a login.
func (c *Config) Validate() error {
	if c.SocketPath == "" && !c.Debug {
		return fmt.Errorf("no greetd socket configured (set %s or enable debug mode)", EnvSocket)
	}
	return nil
}
