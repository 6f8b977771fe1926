// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessions discovers launchable sessions from freedesktop
// desktop entries. Wayland compositors and X sessions advertise
// themselves as .desktop files under wayland-sessions and xsessions
// directories; this package scans those, extracts the display name
// and launch command, and returns them in a stable order for the
// greeter's session picker.
//
// Only the handful of keys a greeter needs are read (Name, Exec,
// Hidden, NoDisplay); malformed files are skipped, not fatal.
package sessions
