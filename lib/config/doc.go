// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the greeter.
//
// Configuration comes from three layers, strongest last:
//
//  1. built-in defaults,
//  2. an optional JSONC config file (--config flag or IMPOLITE_CONFIG
//     environment variable; // comments and trailing commas allowed),
//  3. the GREETD_SOCK environment variable and command-line flags.
//
// The result is an explicit Config struct passed by pointer to the
// components that need it, scoped to the process's run. There is no
// global mutable configuration state.
package config
