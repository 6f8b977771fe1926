// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

// impolite is a terminal greeter for the greetd session-management
// daemon. greetd spawns it on a virtual terminal; it collects a
// username and credentials, drives the greetd IPC protocol to
// authenticate, lets the user pick a session from the installed
// desktop entries, and asks the daemon to start it.
//
// With --debug, a failure to reach the daemon drops into an offline
// mode instead of exiting, so the interface can be explored on a
// development machine where greetd is not running.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/wyvernbw/impolite/greetd"
	"github.com/wyvernbw/impolite/lib/config"
	"github.com/wyvernbw/impolite/lib/greetui"
	"github.com/wyvernbw/impolite/lib/sessions"
)

// version is stamped by the build; "devel" for plain go build.
var version = "devel"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		debug      bool
		socketPath string
		greeting   string
		command    string
		logOutput  string
	)

	flagSet := pflag.NewFlagSet("impolite", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a JSONC config file")
	flagSet.BoolVar(&debug, "debug", false, "run offline when the greetd daemon is unreachable")
	flagSet.StringVar(&socketPath, "socket", "", "greetd socket path (default: $GREETD_SOCK)")
	flagSet.StringVar(&greeting, "greeting", "", "banner text above the login form")
	flagSet.StringVar(&command, "cmd", "", "default session command")
	flagSet.StringVar(&logOutput, "log-output", "", "write log records to this file")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Printf("impolite %s\n", version)
		return nil
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	// Layered configuration: defaults, then file, then flags.
	cfg := config.Default()
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfig)
	}
	if configPath != "" {
		if err := config.Load(configPath, cfg); err != nil {
			return err
		}
	}
	if debug {
		cfg.Debug = true
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if greeting != "" {
		cfg.Greeting = greeting
	}
	if command != "" {
		cfg.DefaultCommand = strings.Fields(command)
	}
	if logOutput != "" {
		cfg.LogOutput = logOutput
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("impolite must run on a terminal")
	}

	logger, closeLogs, err := newLogger(cfg.LogOutput)
	if err != nil {
		return err
	}
	defer closeLogs()

	return runGreeter(cfg, logger)
}

// newLogger builds the greeter's logger. The greeter owns the
// terminal, so records go to a file or nowhere — never to stderr.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { file.Close() }, nil
}

// connect establishes the daemon transport, falling back to the
// offline variant in debug mode.
func connect(cfg *config.Config, logger *slog.Logger) (*greetd.Transport, bool, error) {
	transport, err := greetd.Dial(cfg.SocketPath)
	if err == nil {
		logger.Info("connected to greetd", "socket", cfg.SocketPath)
		return transport, false, nil
	}
	if cfg.Debug {
		logger.Warn("running without a daemon connection", "error", err)
		return greetd.Offline(), true, nil
	}
	return nil, false, err
}

func runGreeter(cfg *config.Config, logger *slog.Logger) error {
	transport, offline, err := connect(cfg, logger)
	if err != nil {
		return err
	}
	defer transport.Close()

	listener := greetd.NewListener(transport.ReadHalf(), logger)
	dispatcher := greetd.NewDispatcher(transport.WriteHalf(), logger)
	go listener.Run()
	go dispatcher.Run()
	defer dispatcher.Close()

	session := greetd.NewSession(dispatcher, logger)
	entries := sessions.Discover(cfg.SessionDirs)
	logger.Info("discovered sessions", "count", len(entries))

	model := greetui.NewModel(
		session,
		listener.Responses(),
		dispatcher.Failures(),
		entries,
		cfg,
		greetui.DetectTheme(),
		offline,
		logger,
	)

	program := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("running greeter UI: %w", err)
	}

	if final, ok := finalModel.(greetui.Model); ok {
		if started, command := final.Started(); started {
			// greetd owns the launch from here; the greeter's only
			// remaining job is to get off the terminal.
			logger.Info("handing off to session", "command", strings.Join(command, " "))
		}
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `impolite — a terminal greeter for greetd.

Connects to the greetd daemon at $GREETD_SOCK (or --socket), walks
the user through authentication, and starts the chosen session.

Configuration may also come from a JSONC file given by --config or
$IMPOLITE_CONFIG; flags override the file.

Usage:
  impolite [flags]

Flags:
%s`, flagSet.FlagUsages())
}
