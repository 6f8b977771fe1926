// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wyvernbw/impolite/greetd"
	"github.com/wyvernbw/impolite/lib/config"
	"github.com/wyvernbw/impolite/lib/sessions"
)

// FocusRegion identifies which part of the greeter owns keyboard input.
type FocusRegion int

const (
	// FocusUsername means keystrokes go to the username field.
	FocusUsername FocusRegion = iota
	// FocusWaiting means a request is outstanding; only cancel and
	// quit are live.
	FocusWaiting
	// FocusPrompt means keystrokes go to the credential field.
	FocusPrompt
	// FocusSessions means navigation keys move the session picker.
	FocusSessions
)

// statusKind flavors the status line.
type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusError
)

// responseMsg wraps a daemon Response for delivery through the
// bubbletea message loop.
type responseMsg struct {
	response greetd.Response
}

// connectionLostMsg reports a dispatcher write failure.
type connectionLostMsg struct {
	err error
}

// Model is the greeter's bubbletea model. It exclusively owns the
// greetd Session; every touch of the state machine happens on the
// program's update goroutine.
type Model struct {
	session   *greetd.Session
	responses <-chan greetd.Response
	failures  <-chan error
	config    *config.Config
	logger    *slog.Logger

	theme Theme
	keys  KeyMap

	focus         FocusRegion
	usernameInput textinput.Model
	promptInput   textinput.Model
	promptLabel   string

	entries []sessions.Entry
	cursor  int

	width  int
	height int

	offline bool

	statusText string
	statusKind statusKind

	pendingCommand []string
	started        bool
	startedCommand []string
	quitting       bool
}

// NewModel builds the greeter UI. responses is the Listener's channel;
// failures is the Dispatcher's. offline marks the degraded no-daemon
// mode, which shows a banner and lets the interface be explored
// without a live login flow.
func NewModel(session *greetd.Session, responses <-chan greetd.Response, failures <-chan error, entries []sessions.Entry, cfg *config.Config, theme Theme, offline bool, logger *slog.Logger) Model {
	usernameInput := textinput.New()
	usernameInput.Prompt = "" // the label column renders the prompt
	usernameInput.Placeholder = "username"
	usernameInput.CharLimit = 255
	usernameInput.Focus()

	promptInput := textinput.New()
	promptInput.Prompt = ""
	promptInput.CharLimit = 255

	if len(entries) == 0 && len(cfg.DefaultCommand) > 0 {
		entries = []sessions.Entry{{
			Name:    strings.Join(cfg.DefaultCommand, " "),
			Command: cfg.DefaultCommand,
		}}
	}

	model := Model{
		session:       session,
		responses:     responses,
		failures:      failures,
		config:        cfg,
		logger:        logger,
		theme:         theme,
		keys:          DefaultKeyMap,
		focus:         FocusUsername,
		usernameInput: usernameInput,
		promptInput:   promptInput,
		entries:       entries,
		offline:       offline,
	}
	model.cursor = model.defaultEntryIndex()
	return model
}

// defaultEntryIndex preselects the configured default command when it
// matches a discovered entry.
func (model Model) defaultEntryIndex() int {
	if len(model.config.DefaultCommand) == 0 {
		return 0
	}
	want := strings.Join(model.config.DefaultCommand, " ")
	for i, entry := range model.entries {
		if strings.Join(entry.Command, " ") == want {
			return i
		}
	}
	return 0
}

// Started reports whether the daemon confirmed a session start, and
// which command it launched. Read by main after the program exits.
func (model Model) Started() (bool, []string) {
	return model.started, model.startedCommand
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listenForResponse(model.responses),
		listenForFailure(model.failures),
	)
}

// listenForResponse blocks until the Listener delivers the next
// daemon response, then re-enters the update loop with it. A closed
// channel means the read loop is gone — daemon disconnect or an
// undecodable frame — and is surfaced as a lost connection rather
// than waiting for the next write to fail.
func listenForResponse(channel <-chan greetd.Response) tea.Cmd {
	return func() tea.Msg {
		response, ok := <-channel
		if !ok {
			return connectionLostMsg{err: greetd.ErrConnectionLost}
		}
		return responseMsg{response: response}
	}
}

// listenForFailure delivers the dispatcher's write failure, if one
// ever happens.
func listenForFailure(channel <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-channel
		if !ok {
			return nil
		}
		return connectionLostMsg{err: err}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case responseMsg:
		return model.handleResponse(message.response)

	case connectionLostMsg:
		if event := model.session.ConnectionLost(message.err); event == greetd.EventFailed {
			model.setStatus(model.session.FailureReason(), statusError)
			model.toUsernameForm()
		}
		return model, nil

	case tea.KeyMsg:
		if key.Matches(message, model.keys.Quit) {
			model.session.Cancel()
			model.quitting = true
			return model, tea.Quit
		}
		switch model.focus {
		case FocusUsername:
			return model.handleUsernameKeys(message)
		case FocusWaiting:
			return model.handleWaitingKeys(message)
		case FocusPrompt:
			return model.handlePromptKeys(message)
		case FocusSessions:
			return model.handleSessionKeys(message)
		}
	}

	return model, nil
}

func (model Model) handleUsernameKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Submit) {
		username := strings.TrimSpace(model.usernameInput.Value())
		if username == "" {
			return model, nil
		}
		if err := model.session.BeginLogin(username); err != nil {
			model.setStatus(err.Error(), statusError)
			return model, nil
		}
		model.statusKind = statusNone
		if model.offline {
			// No daemon, no prompts: jump straight to the picker so
			// the interface can be explored.
			model.focus = FocusSessions
			return model, nil
		}
		model.focus = FocusWaiting
		return model, nil
	}

	var command tea.Cmd
	model.usernameInput, command = model.usernameInput.Update(message)
	return model, command
}

func (model Model) handleWaitingKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Back) {
		model.session.Cancel()
		model.toUsernameForm()
	}
	return model, nil
}

func (model Model) handlePromptKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Submit):
		if err := model.session.SupplyAuthValue(model.promptInput.Value()); err != nil {
			model.setStatus(err.Error(), statusError)
			return model, nil
		}
		model.promptInput.SetValue("")
		model.promptInput.Blur()
		model.focus = FocusWaiting
		return model, nil

	case key.Matches(message, model.keys.Back):
		model.session.Cancel()
		model.toUsernameForm()
		return model, nil
	}

	var command tea.Cmd
	model.promptInput, command = model.promptInput.Update(message)
	return model, command
}

func (model Model) handleSessionKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.entries)-1 {
			model.cursor++
		}
	case key.Matches(message, model.keys.Back):
		model.session.Cancel()
		model.toUsernameForm()
	case key.Matches(message, model.keys.Submit):
		if len(model.entries) == 0 {
			model.setStatus("no sessions available", statusError)
			return model, nil
		}
		entry := model.entries[model.cursor]
		if model.offline {
			model.setStatus("offline: would start "+strings.Join(entry.Command, " "), statusInfo)
			return model, nil
		}
		if err := model.session.ChooseSession(entry.Command, model.config.Env); err != nil {
			model.setStatus(err.Error(), statusError)
			return model, nil
		}
		model.pendingCommand = entry.Command
		model.setStatus("starting "+entry.Name+"…", statusInfo)
	}
	return model, nil
}

// handleResponse feeds one daemon response through the state machine
// and reshapes the UI around the resulting event.
func (model Model) handleResponse(response greetd.Response) (tea.Model, tea.Cmd) {
	commands := []tea.Cmd{listenForResponse(model.responses)}

	switch model.session.HandleResponse(response) {
	case greetd.EventPrompt:
		prompt := model.session.Prompt()
		model.promptLabel = strings.TrimSpace(prompt.Message)
		if model.promptLabel == "" {
			model.promptLabel = "Password:"
		}
		if prompt.Kind == greetd.AuthSecret {
			model.promptInput.EchoMode = textinput.EchoPassword
			model.promptInput.EchoCharacter = '•'
		} else {
			model.promptInput.EchoMode = textinput.EchoNormal
		}
		model.promptInput.SetValue("")
		model.promptInput.Focus()
		model.focus = FocusPrompt
		commands = append(commands, textinput.Blink)

	case greetd.EventNotice:
		text, kind := model.session.Notice()
		flavor := statusInfo
		if kind == greetd.AuthError {
			flavor = statusError
		}
		model.setStatus(text, flavor)

	case greetd.EventReady:
		model.setStatus("", statusNone)
		model.focus = FocusSessions

	case greetd.EventSessionStarted:
		model.logger.Info("daemon confirmed session start", "command", strings.Join(model.pendingCommand, " "))
		model.started = true
		model.startedCommand = model.pendingCommand
		model.quitting = true
		return model, tea.Quit

	case greetd.EventFailed:
		model.setStatus(model.session.FailureReason(), statusError)
		model.toUsernameForm()
	}

	return model, tea.Batch(commands...)
}

func (model *Model) toUsernameForm() {
	model.focus = FocusUsername
	model.promptInput.SetValue("")
	model.promptInput.Blur()
	model.usernameInput.Focus()
}

func (model *Model) setStatus(text string, kind statusKind) {
	model.statusText = text
	model.statusKind = kind
}
