// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetui

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wyvernbw/impolite/greetd"
	"github.com/wyvernbw/impolite/lib/config"
	"github.com/wyvernbw/impolite/lib/sessions"
)

// recordingSender captures the state machine's outbound requests.
type recordingSender struct {
	sent []greetd.Request
}

func (r *recordingSender) Send(request greetd.Request) error {
	r.sent = append(r.sent, request)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestModel(offline bool) (Model, *recordingSender) {
	sender := &recordingSender{}
	session := greetd.NewSession(sender, testLogger())
	cfg := &config.Config{Greeting: "hi", DefaultCommand: []string{"sway"}}
	entries := []sessions.Entry{
		{Name: "River", Command: []string{"river"}},
		{Name: "Sway", Command: []string{"sway"}},
	}
	model := NewModel(session, make(chan greetd.Response), make(chan error), entries, cfg, DarkTheme, offline, testLogger())
	return model, sender
}

func press(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	updated, _ := model.Update(message)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next
}

func typeText(t *testing.T, model Model, text string) Model {
	t.Helper()
	for _, r := range text {
		model = press(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return model
}

func enter() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} }

func respond(t *testing.T, model Model, response greetd.Response) Model {
	t.Helper()
	return press(t, model, responseMsg{response: response})
}

func TestLoginFlowThroughUI(t *testing.T) {
	model, sender := newTestModel(false)

	model = typeText(t, model, "bob")
	model = press(t, model, enter())
	if model.focus != FocusWaiting {
		t.Fatalf("focus = %v after username submit, want waiting", model.focus)
	}
	if _, ok := sender.sent[0].(greetd.CreateSession); !ok {
		t.Fatalf("first request = %#v, want CreateSession", sender.sent[0])
	}

	model = respond(t, model, greetd.AuthMessage{Kind: greetd.AuthSecret, Message: "Password: "})
	if model.focus != FocusPrompt {
		t.Fatalf("focus = %v after secret prompt, want prompt", model.focus)
	}
	if model.promptInput.EchoMode != textinput.EchoPassword {
		t.Error("secret prompt must mask input")
	}
	if model.promptLabel != "Password:" {
		t.Errorf("promptLabel = %q", model.promptLabel)
	}

	model = typeText(t, model, "hunter2")
	model = press(t, model, enter())
	if model.focus != FocusWaiting {
		t.Fatalf("focus = %v after credential submit, want waiting", model.focus)
	}

	model = respond(t, model, greetd.Success{})
	if model.focus != FocusSessions {
		t.Fatalf("focus = %v after auth success, want sessions", model.focus)
	}

	// Pick the second entry (the configured default, preselected).
	if model.cursor != 1 {
		t.Errorf("cursor = %d, want default command preselected", model.cursor)
	}
	model = press(t, model, enter())
	start, ok := sender.sent[len(sender.sent)-1].(greetd.StartSession)
	if !ok {
		t.Fatalf("last request = %#v, want StartSession", sender.sent[len(sender.sent)-1])
	}
	if len(start.Command) != 1 || start.Command[0] != "sway" {
		t.Errorf("StartSession command = %v", start.Command)
	}

	model = respond(t, model, greetd.Success{})
	started, command := model.Started()
	if !started {
		t.Fatal("Started() = false after start confirmation")
	}
	if strings.Join(command, " ") != "sway" {
		t.Errorf("started command = %v", command)
	}
}

func TestVisiblePromptIsNotMasked(t *testing.T) {
	model, _ := newTestModel(false)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())

	model = respond(t, model, greetd.AuthMessage{Kind: greetd.AuthVisible, Message: "Login token:"})
	if model.promptInput.EchoMode != textinput.EchoNormal {
		t.Error("visible prompt must echo input")
	}
}

func TestAuthFailureReturnsToUsernameForm(t *testing.T) {
	model, _ := newTestModel(false)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())

	model = respond(t, model, greetd.ErrorResponse{Kind: greetd.ErrorKindAuth, Description: "bad password"})
	if model.focus != FocusUsername {
		t.Fatalf("focus = %v after failure, want username form", model.focus)
	}
	if model.statusKind != statusError || model.statusText != "bad password" {
		t.Errorf("status = %q/%v, want daemon description verbatim", model.statusText, model.statusKind)
	}

	// Retrying must work directly from the failed state.
	model = press(t, model, enter())
	if model.session.Phase() != greetd.PhaseAwaitingSessionCreation {
		t.Errorf("phase after retry = %s", model.session.Phase())
	}
}

func TestEscCancelsBackToUsernameForm(t *testing.T) {
	model, sender := newTestModel(false)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())
	model = respond(t, model, greetd.AuthMessage{Kind: greetd.AuthSecret, Message: "?"})

	model = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.focus != FocusUsername {
		t.Fatalf("focus = %v after esc, want username form", model.focus)
	}
	if _, ok := sender.sent[len(sender.sent)-1].(greetd.CancelSession); !ok {
		t.Errorf("last request = %#v, want CancelSession", sender.sent[len(sender.sent)-1])
	}
	if model.session.Phase() != greetd.PhaseIdle {
		t.Errorf("phase after cancel = %s, want idle", model.session.Phase())
	}
}

func TestInfoNoticeShowsInStatusLine(t *testing.T) {
	model, _ := newTestModel(false)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())

	model = respond(t, model, greetd.AuthMessage{Kind: greetd.AuthInfo, Message: "Welcome back"})
	if model.statusKind != statusInfo || model.statusText != "Welcome back" {
		t.Errorf("status = %q/%v", model.statusText, model.statusKind)
	}
	if model.focus != FocusWaiting {
		t.Errorf("focus = %v, notices must not steal focus", model.focus)
	}
}

func TestOfflineModeExploration(t *testing.T) {
	model, _ := newTestModel(true)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())
	if model.focus != FocusSessions {
		t.Fatalf("focus = %v, offline submit should open the picker", model.focus)
	}

	model = press(t, model, enter())
	if !strings.Contains(model.statusText, "would start") {
		t.Errorf("status = %q, offline start must be a dry run", model.statusText)
	}

	if !strings.Contains(model.View(), "offline") {
		t.Error("offline banner missing from view")
	}
}

func TestConnectionLostSurfacesGenericFailure(t *testing.T) {
	model, _ := newTestModel(false)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())

	model = press(t, model, connectionLostMsg{err: greetd.ErrConnectionLost})
	if model.focus != FocusUsername {
		t.Fatalf("focus = %v after connection loss", model.focus)
	}
	if model.statusText != "cannot reach login service" {
		t.Errorf("status = %q, must not look like a credential failure", model.statusText)
	}
}

func TestListenerShutdownSurfacesConnectionLoss(t *testing.T) {
	// A daemon disconnect closes the response channel without any
	// write failing; the UI must not sit waiting forever.
	sender := &recordingSender{}
	session := greetd.NewSession(sender, testLogger())
	cfg := &config.Config{Greeting: "hi"}
	responses := make(chan greetd.Response)
	model := NewModel(session, responses, make(chan error), nil, cfg, DarkTheme, false, testLogger())

	model = typeText(t, model, "bob")
	model = press(t, model, enter())
	if model.focus != FocusWaiting {
		t.Fatalf("focus = %v after username submit, want waiting", model.focus)
	}

	close(responses)
	message := listenForResponse(responses)()
	lost, ok := message.(connectionLostMsg)
	if !ok {
		t.Fatalf("message = %#v, want connectionLostMsg", message)
	}

	model = press(t, model, lost)
	if model.focus != FocusUsername {
		t.Fatalf("focus = %v after listener shutdown, want username form", model.focus)
	}
	if model.statusText != "cannot reach login service" {
		t.Errorf("status = %q, must not look like a credential failure", model.statusText)
	}
	if model.session.Phase() != greetd.PhaseFailed {
		t.Errorf("phase = %s, want failed", model.session.Phase())
	}
}

func TestQuitCancelsAttempt(t *testing.T) {
	model, sender := newTestModel(false)
	model = typeText(t, model, "bob")
	model = press(t, model, enter())

	updated, command := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	model = updated.(Model)
	if command == nil {
		t.Fatal("ctrl+c must produce a quit command")
	}
	if _, ok := sender.sent[len(sender.sent)-1].(greetd.CancelSession); !ok {
		t.Errorf("last request = %#v, want CancelSession before quitting", sender.sent[len(sender.sent)-1])
	}
}

func TestViewRendersGreeting(t *testing.T) {
	model, _ := newTestModel(false)
	view := model.View()
	if !strings.Contains(view, "hi") {
		t.Error("greeting missing from view")
	}
	if !strings.Contains(view, "Username") {
		t.Error("username label missing from view")
	}
}

func TestHelpLineDerivesFromKeyBindings(t *testing.T) {
	model, _ := newTestModel(false)
	if got := model.helpLine(); !strings.Contains(got, "enter submit") {
		t.Errorf("helpLine = %q, want the Submit binding's help text", got)
	}

	model.keys.Submit = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("ret", "go"),
	)
	if got := model.helpLine(); !strings.Contains(got, "ret go") {
		t.Errorf("helpLine = %q, rebinding must be reflected", got)
	}
}
