// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// panelWidth is the inner width of the login panel. Wide enough for
// PAM prompt text, narrow enough to sit comfortably on an 80-column
// console.
const panelWidth = 48

// View implements tea.Model.
func (model Model) View() string {
	if model.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(model.theme.Title).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(model.theme.LabelText)
	faintStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.Border).
		Padding(1, 2).
		Width(panelWidth + 4)

	var lines []string
	lines = append(lines, titleStyle.Render(model.config.Greeting), "")

	if model.offline {
		offlineStyle := lipgloss.NewStyle().Foreground(model.theme.OfflineText)
		lines = append(lines, offlineStyle.Render("⚠ offline: login service not connected"), "")
	}

	switch model.focus {
	case FocusUsername:
		lines = append(lines,
			labelStyle.Render("Username"),
			model.usernameInput.View(),
		)
	case FocusWaiting:
		lines = append(lines, faintStyle.Render("talking to login service…"))
	case FocusPrompt:
		lines = append(lines,
			labelStyle.Render(model.promptLabel),
			model.promptInput.View(),
		)
	case FocusSessions:
		lines = append(lines, model.sessionListLines()...)
	}

	if status := model.statusLine(); status != "" {
		lines = append(lines, "", status)
	}

	lines = append(lines, "", faintStyle.Render(model.helpLine()))

	panel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if model.width == 0 || model.height == 0 {
		return panel
	}
	return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center, panel)
}

// sessionListLines renders the session picker with the cursor row
// highlighted.
func (model Model) sessionListLines() []string {
	headerStyle := lipgloss.NewStyle().Foreground(model.theme.LabelText)
	normalStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	selectedStyle := lipgloss.NewStyle().
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground)

	lines := []string{headerStyle.Render("Select a session for " + model.session.Username())}
	if model.offline && model.session.Username() == "" {
		lines[0] = headerStyle.Render("Select a session")
	}
	if len(model.entries) == 0 {
		return append(lines, normalStyle.Render("  (no sessions found)"))
	}

	for i, entry := range model.entries {
		row := ansi.Truncate("  "+entry.Name, panelWidth, "…")
		if i == model.cursor {
			row = selectedStyle.Render(ansi.Truncate("▸ "+entry.Name, panelWidth, "…"))
		}
		lines = append(lines, row)
	}
	return lines
}

// statusLine renders the transient status: daemon notices,
// authentication failures, connection problems.
func (model Model) statusLine() string {
	if model.statusKind == statusNone || model.statusText == "" {
		return ""
	}
	color := model.theme.InfoText
	if model.statusKind == statusError {
		color = model.theme.ErrorText
	}
	text := ansi.Truncate(model.statusText, panelWidth, "…")
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// helpLine renders the bindings live for the focused region, using
// each binding's own help metadata.
func (model Model) helpLine() string {
	var bindings []key.Binding
	switch model.focus {
	case FocusUsername:
		bindings = []key.Binding{model.keys.Submit, model.keys.Quit}
	case FocusSessions:
		bindings = []key.Binding{model.keys.Up, model.keys.Down, model.keys.Submit, model.keys.Back, model.keys.Quit}
	default:
		bindings = []key.Binding{model.keys.Back, model.keys.Quit}
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " · ")
}
