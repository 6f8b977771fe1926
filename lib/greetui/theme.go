// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the greeter's color palette. Colors are ANSI 256
// codes for broad terminal compatibility — a greeter runs on the bare
// console as often as inside a fancy emulator.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Form chrome.
	Title       lipgloss.Color
	Border      lipgloss.Color
	LabelText   lipgloss.Color
	InputPrompt lipgloss.Color

	// Selected session row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Status line flavors.
	InfoText    lipgloss.Color
	ErrorText   lipgloss.Color
	OfflineText lipgloss.Color

	HelpText lipgloss.Color
}

// DarkTheme is the palette for dark backgrounds (the common case for
// a console greeter).
var DarkTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	Title:              lipgloss.Color("81"),
	Border:             lipgloss.Color("240"),
	LabelText:          lipgloss.Color("117"),
	InputPrompt:        lipgloss.Color("81"),
	SelectedBackground: lipgloss.Color("24"),
	SelectedForeground: lipgloss.Color("255"),
	InfoText:           lipgloss.Color("114"),
	ErrorText:          lipgloss.Color("203"),
	OfflineText:        lipgloss.Color("179"),
	HelpText:           lipgloss.Color("241"),
}

// LightTheme is the palette for light backgrounds.
var LightTheme = Theme{
	NormalText:         lipgloss.Color("235"),
	FaintText:          lipgloss.Color("245"),
	Title:              lipgloss.Color("25"),
	Border:             lipgloss.Color("250"),
	LabelText:          lipgloss.Color("25"),
	InputPrompt:        lipgloss.Color("25"),
	SelectedBackground: lipgloss.Color("153"),
	SelectedForeground: lipgloss.Color("232"),
	InfoText:           lipgloss.Color("28"),
	ErrorText:          lipgloss.Color("160"),
	OfflineText:        lipgloss.Color("130"),
	HelpText:           lipgloss.Color("248"),
}

// DetectTheme picks a palette from the terminal's reported background
// color. Call before the bubbletea program takes over the terminal.
func DetectTheme() Theme {
	if termenv.HasDarkBackground() {
		return DarkTheme
	}
	return LightTheme
}
