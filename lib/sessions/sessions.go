// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package sessions

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one launchable session: a display name and the command
// line that starts it.
type Entry struct {
	// Name is the localizable display name (the unlocalized Name=
	// key; session listing localization is out of scope).
	Name string

	// Command is the Exec= value split into argv, with desktop-entry
	// field codes (%U and friends) removed.
	Command []string
}

// DefaultDirs returns the standard session-entry search path:
// wayland-sessions and xsessions under each $XDG_DATA_DIRS component
// (or the /usr/local/share:/usr/share default).
func DefaultDirs() []string {
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	var dirs []string
	for _, dataDir := range strings.Split(dataDirs, ":") {
		if dataDir == "" {
			continue
		}
		dirs = append(dirs,
			filepath.Join(dataDir, "wayland-sessions"),
			filepath.Join(dataDir, "xsessions"),
		)
	}
	return dirs
}

// Discover scans dirs (DefaultDirs when empty) for .desktop session
// entries. Entries are ordered by file name within each directory,
// directories in the given order; hidden entries and files that do
// not parse are skipped. A missing directory is not an error.
func Discover(dirs []string) []Entry {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}

	var entries []Entry
	seen := make(map[string]bool)
	for _, dir := range dirs {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(dirEntries))
		for _, dirEntry := range dirEntries {
			if !dirEntry.IsDir() && strings.HasSuffix(dirEntry.Name(), ".desktop") {
				names = append(names, dirEntry.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			if seen[name] {
				// Earlier data dirs shadow later ones, matching the
				// XDG_DATA_DIRS precedence rule.
				continue
			}
			entry, err := ParseFile(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			seen[name] = true
			entries = append(entries, entry)
		}
	}
	return entries
}

// ParseFile reads one .desktop file and extracts a session Entry.
// Returns an error for hidden entries and files missing a usable
// Name or Exec.
func ParseFile(path string) (Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer file.Close()

	var name, execLine string
	inDesktopEntry := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["):
			// Keys only count inside the main group; Desktop Action
			// groups and the like are ignored.
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		case !inDesktopEntry:
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			if name == "" {
				name = value
			}
		case "Exec":
			execLine = value
		case "Hidden", "NoDisplay":
			if value == "true" {
				return Entry{}, fmt.Errorf("%s: entry is hidden", path)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Entry{}, err
	}

	command := splitExec(execLine)
	if name == "" || len(command) == 0 {
		return Entry{}, fmt.Errorf("%s: missing Name or Exec", path)
	}
	return Entry{Name: name, Command: command}, nil
}

// splitExec turns an Exec= value into argv, dropping the %-field
// codes that only make sense for file-opening applications.
func splitExec(execLine string) []string {
	var command []string
	for _, field := range strings.Fields(execLine) {
		if strings.HasPrefix(field, "%") {
			continue
		}
		command = append(command, field)
	}
	return command
}
