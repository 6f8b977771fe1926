// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package sessions

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeEntry(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "sway.desktop", `[Desktop Entry]
# the usual suspect
Name=Sway
Comment=An i3-compatible Wayland compositor
Exec=sway %U
Type=Application
`)

	entry, err := ParseFile(filepath.Join(dir, "sway.desktop"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if entry.Name != "Sway" {
		t.Errorf("Name = %q", entry.Name)
	}
	if !reflect.DeepEqual(entry.Command, []string{"sway"}) {
		t.Errorf("Command = %v, field codes must be stripped", entry.Command)
	}
}

func TestParseFileIgnoresOtherGroups(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "kde.desktop", `[Desktop Entry]
Name=Plasma
Exec=startplasma-wayland
[Desktop Action foo]
Name=Something Else
Exec=rm -rf /
`)
	entry, err := ParseFile(filepath.Join(dir, "kde.desktop"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if entry.Name != "Plasma" || entry.Command[0] != "startplasma-wayland" {
		t.Errorf("entry = %+v, keys outside [Desktop Entry] leaked in", entry)
	}
}

func TestParseFileHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "hidden.desktop", "[Desktop Entry]\nName=Gone\nExec=gone\nHidden=true\n")
	writeEntry(t, dir, "nodisplay.desktop", "[Desktop Entry]\nName=Shy\nExec=shy\nNoDisplay=true\n")

	for _, name := range []string{"hidden.desktop", "nodisplay.desktop"} {
		if _, err := ParseFile(filepath.Join(dir, name)); err == nil {
			t.Errorf("ParseFile(%s) should reject hidden entries", name)
		}
	}
}

func TestParseFileMissingFields(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "broken.desktop", "[Desktop Entry]\nName=No Exec Here\n")
	if _, err := ParseFile(filepath.Join(dir, "broken.desktop")); err == nil {
		t.Error("ParseFile should reject entries without Exec")
	}
}

func TestDiscoverOrderingAndShadowing(t *testing.T) {
	primary := t.TempDir()
	secondary := t.TempDir()

	writeEntry(t, primary, "b-sway.desktop", "[Desktop Entry]\nName=Sway\nExec=sway\n")
	writeEntry(t, primary, "a-river.desktop", "[Desktop Entry]\nName=River\nExec=river\n")
	// Same file name in the later dir: shadowed by the earlier one.
	writeEntry(t, secondary, "b-sway.desktop", "[Desktop Entry]\nName=Old Sway\nExec=sway-old\n")
	writeEntry(t, secondary, "z-cage.desktop", "[Desktop Entry]\nName=Cage\nExec=cage\n")
	// Malformed files are skipped, not fatal.
	writeEntry(t, secondary, "junk.desktop", "Name=Not even a group\n")

	entries := Discover([]string{primary, secondary, filepath.Join(primary, "no-such-dir")})

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	want := []string{"River", "Sway", "Cage"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Discover order = %v, want %v", names, want)
	}
}
