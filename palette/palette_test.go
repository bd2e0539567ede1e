// palette/palette_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package palette

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestPalette(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	contents := "# test palette\n" +
		"base 0\n" +
		"elevation 0 0 100 0\n" +
		"elevation 1000 200 200 0\n" +
		"material Island 0 0 255\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadParsesBandsAndMaterials(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPalette(t, dir, "test.ap")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(p.Entries))
	}
	if c, ok := p.Materials["Island"]; !ok || c.B != 255 {
		t.Errorf("Materials[Island] = %v, ok=%v, want blue", c, ok)
	}
	if c, ok := p.ColorAt(500); !ok || c.G != 100 {
		t.Errorf("ColorAt(500) = %v, ok=%v, want the 0m band", c, ok)
	}
	if c, ok := p.ColorAt(1500); !ok || c.R != 200 {
		t.Errorf("ColorAt(1500) = %v, ok=%v, want the 1000m band", c, ok)
	}
}

func TestListLoadDeduplicatesByPath(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPalette(t, dir, "test.ap")

	l := NewList()
	i1, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	i2, err := l.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if i1 != i2 {
		t.Errorf("loading the same path twice returned indices %d, %d, want equal", i1, i2)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestListFindRetriesWithApExtension(t *testing.T) {
	dir := t.TempDir()
	writeTestPalette(t, dir, "default.ap")

	l := NewList()
	if err := l.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if l.Find("default") == NaP {
		t.Errorf("Find(%q) = NaP, want a match via .ap retry", "default")
	}
	if l.Find("default.ap") == NaP {
		t.Errorf("Find(%q) = NaP, want a direct match", "default.ap")
	}
	if l.Find("nonexistent") != NaP {
		t.Errorf("Find(nonexistent) should be NaP")
	}
}

func TestSetCurrentAndRemove(t *testing.T) {
	dir := t.TempDir()
	writeTestPalette(t, dir, "a.ap")
	writeTestPalette(t, dir, "b.ap")

	l := NewList()
	if err := l.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if l.CurrentIndex() != NaP {
		t.Fatalf("CurrentIndex() = %d before any selection, want NaP", l.CurrentIndex())
	}

	l.SetCurrent(1)
	if l.Current() == nil {
		t.Fatalf("Current() is nil after SetCurrent(1)")
	}

	l.Remove(0)
	if l.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() after removing an earlier entry = %d, want 0", l.CurrentIndex())
	}

	l.Remove(0)
	if l.CurrentIndex() != NaP {
		t.Errorf("CurrentIndex() after removing the current entry = %d, want NaP", l.CurrentIndex())
	}
}
