// palette/list.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package palette

import (
	"os"
	"path/filepath"
	"sort"
)

// NaP ("not a Palette") is the sentinel index meaning "no palette
// selected", returned by Current when the list is empty or nothing has
// been selected yet.
const NaP = -1

// List owns every loaded Palette and tracks which one is current (spec
// §4.7). It has no notification machinery of its own: the controller
// compares old/new state around each call and publishes accordingly
// (spec §4.8), the same pattern it uses for every other setter.
type List struct {
	palettes []*Palette
	current  int
}

func NewList() *List { return &List{current: NaP} }

// Load loads path, returning its index in the list. Loading a path
// already present is a no-op that returns the existing index rather
// than a duplicate entry.
func (l *List) Load(path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for i, p := range l.palettes {
		if existing, err := filepath.Abs(p.Path); err == nil && existing == abs {
			return i, nil
		}
	}

	p, err := Load(path)
	if err != nil {
		return NaP, err
	}
	l.palettes = append(l.palettes, p)
	return len(l.palettes) - 1, nil
}

// LoadDir loads every "*.ap" file in dir, in sorted-by-name order,
// skipping ones already loaded.
func (l *List) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".ap" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := l.Load(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Find looks up a palette by basename, first trying name as given and
// then retrying with ".ap" appended. Returns NaP if no loaded palette
// matches.
func (l *List) Find(name string) int {
	for i, p := range l.palettes {
		if filepath.Base(p.Path) == name {
			return i
		}
	}
	for i, p := range l.palettes {
		if filepath.Base(p.Path) == name+".ap" {
			return i
		}
	}
	return NaP
}

func (l *List) Len() int { return len(l.palettes) }

func (l *List) At(i int) *Palette {
	if i < 0 || i >= len(l.palettes) {
		return nil
	}
	return l.palettes[i]
}

// Current returns the currently selected palette, or nil if none is
// selected (Current() == NaP).
func (l *List) Current() *Palette { return l.At(l.current) }

// CurrentIndex returns the selected index, or NaP if none is selected.
func (l *List) CurrentIndex() int { return l.current }

// SetCurrent selects palette i. Passing NaP (or any out-of-range index)
// deselects.
func (l *List) SetCurrent(i int) {
	if i < 0 || i >= len(l.palettes) {
		l.current = NaP
		return
	}
	l.current = i
}

// Remove drops the palette at index i, adjusting the current selection
// if needed: the removed palette deselects, and any palette after it
// shifts down by one.
func (l *List) Remove(i int) {
	if i < 0 || i >= len(l.palettes) {
		return
	}
	l.palettes = append(l.palettes[:i], l.palettes[i+1:]...)

	switch {
	case l.current == i:
		l.current = NaP
	case l.current > i:
		l.current--
	}
}
