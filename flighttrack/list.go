// flighttrack/list.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flighttrack

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/atlasfg/atlas/atlaserr"
)

// List is the controller's collection of flight tracks, kept sorted by
// NiceName so a UI can present them in a stable order. It's the sole
// owner of every Track it holds (spec §5: "the flight-track list is
// exclusively owned by the controller").
type List struct {
	tracks []*Track
}

func NewList() *List { return &List{} }

func (l *List) Tracks() []*Track { return l.tracks }
func (l *List) Len() int         { return len(l.tracks) }

// LoadFile adds a file-backed track, rejecting a path already open
// elsewhere in the list.
func (l *List) LoadFile(path string) (*Track, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for _, t := range l.tracks {
		if t.HasFile() {
			if existing, err := filepath.Abs(t.FilePath()); err == nil && existing == abs {
				return nil, &atlaserr.DuplicateTrack{Source: path}
			}
		}
	}

	t, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	l.insert(t)
	return t, nil
}

// AddUDP adds a live network track, rejecting a port already bound by
// another track in the list.
func (l *List) AddUDP(port, maxBuffer int) (*Track, error) {
	for _, t := range l.tracks {
		if t.IsNetwork() && t.Port() == port {
			return nil, &atlaserr.DuplicateTrack{Source: fmt.Sprintf("udp:%d", port)}
		}
	}

	t, err := NewUDP(port, maxBuffer)
	if err != nil {
		return nil, err
	}
	l.insert(t)
	return t, nil
}

// AddSerial adds a live serial track, rejecting a device already open
// by another track in the list.
func (l *List) AddSerial(device string, baud, maxBuffer int) (*Track, error) {
	for _, t := range l.tracks {
		if t.IsSerial() && t.Device() == device {
			return nil, &atlaserr.DuplicateTrack{Source: device}
		}
	}

	t, err := NewSerial(device, baud, maxBuffer)
	if err != nil {
		return nil, err
	}
	l.insert(t)
	return t, nil
}

// Remove drops t from the list without touching its I/O channel; the
// caller should Detach it first if it's still live.
func (l *List) Remove(t *Track) {
	for i, x := range l.tracks {
		if x == t {
			l.tracks = append(l.tracks[:i], l.tracks[i+1:]...)
			return
		}
	}
}

// Detach closes t's I/O channel (via Track.Detach) and re-sorts the
// list. The track keeps its port or device, so its NiceName, and with
// it the sort order, is unchanged by detaching.
func (l *List) Detach(t *Track) {
	t.Detach()
	l.resort()
}

func (l *List) Clear() { l.tracks = nil }

// SaveAs renames t's backing file and saves it, then re-sorts the list
// since NiceName is derived from the file name.
func (l *List) SaveAs(t *Track, path string) error {
	t.SetFilePath(path)
	if err := t.Save(); err != nil {
		return err
	}
	l.resort()
	return nil
}

// CheckForInput polls every live track in the list and returns the
// total number of samples added across all of them.
func (l *List) CheckForInput() int {
	total := 0
	for _, t := range l.tracks {
		if t.Live() {
			total += t.CheckForInput()
		}
	}
	return total
}

func (l *List) insert(t *Track) {
	l.tracks = append(l.tracks, t)
	l.resort()
}

func (l *List) resort() {
	sort.SliceStable(l.tracks, func(i, j int) bool {
		return l.tracks[i].NiceName() < l.tracks[j].NiceName()
	})
}
