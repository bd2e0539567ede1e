// flighttrack/track.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flighttrack

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atlasfg/atlas/atlaserr"
	"github.com/atlasfg/atlas/geo"
)

// DefaultTolerance is the default position-change tolerance (in
// degrees) below which a new sample is rejected as a near-duplicate of
// the previous one: 1 arc second, per spec §4.5.
const DefaultTolerance = 1.0 / 60.0 / 60.0

// Track is one flight-recording session: a bounded ring of samples read
// from a file or, for a live track, accumulated from a socket or serial
// stream as it arrives.
type Track struct {
	samples   []*Sample
	maxBuffer int // 0 = unbounded
	mark      int // -1 = none; live tracks always follow the tail

	version           uint64
	versionAtLastSave uint64

	isAtlasProtocol bool

	filePath string

	port   int    // non-zero for a network track
	device string // non-empty for a serial track
	baud   int

	src  Source // nil once detached or for a file-only track
	live bool

	buf lineBuffer
}

// LoadFile reads a flight-track file in its entirety, splitting it into
// three-line message groups and adding every sample unconditionally
// (the reader's original "-1.0 tolerance" behaviour, since a replay
// should keep every recorded point rather than deduplicating).
func LoadFile(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &atlaserr.IoError{Path: path, Err: err}
	}

	t := &Track{mark: -1, filePath: path}
	t.ingest(data, -1.0)
	t.versionAtLastSave = t.version
	return t, nil
}

// NewUDP creates a live track that listens on a UDP port.
func NewUDP(port, maxBuffer int) (*Track, error) {
	src, err := newUDPSource(port)
	if err != nil {
		return nil, err
	}
	return &Track{mark: -1, maxBuffer: maxBuffer, port: port, src: src, live: true}, nil
}

// NewSerial creates a live track that reads a serial device at the
// given baud rate.
func NewSerial(device string, baud, maxBuffer int) (*Track, error) {
	src, err := newSerialSource(device, baud)
	if err != nil {
		return nil, err
	}
	return &Track{mark: -1, maxBuffer: maxBuffer, device: device, baud: baud, src: src, live: true}, nil
}

func (t *Track) IsAtlasProtocol() bool { return t.isAtlasProtocol }
func (t *Track) IsNetwork() bool       { return t.port != 0 }
func (t *Track) IsSerial() bool        { return t.device != "" }
func (t *Track) Port() int             { return t.port }
func (t *Track) Device() string        { return t.device }
func (t *Track) Baud() int             { return t.baud }
func (t *Track) MaxBufferSize() int    { return t.maxBuffer }
func (t *Track) Version() uint64       { return t.version }
func (t *Track) Size() int             { return len(t.samples) }
func (t *Track) Empty() bool           { return len(t.samples) == 0 }
func (t *Track) Live() bool            { return t.live }
func (t *Track) Modified() bool        { return t.versionAtLastSave < t.version }
func (t *Track) HasFile() bool         { return t.filePath != "" }
func (t *Track) FilePath() string      { return t.filePath }

func (t *Track) FileName() string {
	if t.filePath == "" {
		return ""
	}
	return filepath.Base(t.filePath)
}

func (t *Track) SetMaxBufferSize(n int) { t.maxBuffer = n }

func (t *Track) SetFilePath(path string) {
	t.filePath = path
	t.version++
	t.versionAtLastSave = 0
}

// At returns the i'th sample, or nil if i is out of range.
func (t *Track) At(i int) *Sample {
	if i < 0 || i >= len(t.samples) {
		return nil
	}
	return t.samples[i]
}

func (t *Track) Last() *Sample { return t.At(len(t.samples) - 1) }

// Current returns the sample at the live tail if this track is live, or
// the marked sample otherwise.
func (t *Track) Current() *Sample {
	if t.live || t.mark < 0 {
		return t.Last()
	}
	return t.At(t.mark)
}

// Mark returns the currently marked index, or -1 if there is none (the
// live-tracks-follow-the-tail case).
func (t *Track) Mark() int { return t.mark }

func (t *Track) SetMark(i int) {
	if i < 0 || i >= len(t.samples) {
		t.mark = -1
		return
	}
	t.mark = i
}

func (t *Track) Clear() {
	t.samples = nil
	t.mark = -1
	t.version++
}

// Detach closes the live I/O channel (if any), marking the track no
// longer live, but preserves every sample already accumulated.
func (t *Track) Detach() {
	if t.src != nil {
		t.src.Close()
		t.src = nil
	}
	t.live = false
}

// CheckForInput polls a live track's source for whatever the OS has
// buffered since the last call, parses any complete message triples out
// of it, and appends the resulting samples. It returns the number of
// samples added. Called on a file-backed or already-detached track it
// does nothing.
func (t *Track) CheckForInput() int {
	if t.src == nil {
		return 0
	}

	data, err := t.src.Poll()
	if err != nil {
		t.Detach()
		return 0
	}
	if len(data) == 0 {
		return 0
	}

	return t.ingest(data, DefaultTolerance)
}

// ingest feeds data through the line buffer, parses every complete
// message it yields, and adds the resulting samples (subject to
// tolerance). It returns the count actually added.
func (t *Track) ingest(data []byte, tolerance float64) int {
	added := 0
	for _, group := range t.buf.feed(data) {
		sample, atlas, ok := parseMessage(group)
		if !ok {
			continue
		}
		// The protocol flavour is learned from every successfully
		// parsed triple, even one the tolerance filter goes on to
		// reject, matching the original reader's behaviour.
		t.isAtlasProtocol = atlas
		if t.addPoint(sample, tolerance) {
			added++
		}
	}
	return added
}

// addPoint applies the insertion filter and derived-value maintenance
// from spec §4.5, then appends data to the ring (evicting the oldest
// sample first if the track is over its buffer limit).
func (t *Track) addPoint(data *Sample, tolerance float64) bool {
	var lastLat, lastLon float64
	if len(t.samples) > 0 {
		last := t.samples[len(t.samples)-1]
		lastLat, lastLon = last.Lat, last.Lon
	} else {
		lastLat, lastLon = -99.0, -99.0
	}

	if data.isParkedSentinel() {
		return false
	}

	if abs(lastLat-data.Lat) < tolerance && abs(lastLon-data.Lon) < tolerance {
		return false
	}

	if t.maxBuffer != 0 && len(t.samples) >= t.maxBuffer {
		t.samples = t.samples[1:]
		t.adjustOffsetsAround(0)
		t.calcDistancesFrom(0)
	}

	t.samples = append(t.samples, data)
	t.adjustOffsetsAround(len(t.samples) - 1)
	t.calcDistancesFrom(len(t.samples) - 1)
	t.version++

	return true
}

// adjustOffsetsAround recomputes est_t_offset for every sample from the
// start of the integer-time run containing index i through the end of
// the track, distributing offsets evenly within each run (spec §4.5).
func (t *Track) adjustOffsetsAround(i int) {
	n := len(t.samples)
	if i < 0 || i >= n {
		return
	}

	j := i - 1
	for j >= 0 && sameIntTime(t.samples[i], t.samples[j]) {
		j--
	}
	j++

	start := t.samples[0].Time.Unix()
	cur := t.samples[j].Time.Unix()
	intervalStart := j
	subPoints := 0
	flush := func() {
		subInterval := 1.0 / float64(subPoints)
		for m := 0; m < subPoints; m++ {
			t.samples[intervalStart+m].EstTOffsetS = float64(cur-start) + float64(m)*subInterval
		}
	}
	for k := j; k < n; k++ {
		if d := t.samples[k]; d.Time.Unix() != cur {
			flush()
			cur = d.Time.Unix()
			intervalStart = k
			subPoints = 0
		}
		subPoints++
	}
	flush()
}

func sameIntTime(a, b *Sample) bool { return a.Time.Unix() == b.Time.Unix() }

// calcDistancesFrom recomputes CumDistM for sample i and every sample
// after it, assuming sample i-1's distance is already correct.
func (t *Track) calcDistancesFrom(i int) {
	n := len(t.samples)
	if i >= n {
		return
	}
	if i == 0 {
		t.samples[0].CumDistM = 0
		i++
	}
	for ; i < n; i++ {
		prev, cur := t.samples[i-1], t.samples[i]
		cur.CumDistM = prev.CumDistM + geo.Distance(cur.Cart, prev.Cart)
	}
}

// NiceName produces a human-readable label for the track, matching the
// original reader's "<kind> (<source>[, <file>[*]])" convention.
func (t *Track) NiceName() string {
	switch {
	case t.IsNetwork():
		if t.HasFile() {
			if t.Modified() {
				return fmt.Sprintf("network (%d, %s*)", t.port, t.FileName())
			}
			return fmt.Sprintf("network (%d, %s)", t.port, t.FileName())
		}
		return fmt.Sprintf("network (%d)", t.port)
	case t.IsSerial():
		if t.HasFile() {
			if t.Modified() {
				return fmt.Sprintf("serial (%s, %d, %s*)", t.device, t.baud, t.FileName())
			}
			return fmt.Sprintf("serial (%s, %d, %s)", t.device, t.baud, t.FileName())
		}
		return fmt.Sprintf("serial (%s, %d)", t.device, t.baud)
	case t.HasFile():
		if t.Modified() {
			return t.FileName() + "*"
		}
		return t.FileName()
	default:
		return "detached, no file"
	}
}

// Save writes the track to its file path in the wire format it was
// recorded in, if it has a path and has unsaved changes.
func (t *Track) Save() error {
	if !t.HasFile() || !t.Modified() {
		return nil
	}

	f, err := os.Create(t.filePath)
	if err != nil {
		return &atlaserr.IoError{Path: t.filePath, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range t.samples {
		for _, line := range writeMessage(s, t.isAtlasProtocol) {
			fmt.Fprintln(w, line)
		}
	}
	if err := w.Flush(); err != nil {
		return &atlaserr.IoError{Path: t.filePath, Err: err}
	}

	t.versionAtLastSave = t.version
	return nil
}
