// tile/tile.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/atlasfg/atlas/log"
)

// Task is a bitset of the work a Tile has scheduled.
type Task uint8

const (
	TaskNone      Task = 0
	TaskSync      Task = 1 << 0
	TaskHiresMap  Task = 1 << 1
	TaskLowresMap Task = 1 << 2
)

// TaskState is the tile's progress within its CurrentTask.
type TaskState int

const (
	StateNotStarted TaskState = iota
	StateCheckingObjects
	StateSyncingObjects
	StateCheckingTerrain
	StateSyncingTerrain
	StateMapping
	StateFinished
)

// Config carries everything a Tile needs to build its rsync and Map
// tool command lines. It's supplied once, at startup, and shared by
// every Tile the manager creates.
type Config struct {
	RsyncServer   string
	SceneryRoot   string
	MapExecutable string
	FGRoot        string
	AtlasRoot     string
	MapSize       int
	LowresMapSize int
}

// Tile is the scenery for one 1x1-degree region: its name, its
// scheduled tasks, and the state machine driving whichever task is
// current. Every tile is one degree wide in longitude, near the poles
// as well (LatLonToTile has no wider high-latitude tiles).
type Tile struct {
	id uuid.UUID

	name, parentDir       string
	centerLat, centerLon  float64
	hiresSize, lowresSize int

	tasks Task
	state TaskState

	toBeSyncedFiles, toBeSyncedSize int
	syncedFiles, syncedSize         int
	upToDate                        bool
	files                           map[string]int64

	proc *procDriver

	cfg Config
	lg  *log.Logger
}

// New creates a Tile for the region containing (lat, lon), probing the
// Atlas map cache for any maps already rendered for it.
func New(lat, lon float64, cfg Config, lg *log.Logger) *Tile {
	name, parentDir, centerLat, centerLon := LatLonToTile(lat, lon)
	t := &Tile{
		id: uuid.New(), name: name, parentDir: parentDir,
		centerLat: centerLat, centerLon: centerLon,
		cfg: cfg, lg: lg,
	}
	t.probeMapSizes()
	return t
}

// NewFromName creates a Tile from its standard 7-character name.
func NewFromName(name string, cfg Config, lg *log.Logger) (*Tile, error) {
	lat, lon, ok := NameToCentre(name)
	if !ok {
		return nil, fmt.Errorf("%s: malformed tile name", name)
	}
	return New(lat, lon, cfg, lg), nil
}

// NewWithSizeCache is New, but consults a previously-loaded size cache
// (see LoadSizeCache) before falling back to probing the map files'
// PNG headers directly.
func NewWithSizeCache(lat, lon float64, cfg Config, lg *log.Logger, cache map[string]cacheEntry) *Tile {
	name, parentDir, centerLat, centerLon := LatLonToTile(lat, lon)
	t := &Tile{
		id: uuid.New(), name: name, parentDir: parentDir,
		centerLat: centerLat, centerLon: centerLon,
		cfg: cfg, lg: lg,
	}
	if !t.applyCachedSizes(cache) {
		t.probeMapSizes()
	}
	return t
}

func (t *Tile) probeMapSizes() {
	if w, _, err := pngSize(filepath.Join(t.cfg.AtlasRoot, t.name+".png")); err == nil {
		t.hiresSize = w
	}
	if w, _, err := pngSize(filepath.Join(t.cfg.AtlasRoot, "lowres", t.name+".png")); err == nil {
		t.lowresSize = w
	}
}

func (t *Tile) Name() string         { return t.name }
func (t *Tile) ParentDir() string    { return t.parentDir }
func (t *Tile) Lat() float64         { return t.centerLat }
func (t *Tile) Lon() float64         { return t.centerLon }
func (t *Tile) HiresSize() int       { return t.hiresSize }
func (t *Tile) LowresSize() int      { return t.lowresSize }
func (t *Tile) HasHiresMap() bool    { return t.hiresSize > 0 }
func (t *Tile) HasLowresMap() bool   { return t.lowresSize > 0 }
func (t *Tile) ToBeSyncedFiles() int { return t.toBeSyncedFiles }
func (t *Tile) ToBeSyncedSize() int  { return t.toBeSyncedSize }
func (t *Tile) SyncedFiles() int     { return t.syncedFiles }
func (t *Tile) SyncedSize() int      { return t.syncedSize }
func (t *Tile) TaskState() TaskState { return t.state }
func (t *Tile) TaskID() string       { return t.id.String() }

func (t *Tile) SetTasks(tasks Task) { t.tasks = tasks }
func (t *Tile) Tasks() Task         { return t.tasks }

// CurrentTask returns the lowest-set bit of the task bitset, or
// TaskNone if there's nothing left to do.
func (t *Tile) CurrentTask() Task {
	switch {
	case t.tasks&TaskSync != 0:
		return TaskSync
	case t.tasks&TaskHiresMap != 0:
		return TaskHiresMap
	case t.tasks&TaskLowresMap != 0:
		return TaskLowresMap
	default:
		return TaskNone
	}
}

// NextTask clears the current task and resets state for the next one.
// Finishing Sync auto-clears the map tasks if nothing was downloaded,
// or if both maps already exist at the configured resolution and every
// synced file was already up to date: there's nothing for Map to do.
func (t *Tile) NextTask() {
	switch {
	case t.tasks&TaskSync != 0:
		t.tasks &^= TaskSync
		if t.syncedFiles == 0 {
			t.tasks = TaskNone
		} else if t.upToDate && t.cfg.MapSize == t.hiresSize && t.cfg.LowresMapSize == t.lowresSize {
			t.tasks = TaskNone
		}
	case t.tasks&TaskHiresMap != 0:
		t.tasks &^= TaskHiresMap
	case t.tasks&TaskLowresMap != 0:
		t.tasks &^= TaskLowresMap
	}
	t.state = StateNotStarted
}

// DoSomeWork advances the state machine for the current task by one
// step and returns the task that's now current (TaskNone once every
// scheduled task has finished). The caller is expected to call this
// repeatedly, as part of the main loop's cooperative scheduling (spec
// §5), until it returns TaskNone.
func (t *Tile) DoSomeWork() Task {
	switch t.CurrentTask() {
	case TaskSync:
		t.doSyncWork()
	case TaskHiresMap, TaskLowresMap:
		t.doMapWork()
	}

	if t.state == StateFinished {
		t.NextTask()
	}

	return t.CurrentTask()
}

// Abort kills any in-flight child process and abandons the current
// task, for a Tile being dropped mid-work (spec §5).
func (t *Tile) Abort() {
	if t.proc != nil {
		t.proc.abort()
		t.proc = nil
	}
}

func (t *Tile) doSyncWork() {
	switch t.state {
	case StateNotStarted:
		t.state = StateCheckingObjects
		t.startChecking()

	case StateCheckingObjects, StateCheckingTerrain:
		if !t.continueChecking() {
			switch {
			case t.toBeSyncedFiles > 0 && t.state == StateCheckingObjects:
				t.state = StateSyncingObjects
				t.upToDate = true
				t.startSyncing()
			case t.toBeSyncedFiles > 0:
				t.state = StateSyncingTerrain
				t.startSyncing()
			case t.state == StateCheckingObjects:
				t.state = StateCheckingTerrain
				t.startChecking()
			default:
				t.state = StateFinished
			}
		}

	case StateSyncingObjects, StateSyncingTerrain:
		if !t.continueSyncing() {
			if t.state == StateSyncingObjects {
				t.state = StateCheckingTerrain
				t.startChecking()
			} else {
				t.state = StateFinished
			}
		}
	}
}

func (t *Tile) doMapWork() {
	switch t.state {
	case StateNotStarted:
		t.state = StateMapping
		t.startMapping()
	case StateMapping:
		if !t.continueMapping() {
			t.state = StateFinished
		}
	}
}

func (t *Tile) startChecking() {
	t.toBeSyncedFiles, t.toBeSyncedSize = 0, 0
	t.files = make(map[string]int64)

	sub := "Objects"
	if t.state == StateCheckingTerrain {
		sub = "Terrain"
	}
	src := fmt.Sprintf("%s::Scenery/%s/%s/%s", t.cfg.RsyncServer, sub, t.parentDir, t.name)

	proc, err := startCommand("rsync", "-v", "-a", src)
	if err != nil {
		t.logError(err)
		t.state = StateFinished
		return
	}
	t.proc = proc
}

// rsyncCheckLine matches a checking-mode rsync listing line, e.g.
// "-rw-rw-r--   4260 2006/01/09 04:01:05 w120n37/5CL0.btg.gz", ignoring
// directory entries (which start with 'd', not '-').
var rsyncCheckLine = regexp.MustCompile(`^-\S+\s+(\d+)\s+\S+\s+\S+\s+\S+/(\S+)$`)

func (t *Tile) continueChecking() bool {
	lines, err := t.proc.poll()
	if err != nil {
		t.logError(err)
		t.proc = nil
		return false
	}
	for _, line := range lines {
		m := rsyncCheckLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		size, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		t.toBeSyncedFiles++
		t.toBeSyncedSize += int(size)
		t.files[m[2]] = size
	}
	return !t.proc.done()
}

func (t *Tile) startSyncing() {
	t.syncedFiles, t.syncedSize = 0, 0

	sub := "Objects"
	if t.state == StateSyncingTerrain {
		sub = "Terrain"
	}
	src := fmt.Sprintf("%s::Scenery/%s/%s/%s", t.cfg.RsyncServer, sub, t.parentDir, t.name)
	dest := filepath.Join(t.cfg.SceneryRoot, sub, t.parentDir)
	if err := os.MkdirAll(dest, 0755); err != nil {
		t.logError(err)
		t.state = StateFinished
		return
	}

	proc, err := startCommand("rsync", "-v", "-v", "-a", "--delete", src, dest)
	if err != nil {
		t.logError(err)
		t.state = StateFinished
		return
	}
	t.proc = proc
}

// rsyncSyncedLine matches a syncing-mode rsync line, which is either a
// bare relative path ("w120n37/5CL0.btg.gz") for a downloaded file, or
// the same path suffixed with " is uptodate" for one that wasn't.
var rsyncSyncedLine = regexp.MustCompile(`^\S+/(\S+?)( is uptodate)?$`)

func (t *Tile) continueSyncing() bool {
	if t.toBeSyncedFiles == 0 {
		return false
	}

	lines, err := t.proc.poll()
	if err != nil {
		t.logError(err)
		t.proc = nil
		return false
	}
	for _, line := range lines {
		m := rsyncSyncedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if size, ok := t.files[m[1]]; ok {
			t.syncedFiles++
			t.syncedSize += int(size)
		}
		if !strings.Contains(line, "uptodate") {
			t.upToDate = false
		}
	}
	return !t.proc.done()
}

func (t *Tile) startMapping() {
	size, output := t.cfg.MapSize, filepath.Join(t.cfg.AtlasRoot, t.name)
	if t.CurrentTask() == TaskLowresMap {
		size, output = t.cfg.LowresMapSize, filepath.Join(t.cfg.AtlasRoot, "lowres", t.name)
	}

	// Write to a temporary name (without ".png") so Atlas never sees a
	// partially-downloaded map; continueMapping renames it into place
	// once the tool exits.
	proc, err := startCommand(t.cfg.MapExecutable,
		"--fg-root="+t.cfg.FGRoot,
		"--fg-scenery="+t.cfg.SceneryRoot,
		fmt.Sprintf("--lat=%f", t.centerLat),
		fmt.Sprintf("--lon=%f", t.centerLon),
		"--output="+output,
		fmt.Sprintf("--size=%d", size),
		"--headless", "--autoscale")
	if err != nil {
		t.logError(err)
		t.state = StateFinished
		return
	}
	t.proc = proc
}

func (t *Tile) continueMapping() bool {
	_, err := t.proc.poll()
	if err != nil {
		t.logError(err)
		t.proc = nil
		return false
	}
	if !t.proc.done() {
		return true
	}

	resultSize, final := t.cfg.MapSize, filepath.Join(t.cfg.AtlasRoot, t.name)+".png"
	if t.CurrentTask() == TaskLowresMap {
		resultSize, final = t.cfg.LowresMapSize, filepath.Join(t.cfg.AtlasRoot, "lowres", t.name)+".png"
	}
	tmp := strings.TrimSuffix(final, ".png")

	// Delete a stale map at the old resolution before the new one takes
	// its place, rather than leaving both on disk.
	if existing, _, err := pngSize(final); err == nil && existing != resultSize {
		os.Remove(final)
	}

	if err := os.Rename(tmp, final); err != nil {
		t.logError(err)
		return false
	}

	if t.CurrentTask() == TaskHiresMap {
		t.hiresSize = resultSize
	} else {
		t.lowresSize = resultSize
	}

	return false
}

func (t *Tile) logError(err error) {
	if t.lg != nil {
		t.lg.Errorf("tile %s [%s]: %v", t.name, t.id, err)
	}
}
