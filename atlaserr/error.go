// atlaserr/error.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package atlaserr defines the error kinds used across Atlas's data
// loaders and live I/O, plus ErrorLogger, a small accumulator for
// reporting many non-fatal errors (e.g. bad records in a navaid file)
// without aborting the operation that found them.
package atlaserr

import (
	"fmt"
	"os"
	"strings"

	"github.com/atlasfg/atlas/log"
)

// IoError wraps an I/O failure encountered while reading a data file or
// live stream.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// ParseError reports a failure to parse a specific line of a file.
type ParseError struct {
	File string
	Line int
	Why  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Why)
}

// BadVersion reports a data file whose version header didn't match what
// the loader expects.
type BadVersion struct {
	File     string
	Expected string
	Found    string
}

func (e *BadVersion) Error() string {
	return fmt.Sprintf("%s: expected version %q, found %q", e.File, e.Expected, e.Found)
}

// BadRecord reports a single unparseable record; loaders log these and
// continue rather than treating them as fatal.
type BadRecord struct {
	File string
	Line int
	Why  string
}

func (e *BadRecord) Error() string {
	return fmt.Sprintf("%s:%d: bad record: %s", e.File, e.Line, e.Why)
}

// DuplicateTrack reports an attempt to load or attach a flight-track
// source (path, port, or device) that's already in use.
type DuplicateTrack struct {
	Source string
}

func (e *DuplicateTrack) Error() string {
	return fmt.Sprintf("%s: already loaded or attached", e.Source)
}

// ChildSpawnFailed reports a tile worker's failure to start an external
// process (rsync or the map tool).
type ChildSpawnFailed struct {
	Cmd   string
	Cause error
}

func (e *ChildSpawnFailed) Error() string {
	return fmt.Sprintf("%s: %v", e.Cmd, e.Cause)
}
func (e *ChildSpawnFailed) Unwrap() error { return e.Cause }

// BadPng reports a cached map tile whose PNG header couldn't be parsed.
type BadPng struct {
	File string
}

func (e *BadPng) Error() string { return fmt.Sprintf("%s: malformed PNG header", e.File) }

///////////////////////////////////////////////////////////////////////////

// ErrorLogger accumulates non-fatal errors found while validating or
// parsing a batch of records (a navaid file, a directory of flight
// tracks), tracking a small context stack so each accumulated message
// can say where in the input it occurred.
type ErrorLogger struct {
	hierarchy []string
	errors    []string
}

func (e *ErrorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *ErrorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *ErrorLogger) ErrorString(s string, args ...interface{}) {
	e.errors = append(e.errors, strings.Join(e.hierarchy, " / ")+": "+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, strings.Join(e.hierarchy, " / ")+": "+err.Error())
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	// Two loops so they aren't interleaved with logging to stdout.
	if lg != nil {
		for _, err := range e.errors {
			lg.Errorf("%s", err)
		}
	}
	for _, err := range e.errors {
		fmt.Fprintln(os.Stderr, err)
	}
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.errors, "\n")
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.hierarchy)
}

// CheckDepth verifies the Push/Pop stack returned to depth d; call it
// via defer right after Push to catch a missing Pop.
func (e *ErrorLogger) CheckDepth(d int) {
	if e == nil || e.CurrentDepth() == d {
		return
	}
	if r := recover(); r == nil {
		panic(fmt.Sprintf("ErrorLogger: initial depth %d, final depth %d", d, e.CurrentDepth()))
	} else {
		panic(r)
	}
}
