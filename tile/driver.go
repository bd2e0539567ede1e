// tile/driver.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tile

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"github.com/atlasfg/atlas/atlaserr"
)

// pollTimeout bounds how long a single poll of a child process's stdout
// may block; Tile.DoSomeWork is called from the same
// single-threaded main loop as flighttrack's CheckForInput (spec §5),
// so it must always return promptly.
const pollTimeout = 5 * time.Millisecond

// procDriver drives one external process (rsync or the Map tool)
// non-blockingly, accumulating its stdout into complete lines. It
// mirrors the original reader's popen-plus-fcntl(O_NONBLOCK) design,
// but uses a read deadline on the pipe's *os.File instead, the same
// technique flighttrack's udpSource uses for its own non-blocking poll.
type procDriver struct {
	cmd    *exec.Cmd
	stdout *os.File
	buf    bytes.Buffer
	eof    bool
}

// startCommand starts name with args, capturing stdout for polling.
// Stderr is discarded, matching the original's "2> /dev/null" redirects.
func startCommand(name string, args ...string) (*procDriver, error) {
	cmd := exec.Command(name, args...)
	rc, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &atlaserr.ChildSpawnFailed{Cmd: name, Cause: err}
	}
	f, ok := rc.(*os.File)
	if !ok {
		return nil, &atlaserr.ChildSpawnFailed{Cmd: name, Cause: errors.New("stdout pipe has no file descriptor")}
	}
	if err := cmd.Start(); err != nil {
		return nil, &atlaserr.ChildSpawnFailed{Cmd: name, Cause: err}
	}
	return &procDriver{cmd: cmd, stdout: f}, nil
}

// poll drains whatever the OS currently has buffered without blocking,
// and returns every complete line accumulated so far (across however
// many poll calls it took to see a newline).
func (d *procDriver) poll() ([]string, error) {
	if d.eof {
		return nil, nil
	}

	d.stdout.SetReadDeadline(time.Now().Add(pollTimeout))
	var chunk [4096]byte
	for {
		n, err := d.stdout.Read(chunk[:])
		if n > 0 {
			d.buf.Write(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.eof = true
				d.stdout.Close()
				d.cmd.Wait()
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}

	var lines []string
	for {
		s := d.buf.Bytes()
		i := bytes.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(s[:i]))
		d.buf.Next(i + 1)
	}
	return lines, nil
}

// done reports whether the process has exited and every byte of its
// stdout has been drained.
func (d *procDriver) done() bool { return d.eof }

// abort kills the process and closes its pipe without waiting for a
// graceful exit, for a tile being dropped mid-task (spec §5: "a tile
// worker with a stuck child process must be abandoned by the caller").
func (d *procDriver) abort() {
	if d.eof {
		return
	}
	d.stdout.Close()
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.cmd.Wait()
	d.eof = true
}
