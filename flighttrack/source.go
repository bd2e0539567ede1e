// flighttrack/source.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flighttrack

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.bug.st/serial"
)

// pollTimeout bounds how long a live source's Poll call may block
// waiting for data; the main loop's check_for_input is a periodic
// non-blocking tick (spec §5), so Poll must always return promptly,
// with whatever (possibly nothing) the OS has buffered.
const pollTimeout = 5 * time.Millisecond

const readChunk = 4096

// Source is a live byte stream a Track reads from: a UDP socket or a
// serial device. Poll is non-blocking: it returns promptly with
// whatever bytes are currently available (possibly none) rather than
// waiting for a full message.
type Source interface {
	Poll() ([]byte, error)
	Close() error
}

// udpSource reads flight-track messages from a UDP socket, the way
// FlightGear's own network output works: one packet per line.
type udpSource struct {
	conn *net.UDPConn
	buf  [readChunk]byte
}

func newUDPSource(port int) (*udpSource, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}
	return &udpSource{conn: conn}, nil
}

func (u *udpSource) Poll() ([]byte, error) {
	u.conn.SetReadDeadline(time.Now().Add(pollTimeout))
	n, err := u.conn.Read(u.buf[:])
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, err
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, nil
		}
		return nil, err
	}
	// A UDP datagram carries exactly one line; the line buffer expects
	// line endings, which FlightGear's sender already appends, but add
	// one defensively in case it doesn't.
	out := make([]byte, n)
	copy(out, u.buf[:n])
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

func (u *udpSource) Close() error { return u.conn.Close() }

// serialSource reads flight-track messages from a serial device at a
// fixed baud rate, grounded on banshee-data-velocity.report's
// RadarPort: a go.bug.st/serial port opened with a short read timeout
// so polling it never blocks the main loop.
type serialSource struct {
	port serial.Port
	buf  [readChunk]byte
}

func newSerialSource(device string, baud int) (*serialSource, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}
	if err := port.SetReadTimeout(pollTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return &serialSource{port: port}, nil
}

func (s *serialSource) Poll() ([]byte, error) {
	n, err := s.port.Read(s.buf[:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, s.buf[:n])
	return out, nil
}

func (s *serialSource) Close() error { return s.port.Close() }

// lineBuffer accumulates a live or file byte stream into complete,
// non-blank lines and groups them three at a time (spec §4.5: "each
// message is three lines... Blank lines are skipped").
type lineBuffer struct {
	leftover string
	pending  []string
}

func (lb *lineBuffer) feed(data []byte) [][3]string {
	lb.leftover += string(data)

	var groups [][3]string
	for {
		i := strings.IndexByte(lb.leftover, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(lb.leftover[:i], "\r")
		lb.leftover = lb.leftover[i+1:]

		if strings.TrimSpace(line) == "" {
			continue
		}

		lb.pending = append(lb.pending, line)
		if len(lb.pending) == 3 {
			groups = append(groups, [3]string{lb.pending[0], lb.pending[1], lb.pending[2]})
			lb.pending = lb.pending[:0]
		}
	}

	return groups
}
