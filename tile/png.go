// tile/png.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tile

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/atlasfg/atlas/atlaserr"
)

var pngSignature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// pngSize reads just enough of file to determine whether it's a valid
// PNG and, if so, its width and height: the 8-byte signature followed
// by the IHDR chunk's length, type, and big-endian width/height
// (offsets 16 and 20). It never reads the rest of the file.
func pngSize(file string) (width, height int, err error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var buf [24]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return 0, 0, &atlaserr.BadPng{File: file}
	}

	if !bytes.Equal(buf[:8], pngSignature[:]) {
		return 0, 0, &atlaserr.BadPng{File: file}
	}
	if string(buf[12:16]) != "IHDR" {
		return 0, 0, &atlaserr.BadPng{File: file}
	}

	width = int(binary.BigEndian.Uint32(buf[16:20]))
	height = int(binary.BigEndian.Uint32(buf[20:24]))
	return width, height, nil
}
