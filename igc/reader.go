// igc/reader.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/mmp/igc/log"
)

// Free-text records (comments, task point names) can be long; allow
// much more than bufio's 64k default.
const maxLineLength = 1 << 20

// ReadLines splits r into lines, stripping "\n" and "\r\n" terminators.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLength)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func ParseReader(r io.Reader, lg *log.Logger) (*Flight, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Parse(lines, lg)
}

// ParseFile reads and parses the IGC file at path. A missing file gives
// an error wrapping ErrPathNotFound.
func ParseFile(path string, lg *log.Logger) (*Flight, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrPathNotFound)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	flight, err := ParseReader(f, lg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flight, nil
}
