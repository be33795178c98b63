// igc/reader_test.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadLines(t *testing.T) {
	got, err := ReadLines(strings.NewReader("AXCS\r\nHFDTE030922\n\r\nB111734"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"AXCS", "HFDTE030922", "", "B111734"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLines() = %q, want %q", got, want)
	}

	long := "LXXX" + strings.Repeat("x", 200000)
	got, err = ReadLines(strings.NewReader(long + "\n"))
	if err != nil {
		t.Fatalf("long line: %v", err)
	}
	if len(got) != 1 || got[0] != long {
		t.Errorf("long line was not returned intact")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "flight.igc")
	contents := strings.Join(sampleFlight, "\r\n") + "\r\n"
	if err := os.WriteFile(fn, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := ParseFile(fn, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(f.Fixes) != 2 || f.Task == nil || f.Logger == nil {
		t.Errorf("incomplete flight: %+v", f)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.igc"), nil); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing file: got error %v, want ErrPathNotFound", err)
	}

	bad := filepath.Join(dir, "bad.igc")
	if err := os.WriteFile(bad, []byte("AXCS\nB1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ParseFile(bad, nil)
	var le *LineError
	if !errors.As(err, &le) || le.Line != 2 {
		t.Errorf("got error %v, want a *LineError for line 2", err)
	}
	if !strings.Contains(err.Error(), "bad.igc") {
		t.Errorf("error %q does not name the file", err)
	}
}
