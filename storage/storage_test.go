// storage/storage_test.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mmp/igc/igc"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const sampleIGC = "ALXV4YT,FLIGHT:1\r\nHFDTE030922\r\nB1117344818577N01806797EA007590085500210\r\n"

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		want    Location
		wantErr bool
	}{
		{name: "flights/a.igc", want: Location{Path: "flights/a.igc"}},
		{name: "gs://bucket/2022/a.igc", want: Location{Scheme: "gs", Bucket: "bucket", Path: "2022/a.igc"}},
		{name: "s3://logs/", want: Location{Scheme: "s3", Bucket: "logs", Path: ""}},
		{name: "ftp://host/a.igc", wantErr: true},
		{name: "gs:///a.igc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	for _, s := range []string{"a/b.igc", "gs://bucket/a/b.igc", "s3://bucket/x.igc.zst"} {
		loc, err := ParseLocation(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if loc.String() != s {
			t.Errorf("String() = %q, want %q", loc.String(), s)
		}
	}
}

func TestIsIGCName(t *testing.T) {
	for name, want := range map[string]bool{
		"flight.igc":     true,
		"FLIGHT.IGC":     true,
		"flight.igc.zst": true,
		"flight.igc.gz":  true,
		"flight.txt":     false,
		"flight.zst":     false,
		"igc":            false,
	} {
		if got := IsIGCName(name); got != want {
			t.Errorf("IsIGCName(%q) = %v, want %v", name, got, want)
		}
	}
}

func writeFile(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatal(err)
	}
}

func zstdBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plain.igc"), []byte(sampleIGC))
	writeFile(t, filepath.Join(dir, "z.igc.zst"), zstdBytes(t, []byte(sampleIGC)))
	writeFile(t, filepath.Join(dir, "g.igc.gz"), gzipBytes(t, []byte(sampleIGC)))

	o := NewOpener(Credentials{}, nil)
	defer o.Close()

	for _, name := range []string{"plain.igc", "z.igc.zst", "g.igc.gz"} {
		t.Run(name, func(t *testing.T) {
			r, err := o.Open(context.Background(), filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer r.Close()

			b, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if string(b) != sampleIGC {
				t.Errorf("got %q, want %q", b, sampleIGC)
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	o := NewOpener(Credentials{}, nil)
	_, err := o.Open(context.Background(), filepath.Join(t.TempDir(), "missing.igc"))
	if !errors.Is(err, igc.ErrPathNotFound) {
		t.Errorf("got error %v, want ErrPathNotFound", err)
	}
}

func TestExpandLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.igc"), []byte(sampleIGC))
	writeFile(t, filepath.Join(dir, "sub", "a.igc.zst"), zstdBytes(t, []byte(sampleIGC)))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not a flight"))

	o := NewOpener(Credentials{}, nil)
	got, err := o.Expand(context.Background(), []string{dir, "other.igc"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{
		filepath.Join(dir, "b.igc"),
		filepath.Join(dir, "sub", "a.igc.zst"),
		"other.igc",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestDecompressPassThrough(t *testing.T) {
	r := io.NopCloser(bytes.NewReader([]byte(sampleIGC)))
	dr, err := Decompress(r, "flight.igc")
	if err != nil {
		t.Fatal(err)
	}
	if dr != r {
		t.Errorf("uncompressed reader should be returned unchanged")
	}
}
