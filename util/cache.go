// util/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mmp/igc/igc"
	"github.com/mmp/igc/log"

	"github.com/brunoga/deep"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const cacheSuffix = ".msgpack.zst"

// FlightCache memoizes parsed flights by the hash of the file contents.
// Recently used flights are kept in memory; if a directory is given, all
// flights are also stored there so that later runs can skip parsing.
//
// Flights returned by Get are copies, so callers may modify them freely.
// It is safe for concurrent use.
type FlightCache struct {
	mem *expirable.LRU[string, *igc.Flight]
	dir string
	lg  *log.Logger
}

// DefaultCacheDir returns the directory used for the on-disk flight cache.
func DefaultCacheDir() (string, error) {
	cd, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, "igcdump", "flights"), nil
}

// NewFlightCache returns a cache holding up to memSize flights in memory.
// An empty dir disables the disk cache.
func NewFlightCache(memSize int, dir string, lg *log.Logger) *FlightCache {
	return &FlightCache{
		mem: expirable.NewLRU[string, *igc.Flight](max(memSize, 1), nil, time.Hour),
		dir: dir,
		lg:  lg,
	}
}

// CacheKey returns the key for a file with the given contents.
func CacheKey(contents []byte) string {
	h := sha256.Sum256(contents)
	return hex.EncodeToString(h[:])
}

func (c *FlightCache) path(key string) string {
	return filepath.Join(c.dir, key[:2], key+cacheSuffix)
}

func (c *FlightCache) Get(key string) (*igc.Flight, bool) {
	if f, ok := c.mem.Get(key); ok {
		return deep.MustCopy(f), true
	}
	if c.dir == "" {
		return nil, false
	}

	f, err := c.load(key)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.lg.Warnf("%s: unable to read cached flight: %v", key, err)
		}
		return nil, false
	}
	c.mem.Add(key, f)
	return deep.MustCopy(f), true
}

func (c *FlightCache) load(key string) (*igc.Flight, error) {
	r, err := os.Open(c.path(key))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var f igc.Flight
	if err := msgpack.NewDecoder(zr).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Put adds a copy of f to the cache.
func (c *FlightCache) Put(key string, f *igc.Flight) error {
	f = deep.MustCopy(f)
	c.mem.Add(key, f)
	if c.dir == "" {
		return nil
	}

	fn := c.path(key)
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}

	// Write to a temporary file and rename so that concurrent readers
	// never see a partial entry.
	tmp, err := os.CreateTemp(filepath.Dir(fn), key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	zw, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		tmp.Close()
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(f); err != nil {
		zw.Close()
		tmp.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fn)
}

// Cull removes the least recently modified disk entries until the disk
// cache uses at most maxBytes.
func (c *FlightCache) Cull(maxBytes int64) error {
	if c.dir == "" {
		return nil
	}
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil // Nothing to cull
	}

	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []fileInfo
	var totalSize int64

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, cacheSuffix) {
			return nil
		}
		if info, err := d.Info(); err == nil {
			files = append(files, fileInfo{path: path, size: info.Size(), modTime: info.ModTime()})
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Sort files by modification time, oldest first
	slices.SortFunc(files, func(a, b fileInfo) int {
		return a.modTime.Compare(b.modTime)
	})

	for len(files) > 0 && totalSize > maxBytes {
		f := files[0]
		if err := os.Remove(f.path); err == nil {
			totalSize -= f.size
			c.lg.Debugf("%s: culled from flight cache", f.path)
		}
		files = files[1:]
	}

	return nil
}
