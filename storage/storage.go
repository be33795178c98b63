// storage/storage.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package storage provides read access to IGC files on the local
// filesystem, in Google Cloud Storage buckets, and in S3 buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mmp/igc/igc"
	"github.com/mmp/igc/log"
)

type Backend interface {
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
	// List returns the names of all IGC files under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

var ErrUnsupportedScheme = errors.New("Unsupported URL scheme")

// IsIGCName reports whether name looks like an IGC file, possibly
// compressed.
func IsIGCName(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range []string{".zst", ".gz"} {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.HasSuffix(name, ".igc")
}

///////////////////////////////////////////////////////////////////////////
// LocalBackend

type LocalBackend struct{}

func (LocalBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, igc.ErrPathNotFound)
	}
	return f, err
}

func (LocalBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(prefix, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && IsIGCName(path) {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", prefix, igc.ErrPathNotFound)
	}
	slices.Sort(files)
	return files, err
}

func (LocalBackend) Close() error { return nil }

///////////////////////////////////////////////////////////////////////////
// URL handling

// Location is a parsed input name: a bucket object for gs:// and s3://
// URLs, or a local path.
type Location struct {
	Scheme string // "gs", "s3", or "" for local files
	Bucket string
	Path   string
}

func (l Location) String() string {
	if l.Scheme == "" {
		return l.Path
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Path
}

func ParseLocation(name string) (Location, error) {
	scheme, rest, ok := strings.Cut(name, "://")
	if !ok {
		return Location{Path: name}, nil
	}
	if scheme != "gs" && scheme != "s3" {
		return Location{}, fmt.Errorf("%s: %w", name, ErrUnsupportedScheme)
	}
	bucket, path, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%s: missing bucket name", name)
	}
	return Location{Scheme: scheme, Bucket: bucket, Path: path}, nil
}

// Credentials configures access to the cloud backends.
type Credentials struct {
	GCSCredentialsJSON []byte // if empty, application default credentials are used
	S3Region           string
}

// Opener opens inputs by URL, creating cloud backends on first use and
// keeping them open until Close is called. It is safe for concurrent use.
type Opener struct {
	Credentials Credentials
	lg          *log.Logger

	mu       sync.Mutex
	backends map[string]Backend // by scheme+bucket
}

func NewOpener(creds Credentials, lg *log.Logger) *Opener {
	return &Opener{
		Credentials: creds,
		lg:          lg,
		backends:    make(map[string]Backend),
	}
}

// Prepare creates the backend for loc if it doesn't already exist.
func (o *Opener) Prepare(ctx context.Context, loc Location) (Backend, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := loc.Scheme + "/" + loc.Bucket
	if b, ok := o.backends[key]; ok {
		return b, nil
	}

	var b Backend
	var err error
	switch loc.Scheme {
	case "":
		b = LocalBackend{}
	case "gs":
		b, err = MakeGCSBackend(ctx, loc.Bucket, o.Credentials.GCSCredentialsJSON)
	case "s3":
		b, err = MakeS3Backend(ctx, loc.Bucket, o.Credentials.S3Region)
	default:
		err = fmt.Errorf("%s: %w", loc.Scheme, ErrUnsupportedScheme)
	}
	if err != nil {
		return nil, err
	}
	o.lg.Debugf("%s: created storage backend", key)
	o.backends[key] = b
	return b, nil
}

// Open returns the decompressed contents of the named input.
func (o *Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	loc, err := ParseLocation(name)
	if err != nil {
		return nil, err
	}
	b, err := o.Prepare(ctx, loc)
	if err != nil {
		return nil, err
	}
	r, err := b.OpenRead(ctx, loc.Path)
	if err != nil {
		return nil, err
	}
	return Decompress(r, loc.Path)
}

// Expand replaces each name that refers to a directory (or, for buckets,
// ends in "/") with the IGC files found below it. Other names are passed
// through unchanged.
func (o *Opener) Expand(ctx context.Context, names []string) ([]string, error) {
	var result []string
	for _, name := range names {
		loc, err := ParseLocation(name)
		if err != nil {
			return nil, err
		}

		isDir := strings.HasSuffix(name, "/")
		if loc.Scheme == "" && !isDir {
			fi, err := os.Stat(name)
			isDir = err == nil && fi.IsDir()
		}
		if !isDir {
			result = append(result, name)
			continue
		}

		b, err := o.Prepare(ctx, loc)
		if err != nil {
			return nil, err
		}
		files, err := b.List(ctx, loc.Path)
		if err != nil {
			return nil, err
		}
		o.lg.Infof("%s: found %d IGC files", name, len(files))
		for _, f := range files {
			result = append(result, Location{Scheme: loc.Scheme, Bucket: loc.Bucket, Path: f}.String())
		}
	}
	return result, nil
}

func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, b := range o.backends {
		errs = append(errs, b.Close())
	}
	clear(o.backends)
	return errors.Join(errs...)
}
