// storage/compress.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package storage

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type stackedReadCloser struct {
	io.Reader
	closers []func() error
}

func (s *stackedReadCloser) Close() error {
	var err error
	for _, c := range s.closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Decompress wraps r with a zstd or gzip decoder according to the
// extension of name; other names are returned unchanged. Closing the
// result closes r.
func Decompress(r io.ReadCloser, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".zst"):
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			r.Close()
			return nil, err
		}
		return &stackedReadCloser{
			Reader:  zr,
			closers: []func() error{func() error { zr.Close(); return nil }, r.Close},
		}, nil

	case strings.HasSuffix(strings.ToLower(name), ".gz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			r.Close()
			return nil, err
		}
		return &stackedReadCloser{Reader: gr, closers: []func() error{gr.Close, r.Close}}, nil

	default:
		return r, nil
	}
}
