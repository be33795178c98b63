// storage/gcs.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package storage

import (
	"context"
	"io"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCSBackend struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// MakeGCSBackend returns a backend for the named bucket. If credsJSON is
// empty, application default credentials are used.
func MakeGCSBackend(ctx context.Context, bucketName string, credsJSON []byte) (*GCSBackend, error) {
	var opts []option.ClientOption
	if len(credsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credsJSON))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSBackend{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (g *GCSBackend) OpenRead(ctx context.Context, name string) (io.ReadCloser, error) {
	return g.bucket.Object(name).NewReader(ctx)
}

func (g *GCSBackend) List(ctx context.Context, prefix string) ([]string, error) {
	query := gcs.Query{
		Projection: gcs.ProjectionNoACL,
		Prefix:     prefix,
	}

	var names []string
	it := g.bucket.Objects(ctx, &query)
	for {
		if obj, err := it.Next(); err == iterator.Done {
			break
		} else if err != nil {
			return nil, err
		} else if IsIGCName(path.Base(obj.Name)) {
			names = append(names, obj.Name)
		}
	}
	return names, nil
}

func (g *GCSBackend) Close() error { return g.client.Close() }
