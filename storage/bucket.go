// Copyright (c) The FrostDB Authors.
// Licensed under the Apache License 2.0.
// Copyright (c) The Thanos Authors.
// Licensed under the Apache License 2.0.

// Package storage adapts object storage buckets to the random-access reads
// parquet footers and column chunks require.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/thanos-io/objstore"
)

// Bucket is an objstore.Bucket that also supports reading objects through
// an io.ReaderAt.
type Bucket interface {
	objstore.Bucket
	GetReaderAt(ctx context.Context, name string) (io.ReaderAt, error)
}

// BucketReaderAt implements Bucket on top of any objstore.Bucket by
// translating ReadAt calls into ranged object reads.
type BucketReaderAt struct {
	objstore.Bucket
}

func NewBucketReaderAt(bucket objstore.Bucket) *BucketReaderAt {
	return &BucketReaderAt{Bucket: bucket}
}

// GetReaderAt returns an io.ReaderAt for the named object.
func (b *BucketReaderAt) GetReaderAt(ctx context.Context, name string) (io.ReaderAt, error) {
	return &objectReaderAt{Bucket: b.Bucket, name: name, ctx: ctx}, nil
}

type objectReaderAt struct {
	objstore.Bucket
	name string
	ctx  context.Context
}

// ReadAt reads len(p) bytes at offset off as a single ranged request.
func (r *objectReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	rc, err := r.GetRange(r.ctx, r.name, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	// Read does not guarantee a full buffer, ReadAt does.
	total := 0
	for total < len(p) {
		n, err = rc.Read(p[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return total, err
		}
	}
	return total, nil
}

// OpenParquet opens the named object in the bucket as a parquet file,
// serving footer and page reads as ranged requests.
func OpenParquet(ctx context.Context, bucket objstore.Bucket, name string) (*parquet.File, error) {
	attrs, err := bucket.Attributes(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	r, err := NewBucketReaderAt(bucket).GetReaderAt(ctx, name)
	if err != nil {
		return nil, err
	}
	f, err := parquet.OpenFile(r, attrs.Size)
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", name, err)
	}
	return f, nil
}
