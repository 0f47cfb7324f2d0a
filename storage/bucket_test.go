package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
	"github.com/thanos-io/objstore"
)

func TestOpenParquet(t *testing.T) {
	type row struct {
		V int64 `parquet:"v"`
	}
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[row](&buf)
	_, err := w.Write([]row{{V: 1}, {V: 2}, {V: 3}})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ctx := context.Background()
	bucket := objstore.NewInMemBucket()
	require.NoError(t, bucket.Upload(ctx, "data.parquet", bytes.NewReader(buf.Bytes())))

	f, err := OpenParquet(ctx, bucket, "data.parquet")
	require.NoError(t, err)
	require.EqualValues(t, 3, f.NumRows())

	_, err = OpenParquet(ctx, bucket, "missing.parquet")
	require.Error(t, err)
}

func TestBucketReaderAt(t *testing.T) {
	ctx := context.Background()
	bucket := objstore.NewInMemBucket()
	require.NoError(t, bucket.Upload(ctx, "blob", bytes.NewReader([]byte("hello world"))))

	r, err := NewBucketReaderAt(bucket).GetReaderAt(ctx, "blob")
	require.NoError(t, err)

	p := make([]byte, 5)
	n, err := r.ReadAt(p, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(p))
}
