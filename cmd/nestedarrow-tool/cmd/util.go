package cmd

import (
	"context"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/thanos-io/objstore/providers/filesystem"

	"github.com/polarsignals/nestedarrow/storage"
)

// openParquetFile opens a local parquet file through the bucket adapter, so
// the tool reads files exactly the way the library reads object storage.
func openParquetFile(ctx context.Context, file string) (*parquet.File, error) {
	dir, name := filepath.Split(file)
	if dir == "" {
		dir = "."
	}
	bucket, err := filesystem.NewBucket(dir)
	if err != nil {
		return nil, err
	}
	return storage.OpenParquet(ctx, bucket, name)
}
