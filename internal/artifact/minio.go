package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FetchMinIO downloads the named objects into dir and returns the local paths in the
// same order. An object keeps its base name locally.
func FetchMinIO(ctx context.Context, opts MinIOOptions, dir string, objects ...string) ([]string, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", opts.Bucket)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	paths := make([]string, 0, len(objects))
	for _, obj := range objects {
		dst := LocalPath(dir, obj)
		if err := client.FGetObject(ctx, opts.Bucket, obj, dst, minio.GetObjectOptions{}); err != nil {
			return nil, fmt.Errorf("download %s/%s: %w", opts.Bucket, obj, err)
		}
		paths = append(paths, dst)
	}
	return paths, nil
}

// LocalPath is where FetchMinIO stores an object.
func LocalPath(dir, object string) string {
	return filepath.Join(dir, filepath.Base(filepath.FromSlash(object)))
}
