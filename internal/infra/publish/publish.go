// Package publish persists built artifacts under their partition keys.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local copies artifacts into a directory tree rooted at root.
type Local struct {
	root string
}

// NewLocal creates a local publisher.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Put copies localPath to root/key. The destination appears atomically.
func (l *Local) Put(ctx context.Context, localPath, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".publish-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to copy %s: %w", localPath, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// ObjectPutter uploads a local file.
type ObjectPutter interface {
	PutFile(ctx context.Context, bucket, key, path string) error
}

// S3 uploads artifacts to a lake bucket. Datasets listed in overrides go to
// their own bucket.
type S3 struct {
	putter    ObjectPutter
	bucket    string
	overrides map[string]string
}

// NewS3 creates an S3 publisher.
func NewS3(putter ObjectPutter, bucket string, overrides map[string]string) *S3 {
	return &S3{putter: putter, bucket: bucket, overrides: overrides}
}

// Put uploads localPath under key.
func (s *S3) Put(ctx context.Context, localPath, key string) error {
	return s.putter.PutFile(ctx, s.bucketFor(key), key, localPath)
}

func (s *S3) bucketFor(key string) string {
	dataset, _, _ := strings.Cut(key, "/")
	if b := s.overrides[dataset]; b != "" {
		return b
	}
	return s.bucket
}
