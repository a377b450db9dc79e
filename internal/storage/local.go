package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore is a disk-backed BlobStore for development and single-node
// deployments. Files land under root and are served under urlPrefix.
type LocalStore struct {
	root      string
	urlPrefix string
}

func NewLocalStore(root, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *LocalStore) Upload(ctx context.Context, r io.Reader, path string, progress ProgressFunc) (string, error) {
	rel, err := s.clean(path)
	if err != nil {
		return "", err
	}
	clean := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	f, err := os.Create(clean)
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	defer f.Close()

	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return "", fmt.Errorf("failed to write blob: %w", writeErr)
			}
			written += int64(n)
			if progress != nil {
				progress(written)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("failed to read upload: %w", readErr)
		}
	}

	return s.urlPrefix + "/" + filepath.ToSlash(rel), nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	rel, err := s.clean(path)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// clean normalizes a blob path so it cannot escape the store root.
func (s *LocalStore) clean(path string) (string, error) {
	rel := filepath.Clean("/" + filepath.FromSlash(path))
	if rel == "/" {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return strings.TrimPrefix(rel, string(filepath.Separator)), nil
}
