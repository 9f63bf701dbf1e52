package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSource reads synced files from a local directory.
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Kind implements ByteSource.
func (s *FileSource) Kind() string { return "file" }

// Root implements Rooted.
func (s *FileSource) Root() string {
	if abs, err := filepath.Abs(s.dir); err == nil {
		return abs
	}
	return filepath.Clean(s.dir)
}

// Fetch implements ByteSource.
func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	n, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(n)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, n)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return b, nil
}
