package geo

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/gleam/dashboard/internal/storage"
)

var ErrBoundaryNotFound = errors.New("geo: boundary file not found")

// Source reads static map assets (boundary files and the kelurahan catalogue) by file name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// DirSource serves files from a local directory, the same one mounted at /data.
type DirSource struct {
	Root string
}

func (s DirSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Root, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBoundaryNotFound
		}
		return nil, err
	}
	return data, nil
}

// ObjectReader is the part of the MinIO client a MinIOSource needs.
type ObjectReader interface {
	GetObject(ctx context.Context, objectKey string) ([]byte, error)
}

// MinIOSource serves files stored under Prefix in the object store.
type MinIOSource struct {
	Store  ObjectReader
	Prefix string
}

func (s MinIOSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.Store.GetObject(ctx, path.Join(s.Prefix, path.Base(name)))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrBoundaryNotFound
		}
		return nil, err
	}
	return data, nil
}
