package geo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gleam/dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pedalangan.geojson"), []byte(`{}`), 0o644))
	src := DirSource{Root: dir}

	data, err := src.Read(context.Background(), "pedalangan.geojson")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	_, err = src.Read(context.Background(), "tembalang.geojson")
	assert.ErrorIs(t, err, ErrBoundaryNotFound)

	// Names cannot climb out of the data directory.
	_, err = src.Read(context.Background(), "../../etc/pedalangan.geojson")
	require.NoError(t, err)
}

type mapObjects map[string][]byte

func (m mapObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	if data, ok := m[key]; ok {
		return data, nil
	}
	if key == "geo/broken.geojson" {
		return nil, errors.New("connection reset")
	}
	return nil, storage.ErrObjectNotFound
}

func TestMinIOSource(t *testing.T) {
	src := MinIOSource{Store: mapObjects{"geo/pedalangan.geojson": []byte(`{}`)}, Prefix: "geo"}

	data, err := src.Read(context.Background(), "pedalangan.geojson")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	_, err = src.Read(context.Background(), "tembalang.geojson")
	assert.ErrorIs(t, err, ErrBoundaryNotFound)

	_, err = src.Read(context.Background(), "broken.geojson")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBoundaryNotFound)
}
