package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FeatureCollection(t *testing.T) {
	b, err := Parse("/data/pedalangan.geojson", squareFC(110.41, -7.06, 110.43, -7.04))
	require.NoError(t, err)

	bounds := b.Bounds()
	assert.InDelta(t, -7.06, bounds.MinLat, 1e-9)
	assert.InDelta(t, 110.43, bounds.MaxLon, 1e-9)
}

func TestParse_BareGeometry(t *testing.T) {
	data := []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)
	b, err := Parse("x", data)
	require.NoError(t, err)
	assert.True(t, b.Contains(0.5, 0.5))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("x", []byte(`<html>not found</html>`))
	assert.True(t, errors.Is(err, ErrInvalidBoundary))

	_, err = Parse("x", []byte(`{"type":"FeatureCollection","features":[]}`))
	assert.True(t, errors.Is(err, ErrInvalidBoundary))

	_, err = Parse("x", []byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.True(t, errors.Is(err, ErrInvalidBoundary))
}

func TestContains(t *testing.T) {
	b, err := Parse("p", squareFC(110.41, -7.06, 110.43, -7.04))
	require.NoError(t, err)

	assert.True(t, b.Contains(-7.05, 110.42))
	assert.False(t, b.Contains(-7.10, 110.42))
	assert.False(t, b.Contains(-7.05, 110.50))
}
