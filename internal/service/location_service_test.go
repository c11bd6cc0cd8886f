package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareGeoJSON(minLon, minLat, maxLon, maxLat float64) string {
	return fmt.Sprintf(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},`+
		`"geometry":{"type":"Polygon","coordinates":[[[%[1]f,%[2]f],[%[3]f,%[2]f],[%[3]f,%[4]f],[%[1]f,%[4]f],[%[1]f,%[2]f]]]}}]}`,
		minLon, minLat, maxLon, maxLat)
}

func setupLocationService(t *testing.T, backend Backend) *LocationService {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pedalangan.geojson":      squareGeoJSON(110.40, -7.08, 110.44, -7.04),
		"pedalangan-rw-3.geojson": squareGeoJSON(110.41, -7.06, 110.42, -7.05),
		"kelurahan.json":          `[{"nama":"Pedalangan","rw":["RW 1","RW 2","RW 3"]}]`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	geocoderSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":"Jl. Durian Raya, Pedalangan, Semarang"}`))
	}))
	t.Cleanup(geocoderSrv.Close)

	loader := geo.NewLoader(geo.DirSource{Root: dir}, geo.LoaderOptions{
		DefaultFile:   "semarang.geojson",
		CatalogueFile: "kelurahan.json",
		Timeout:       time.Second,
	})
	geocoder := geo.NewGeocoder(geocoderSrv.URL, "gleam-test", time.Second, nil)
	return NewLocationService(backend, loader, geo.NewRegistry(loader), geocoder)
}

func TestLocationService_Boundary(t *testing.T) {
	svc := setupLocationService(t, &fakeBackend{})

	res, err := svc.Boundary(context.Background(), "sess-1", "Pedalangan", "RW 3")
	require.NoError(t, err)
	assert.Equal(t, "/data/pedalangan-rw-3.geojson", res.Path)
	assert.False(t, res.Fallback)
	require.NotNil(t, res.Bounds)
	assert.InDelta(t, 110.41, res.Bounds.MinLon, 1e-9)
	assert.NotEmpty(t, res.GeoJSON)

	res, err = svc.Boundary(context.Background(), "sess-1", "Pedalangan", "RW 9")
	require.NoError(t, err)
	assert.Equal(t, "/data/pedalangan.geojson", res.Path)
	assert.True(t, res.Fallback)

	current := svc.CurrentBoundary("sess-1")
	require.NotNil(t, current)
	assert.Equal(t, res.RequestID, current.RequestID)
	assert.Nil(t, svc.CurrentBoundary("sess-2"))

	_, err = svc.Boundary(context.Background(), "sess-1", " ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLocationService_BoundaryWithoutAnyFile(t *testing.T) {
	svc := setupLocationService(t, &fakeBackend{})

	res, err := svc.Boundary(context.Background(), "sess-1", "Tembalang", "")
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Nil(t, res.GeoJSON)
	assert.Nil(t, res.Bounds)
}

func TestLocationService_Catalogue(t *testing.T) {
	svc := setupLocationService(t, &fakeBackend{})
	entries, err := svc.Catalogue(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"RW 1", "RW 2", "RW 3"}, entries[0].RW)
}

func TestLocationService_SaveMine(t *testing.T) {
	backend := &fakeBackend{handle: func(c backendCall) (interface{}, error) {
		req := c.Body.(dto.SaveLocationRequest)
		return dto.UserLocation{UserID: "42", Latitude: req.Latitude, Longitude: req.Longitude, Kelurahan: req.Kelurahan, RW: req.RW, Address: req.Address}, nil
	}}
	svc := setupLocationService(t, backend)

	t.Run("inside boundary fills address", func(t *testing.T) {
		loc, err := svc.SaveMine(context.Background(), "tok", dto.SaveLocationRequest{Latitude: -7.055, Longitude: 110.415, Kelurahan: "Pedalangan", RW: "RW 3"})
		require.NoError(t, err)
		assert.Equal(t, "Jl. Durian Raya, Pedalangan, Semarang", loc.Address)
	})

	t.Run("outside boundary", func(t *testing.T) {
		_, err := svc.SaveMine(context.Background(), "tok", dto.SaveLocationRequest{Latitude: -7.07, Longitude: 110.43, Kelurahan: "Pedalangan", RW: "RW 3"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "latitude", verr.Fields[0].Field)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := svc.SaveMine(context.Background(), "tok", dto.SaveLocationRequest{Latitude: math.NaN(), Longitude: 110.41, Kelurahan: "Pedalangan"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "latitude", verr.Fields[0].Field)
	})

	t.Run("missing kelurahan", func(t *testing.T) {
		_, err := svc.SaveMine(context.Background(), "tok", dto.SaveLocationRequest{Latitude: -7.05, Longitude: 110.41})
		assert.ErrorIs(t, err, ErrValidation)
	})

	assert.Equal(t, 1, backend.count("POST", "/locations/me"))
}

func TestLocationService_UserLocations(t *testing.T) {
	backend := &fakeBackend{handle: func(c backendCall) (interface{}, error) {
		return []dto.UserLocation{{UserID: "1", Latitude: -7.05, Longitude: 110.41}}, nil
	}}
	svc := setupLocationService(t, backend)

	locs, err := svc.UserLocations(context.Background(), "tok", "Pedalangan", "")
	require.NoError(t, err)
	assert.Len(t, locs, 1)
	q := backend.Calls()[0].Query
	assert.Equal(t, "Pedalangan", q.Get("kelurahan"))
	assert.False(t, q.Has("rw"))
}
