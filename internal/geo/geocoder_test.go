package geo

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAddressCache struct {
	mu      sync.Mutex
	entries map[[2]float64]string
}

func newMemoryAddressCache() *memoryAddressCache {
	return &memoryAddressCache{entries: make(map[[2]float64]string)}
}

func (c *memoryAddressCache) Find(lat, lon float64) (*domain.GeocodeCache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr, ok := c.entries[[2]float64{lat, lon}]
	if !ok {
		return nil, errors.New("not found")
	}
	return &domain.GeocodeCache{Latitude: lat, Longitude: lon, Address: addr}, nil
}

func (c *memoryAddressCache) Save(lat, lon float64, address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[[2]float64{lat, lon}] = address
	return nil
}

func TestGeocoder_Reverse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "gleam-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Jalan Prof. Soedarto, Tembalang, Semarang"}`))
	}))
	defer srv.Close()

	cache := newMemoryAddressCache()
	g := NewGeocoder(srv.URL, "gleam-test", time.Second, cache)

	resp, err := g.Reverse(context.Background(), -7.05, 110.44)
	require.NoError(t, err)
	assert.Equal(t, "Jalan Prof. Soedarto, Tembalang, Semarang", resp.Address)
	assert.False(t, resp.Fallback)

	_, err = g.Reverse(context.Background(), -7.05, 110.44)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "second lookup should be served from cache")
}

func TestGeocoder_FallsBackToCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"geocoder error body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
		}},
		{"empty address", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"display_name":"  "}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			cache := newMemoryAddressCache()
			g := NewGeocoder(srv.URL, "gleam-test", time.Second, cache)

			resp, err := g.Reverse(context.Background(), -7.051234, 110.441234)
			require.NoError(t, err)
			assert.True(t, resp.Fallback)
			assert.Equal(t, "-7.051234, 110.441234", resp.Address)
			assert.Empty(t, cache.entries, "fallback labels must not be cached")
		})
	}
}

func TestGeocoder_InvalidCoordinates(t *testing.T) {
	g := NewGeocoder("http://127.0.0.1:0", "gleam-test", time.Second, nil)

	_, err := g.Reverse(context.Background(), 91, 110)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = g.Reverse(context.Background(), -7, 181)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = g.Reverse(context.Background(), math.NaN(), math.NaN())
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = g.Reverse(context.Background(), -7.05, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = g.Reverse(context.Background(), math.Inf(1), 110)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestGeocoder_CancelledContext(t *testing.T) {
	g := NewGeocoder("http://127.0.0.1:0", "gleam-test", time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Reverse(ctx, -7.05, 110.44)
	assert.ErrorIs(t, err, context.Canceled)
}
