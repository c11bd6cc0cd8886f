package geo

import (
	"context"
	"fmt"
	"sync"
)

// squareFC builds a FeatureCollection holding one square polygon.
func squareFC(minLon, minLat, maxLon, maxLat float64) []byte {
	return []byte(fmt.Sprintf(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},`+
		`"geometry":{"type":"Polygon","coordinates":[[[%[1]f,%[2]f],[%[3]f,%[2]f],[%[3]f,%[4]f],[%[1]f,%[4]f],[%[1]f,%[2]f]]]}}]}`,
		minLon, minLat, maxLon, maxLat))
}

// fakeSource records every requested name. Names listed in block wait until their channel
// is closed or the read context ends.
type fakeSource struct {
	mu        sync.Mutex
	files     map[string][]byte
	block     map[string]chan struct{}
	started   chan string
	requested []string
}

func newFakeSource(files map[string][]byte) *fakeSource {
	return &fakeSource{
		files:   files,
		block:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (s *fakeSource) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	s.requested = append(s.requested, name)
	wait := s.block[name]
	data, ok := s.files[name]
	s.mu.Unlock()

	select {
	case s.started <- name:
	default:
	}
	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, ErrBoundaryNotFound
	}
	return data, nil
}

func (s *fakeSource) Requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}
