package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/geo"
)

// LocationService backs the map: boundary overlays per session, reverse geocoding and the
// patient markers stored upstream.
type LocationService struct {
	backend  Backend
	loader   *geo.Loader
	registry *geo.Registry
	geocoder *geo.Geocoder
}

func NewLocationService(backend Backend, loader *geo.Loader, registry *geo.Registry, geocoder *geo.Geocoder) *LocationService {
	return &LocationService{backend: backend, loader: loader, registry: registry, geocoder: geocoder}
}

func (s *LocationService) Catalogue(ctx context.Context) ([]dto.KelurahanEntry, error) {
	return s.loader.Catalogue(ctx)
}

// Boundary selects a kelurahan/RW for the session. A selection that was overtaken by a
// newer one from the same session returns geo.ErrSuperseded.
func (s *LocationService) Boundary(ctx context.Context, sessionID, kelurahan, rw string) (*dto.BoundaryResponse, error) {
	kelurahan = strings.TrimSpace(kelurahan)
	rw = strings.TrimSpace(rw)
	if kelurahan == "" {
		return nil, invalid("kelurahan", "Kelurahan wajib dipilih")
	}

	sel, err := s.registry.Get(sessionID).Select(ctx, kelurahan, rw)
	if err != nil {
		return nil, err
	}
	return boundaryResponse(sel), nil
}

// CurrentBoundary returns the session's committed overlay, or nil before any selection.
func (s *LocationService) CurrentBoundary(sessionID string) *dto.BoundaryResponse {
	sel := s.registry.Get(sessionID).Current()
	if sel == nil {
		return nil
	}
	return boundaryResponse(sel)
}

func (s *LocationService) Reverse(ctx context.Context, lat, lon float64) (*dto.ReverseGeocodeResponse, error) {
	return s.geocoder.Reverse(ctx, lat, lon)
}

func (s *LocationService) UserLocations(ctx context.Context, token, kelurahan, rw string) ([]dto.UserLocation, error) {
	q := url.Values{}
	if kelurahan = strings.TrimSpace(kelurahan); kelurahan != "" {
		q.Set("kelurahan", kelurahan)
	}
	if rw = strings.TrimSpace(rw); rw != "" {
		q.Set("rw", rw)
	}
	locations := []dto.UserLocation{}
	if err := s.backend.Get(ctx, "/locations/users", q, token, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// SaveMine stores the caller's marker. The point must lie inside the chosen kelurahan/RW
// boundary when one is available; an empty address is filled by reverse geocoding.
func (s *LocationService) SaveMine(ctx context.Context, token string, req dto.SaveLocationRequest) (*dto.UserLocation, error) {
	req.Kelurahan = strings.TrimSpace(req.Kelurahan)
	req.RW = strings.TrimSpace(req.RW)
	req.Address = strings.TrimSpace(req.Address)

	v := &ValidationError{}
	if req.Kelurahan == "" {
		v.add("kelurahan", "Kelurahan wajib dipilih")
	}
	if !geo.ValidCoordinates(req.Latitude, req.Longitude) || (req.Latitude == 0 && req.Longitude == 0) {
		v.add("latitude", "Koordinat tidak valid")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	res, err := s.loader.Resolve(ctx, req.Kelurahan, req.RW)
	if err != nil {
		return nil, err
	}
	if res.Boundary != nil && !res.Boundary.Contains(req.Latitude, req.Longitude) {
		return nil, invalid("latitude", "Lokasi berada di luar batas wilayah yang dipilih")
	}

	if req.Address == "" {
		addr, err := s.geocoder.Reverse(ctx, req.Latitude, req.Longitude)
		if err != nil {
			return nil, err
		}
		req.Address = addr.Address
	}

	var saved dto.UserLocation
	if err := s.backend.Post(ctx, "/locations/me", token, req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ForgetSession discards the session's selector, cancelling any load it has in flight.
func (s *LocationService) ForgetSession(sessionID string) {
	s.registry.Drop(sessionID)
}

func boundaryResponse(sel *geo.Selection) *dto.BoundaryResponse {
	res := sel.Resolution
	out := &dto.BoundaryResponse{
		RequestID: sel.RequestID,
		Kelurahan: res.Kelurahan,
		RW:        res.RW,
		Path:      res.Path,
		Fallback:  res.Fallback,
	}
	if res.Boundary != nil {
		out.Bounds = res.Boundary.Bounds()
		out.GeoJSON = res.Boundary.Raw
	}
	return out
}
