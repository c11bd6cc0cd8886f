package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

var ErrInvalidCoordinates = errors.New("geo: coordinates out of range")

// AddressCache persists reverse-geocoding answers.
type AddressCache interface {
	Find(lat, lon float64) (*domain.GeocodeCache, error)
	Save(lat, lon float64, address string) error
}

// Geocoder reverse-geocodes map clicks against a Nominatim-compatible service.
type Geocoder struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	cache     AddressCache
}

func NewGeocoder(baseURL, userAgent string, timeout time.Duration, cache AddressCache) *Geocoder {
	return &Geocoder{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
		cache:     cache,
	}
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ValidCoordinates rejects NaN and anything outside the WGS84 range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CoordinateLabel is the text used in place of an address when geocoding fails.
func CoordinateLabel(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

// Reverse never fails on a geocoder problem: it falls back to the raw coordinates and
// reports Fallback. Only invalid coordinates or a cancelled ctx return an error.
func (g *Geocoder) Reverse(ctx context.Context, lat, lon float64) (*dto.ReverseGeocodeResponse, error) {
	if !ValidCoordinates(lat, lon) {
		return nil, ErrInvalidCoordinates
	}

	resp := &dto.ReverseGeocodeResponse{Latitude: lat, Longitude: lon}

	if g.cache != nil {
		if entry, err := g.cache.Find(lat, lon); err == nil {
			resp.Address = entry.Address
			return resp, nil
		}
	}

	address, err := g.lookup(ctx, lat, lon)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("[Geo] Reverse geocode %f,%f failed: %v", lat, lon, err)
		resp.Address = CoordinateLabel(lat, lon)
		resp.Fallback = true
		return resp, nil
	}

	resp.Address = address
	if g.cache != nil {
		if err := g.cache.Save(lat, lon, address); err != nil {
			log.Printf("[Geo] Failed to cache address: %v", err)
		}
	}
	return resp, nil
}

func (g *Geocoder) lookup(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("accept-language", "id")

	code, body, err := upstream.Send(ctx, upstream.SendOptions{
		Method:    fiber.MethodGet,
		URL:       g.baseURL + "/reverse?" + q.Encode(),
		UserAgent: g.userAgent,
		Timeout:   g.timeout,
	})
	if err != nil {
		return "", err
	}
	if code != fiber.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", code)
	}

	var out nominatimReverse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode geocoder response: %w", err)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	if strings.TrimSpace(out.DisplayName) == "" {
		return "", errors.New("geocoder returned no address")
	}
	return out.DisplayName, nil
}
