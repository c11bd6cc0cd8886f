package dto

import "encoding/json"

// UserLocation is a patient's saved position on the map.
type UserLocation struct {
	UserID    ID      `json:"user_id"`
	Nama      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Kelurahan string  `json:"kelurahan"`
	RW        string  `json:"rw"`
	Address   string  `json:"address"`
}

type SaveLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Kelurahan string  `json:"kelurahan"`
	RW        string  `json:"rw"`
	Address   string  `json:"address"`
}

// KelurahanEntry is one row of the kelurahan -> RW catalogue.
type KelurahanEntry struct {
	Nama string   `json:"nama"`
	RW   []string `json:"rw"`
}

type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

type BoundaryResponse struct {
	RequestID uint64          `json:"request_id"`
	Kelurahan string          `json:"kelurahan"`
	RW        string          `json:"rw,omitempty"`
	Path      string          `json:"path,omitempty"`
	Fallback  bool            `json:"fallback"`
	Bounds    *Bounds         `json:"bounds,omitempty"`
	GeoJSON   json.RawMessage `json:"geojson,omitempty"`
}

type ReverseGeocodeResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Fallback  bool    `json:"fallback"`
}
