package repository

import (
	"fmt"
	"math"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GeocodeRepository struct {
	db *gorm.DB
}

func NewGeocodeRepository(db *gorm.DB) *GeocodeRepository {
	return &GeocodeRepository{db: db}
}

// GeocodeKey rounds the coordinates to 5 decimals.
func GeocodeKey(lat, lon float64) string {
	return fmt.Sprintf("%.5f,%.5f", round5(lat), round5(lon))
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// Find returns the cached address and bumps its hit counter.
func (r *GeocodeRepository) Find(lat, lon float64) (*domain.GeocodeCache, error) {
	var entry domain.GeocodeCache
	key := GeocodeKey(lat, lon)
	if err := r.db.Where("coord_key = ?", key).First(&entry).Error; err != nil {
		return nil, err
	}
	r.db.Model(&domain.GeocodeCache{}).
		Where("coord_key = ?", key).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1"))
	return &entry, nil
}

// Save upserts the address for the rounded coordinates.
func (r *GeocodeRepository) Save(lat, lon float64, address string) error {
	entry := domain.GeocodeCache{
		CoordKey:  GeocodeKey(lat, lon),
		Latitude:  round5(lat),
		Longitude: round5(lon),
		Address:   address,
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coord_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
	}).Create(&entry).Error
}

func (r *GeocodeRepository) PurgeOlderThan(age time.Duration) (int64, error) {
	res := r.db.Where("updated_at < ?", time.Now().Add(-age)).Delete(&domain.GeocodeCache{})
	return res.RowsAffected, res.Error
}
