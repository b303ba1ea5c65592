package property

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"hyderabadinfra/server/internal/models"
)

var ErrNotFound = errors.New("property not found")

// Store is the authoritative property store. Counter updates go through
// single-statement atomic expressions; multi-step read-modify-write on
// counters is deliberately avoided.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the properties table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.Property{})
}

// Create persists a new listing.
func (s *Store) Create(p *models.Property) error {
	return s.db.Create(p).Error
}

// FindByID returns the listing or ErrNotFound.
func (s *Store) FindByID(id string) (*models.Property, error) {
	var p models.Property
	err := s.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountByOwner returns how many listings an owner has.
func (s *Store) CountByOwner(ownerID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Property{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

// IncrementViewCount bumps the view counter and last-viewed timestamp in a
// single statement so concurrent views never lose updates.
func (s *Store) IncrementViewCount(id string, viewedAt time.Time) error {
	res := s.db.Model(&models.Property{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"views_count":    gorm.Expr("views_count + ?", 1),
		"last_viewed_at": viewedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus transitions the listing's lifecycle state.
func (s *Store) UpdateStatus(id string, status models.PropertyStatus, updatedAt time.Time) error {
	res := s.db.Model(&models.Property{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"status":     status,
		"updated_at": updatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
