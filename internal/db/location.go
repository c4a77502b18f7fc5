package db

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"gorm.io/gorm"
)

// LocationRepository handles database operations for locations and slots
type LocationRepository struct {
	db *DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetByID retrieves a location by its ID
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	var location models.Location
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&location)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &location, nil
}

// ListByScene retrieves all locations of a scene with their slots preloaded
func (r *LocationRepository) ListByScene(ctx context.Context, scene string) ([]*models.Location, error) {
	var locations []*models.Location
	result := r.db.WithContext(ctx).
		Where("scene = ?", scene).
		Preload("Slots").
		Order("id ASC").
		Find(&locations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list locations by scene: %w", MapGormError(result.Error))
	}
	return locations, nil
}

// ListAll retrieves every location with its slots preloaded
func (r *LocationRepository) ListAll(ctx context.Context) ([]*models.Location, error) {
	var locations []*models.Location
	result := r.db.WithContext(ctx).Preload("Slots").Order("id ASC").Find(&locations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list locations: %w", MapGormError(result.Error))
	}
	return locations, nil
}

// SlotsForLocation retrieves the ordered slot list of a location
func (r *LocationRepository) SlotsForLocation(ctx context.Context, locationID string) ([]*models.Slot, error) {
	var slots []*models.Slot
	result := r.db.WithContext(ctx).
		Where("location = ?", locationID).
		Order("id ASC").
		Find(&slots)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list slots for location: %w", MapGormError(result.Error))
	}
	return slots, nil
}

// GetSlot retrieves a slot by its ID
func (r *LocationRepository) GetSlot(ctx context.Context, slotID int64) (*models.Slot, error) {
	var slot models.Slot
	result := r.db.WithContext(ctx).Where("id = ?", slotID).First(&slot)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &slot, nil
}

// ReplaceScene atomically replaces a scene's locations and slots with the
// provided set, preserving previously stored location previews.
func (r *LocationRepository) ReplaceScene(ctx context.Context, scene string, locations []*models.Location) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		// Preserve previews across re-sync
		var existing []models.Location
		if err := tx.Where("scene = ?", scene).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load existing locations: %w", MapGormError(err))
		}
		previews := make(map[string]*string, len(existing))
		for _, loc := range existing {
			previews[loc.ID] = loc.Preview
		}

		if err := tx.Where("location IN (SELECT id FROM locations WHERE scene = ?)", scene).
			Delete(&models.Slot{}).Error; err != nil {
			return fmt.Errorf("failed to delete scene slots: %w", MapGormError(err))
		}
		if err := tx.Where("scene = ?", scene).Delete(&models.Location{}).Error; err != nil {
			return fmt.Errorf("failed to delete scene locations: %w", MapGormError(err))
		}

		for _, loc := range locations {
			loc.Scene = scene
			if preview, ok := previews[loc.ID]; ok {
				loc.Preview = preview
			}
			slots := loc.Slots
			loc.Slots = nil
			if err := tx.Create(loc).Error; err != nil {
				return fmt.Errorf("failed to create location %s: %w", loc.ID, MapGormError(err))
			}
			for i := range slots {
				slots[i].LocationID = loc.ID
				if err := tx.Create(&slots[i]).Error; err != nil {
					return fmt.Errorf("failed to create slot %d: %w", slots[i].ID, MapGormError(err))
				}
			}
		}
		return nil
	})
}

// DeleteScene removes a scene's locations and their slots
func (r *LocationRepository) DeleteScene(ctx context.Context, scene string) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("location IN (SELECT id FROM locations WHERE scene = ?)", scene).
			Delete(&models.Slot{}).Error; err != nil {
			return fmt.Errorf("failed to delete scene slots: %w", MapGormError(err))
		}
		if err := tx.Where("scene = ?", scene).Delete(&models.Location{}).Error; err != nil {
			return fmt.Errorf("failed to delete scene locations: %w", MapGormError(err))
		}
		return nil
	})
}

// UpdatePreview sets a location's preview image reference
func (r *LocationRepository) UpdatePreview(ctx context.Context, locationID string, preview *string) error {
	result := r.db.WithContext(ctx).Model(&models.Location{}).
		Where("id = ?", locationID).
		Update("preview", preview)
	if result.Error != nil {
		return fmt.Errorf("failed to update location preview: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
