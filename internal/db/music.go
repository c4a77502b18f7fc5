package db

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"gorm.io/gorm"
)

// MusicRepository handles database operations for location playlists
type MusicRepository struct {
	db *DB
}

// NewMusicRepository creates a new music repository
func NewMusicRepository(db *DB) *MusicRepository {
	return &MusicRepository{db: db}
}

// Create appends a music item at the end of its (booking, location)
// playlist, assigning the next contiguous order value.
func (r *MusicRepository) Create(ctx context.Context, item *models.MusicItem) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var count int64
		query := bookingScope(tx.Model(&models.MusicItem{}), item.BookingID).
			Where("location = ?", item.LocationID)
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count playlist items: %w", MapGormError(err))
		}
		item.OrderID = int(count) + 1
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create music item: %w", MapGormError(err))
		}
		return nil
	})
}

// GetByID retrieves a music item by its ID
func (r *MusicRepository) GetByID(ctx context.Context, id int64) (*models.MusicItem, error) {
	var item models.MusicItem
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// ListForLocation retrieves a location's playlist ordered by order value
func (r *MusicRepository) ListForLocation(ctx context.Context, bookingID *int64, locationID string) ([]*models.MusicItem, error) {
	var items []*models.MusicItem
	query := bookingScope(r.db.WithContext(ctx), bookingID).
		Where("location = ?", locationID).
		Order("order_id ASC")
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list playlist: %w", MapGormError(err))
	}
	return items, nil
}

// Delete removes a music item and closes the gap in its playlist's
// order values.
func (r *MusicRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var item models.MusicItem
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return MapGormError(err)
		}

		result := tx.Where("id = ?", id).Delete(&models.MusicItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete music item: %w", MapGormError(result.Error))
		}

		shift := bookingScope(tx.Model(&models.MusicItem{}), item.BookingID).
			Where("location = ? AND order_id > ?", item.LocationID, item.OrderID).
			Update("order_id", gorm.Expr("order_id - 1"))
		if shift.Error != nil {
			return fmt.Errorf("failed to renumber playlist: %w", MapGormError(shift.Error))
		}
		return nil
	})
}

// ApplyOrder persists a full {item id: position} mapping for one
// (booking, location) playlist in a single transaction.
func (r *MusicRepository) ApplyOrder(ctx context.Context, bookingID *int64, locationID string, positions map[int64]int) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		for itemID, position := range positions {
			result := bookingScope(tx.Model(&models.MusicItem{}), bookingID).
				Where("id = ? AND location = ?", itemID, locationID).
				Update("order_id", position)
			if result.Error != nil {
				return fmt.Errorf("failed to update order for item %d: %w", itemID, MapGormError(result.Error))
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("music item %d not found in location %s: %w", itemID, locationID, ErrNotFound)
			}
		}
		return nil
	})
}

// CountForBooking counts a booking's playlist items
func (r *MusicRepository) CountForBooking(ctx context.Context, bookingID int64) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.MusicItem{}).
		Where("booking = ?", bookingID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count booking music: %w", MapGormError(result.Error))
	}
	return count, nil
}
