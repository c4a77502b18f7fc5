package db

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"gorm.io/gorm"
)

// ContentRepository handles database operations for slot content items
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// bookingScope applies the nullable booking filter shared by all
// per-collection queries. A nil booking selects the scene's default content.
func bookingScope(tx *gorm.DB, bookingID *int64) *gorm.DB {
	if bookingID == nil {
		return tx.Where("booking IS NULL")
	}
	return tx.Where("booking = ?", *bookingID)
}

// Create appends a content item at the end of its (booking, slot) collection,
// assigning the next contiguous order value.
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var count int64
		query := bookingScope(tx.Model(&models.ContentItem{}), item.BookingID).
			Where("slot = ?", item.SlotID)
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count slot content: %w", MapGormError(err))
		}
		item.OrderID = int(count) + 1
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create content item: %w", MapGormError(err))
		}
		return nil
	})
}

// GetByID retrieves a content item by its ID
func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	var item models.ContentItem
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&item)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &item, nil
}

// ListForSlot retrieves a slot's content collection ordered by order value
func (r *ContentRepository) ListForSlot(ctx context.Context, bookingID *int64, slotID int64) ([]*models.ContentItem, error) {
	var items []*models.ContentItem
	query := bookingScope(r.db.WithContext(ctx), bookingID).
		Where("slot = ?", slotID).
		Order("order_id ASC")
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list slot content: %w", MapGormError(err))
	}
	return items, nil
}

// Delete removes a content item and closes the gap in its collection's
// order values.
func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var item models.ContentItem
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return MapGormError(err)
		}

		result := tx.Where("id = ?", id).Delete(&models.ContentItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete content item: %w", MapGormError(result.Error))
		}

		shift := bookingScope(tx.Model(&models.ContentItem{}), item.BookingID).
			Where("slot = ? AND order_id > ?", item.SlotID, item.OrderID).
			Update("order_id", gorm.Expr("order_id - 1"))
		if shift.Error != nil {
			return fmt.Errorf("failed to renumber slot content: %w", MapGormError(shift.Error))
		}
		return nil
	})
}

// ApplyOrder persists a full {item id: position} mapping for one
// (booking, slot) collection in a single transaction. The mapping must be
// all-or-nothing: every referenced item must exist in the collection.
func (r *ContentRepository) ApplyOrder(ctx context.Context, bookingID *int64, slotID int64, positions map[int64]int) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		for itemID, position := range positions {
			result := bookingScope(tx.Model(&models.ContentItem{}), bookingID).
				Where("id = ? AND slot = ?", itemID, slotID).
				Update("order_id", position)
			if result.Error != nil {
				return fmt.Errorf("failed to update order for item %d: %w", itemID, MapGormError(result.Error))
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("content item %d not found in slot %d: %w", itemID, slotID, ErrNotFound)
			}
		}
		return nil
	})
}

// CountForBooking counts a booking's content items across all slots
func (r *ContentRepository) CountForBooking(ctx context.Context, bookingID int64) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("booking = ?", bookingID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count booking content: %w", MapGormError(result.Error))
	}
	return count, nil
}
