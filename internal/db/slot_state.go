package db

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"gorm.io/gorm/clause"
)

// SlotStateRepository handles database operations for persisted slot
// playback states
type SlotStateRepository struct {
	db *DB
}

// NewSlotStateRepository creates a new slot state repository
func NewSlotStateRepository(db *DB) *SlotStateRepository {
	return &SlotStateRepository{db: db}
}

// Upsert inserts or replaces the playback state of one (booking, slot) pair
func (r *SlotStateRepository) Upsert(ctx context.Context, state *models.SlotState) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "booking"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_index", "is_paused"}),
	}).Create(state)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert slot state: %w", MapGormError(result.Error))
	}
	return nil
}

// ListForBooking retrieves all persisted slot states of a booking
func (r *SlotStateRepository) ListForBooking(ctx context.Context, bookingID int64) ([]*models.SlotState, error) {
	var states []*models.SlotState
	result := r.db.WithContext(ctx).
		Where("booking = ?", bookingID).
		Order("slot ASC").
		Find(&states)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list slot states: %w", MapGormError(result.Error))
	}
	return states, nil
}

// DeleteForBooking removes all persisted slot states of a booking
func (r *SlotStateRepository) DeleteForBooking(ctx context.Context, bookingID int64) error {
	result := r.db.WithContext(ctx).
		Where("booking = ?", bookingID).
		Delete(&models.SlotState{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete slot states: %w", MapGormError(result.Error))
	}
	return nil
}
