package db

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db *DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking into the database
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	result := r.db.WithContext(ctx).Create(booking)
	if result.Error != nil {
		return fmt.Errorf("failed to create booking: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a booking by its ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&booking)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &booking, nil
}

// Update persists all fields of an existing booking
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	result := r.db.WithContext(ctx).Save(booking)
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a booking by its ID
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Booking{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive retrieves bookings for a location whose time window has not yet
// ended, soonest first. nowMillis is the epoch-millisecond reference time.
func (r *BookingRepository) ListActive(ctx context.Context, locationID string, nowMillis int64, take, skip int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	result := r.db.WithContext(ctx).
		Where("location = ? AND (start_date + duration) >= ?", locationID, nowMillis).
		Order("start_date ASC").
		Limit(take).
		Offset(skip).
		Find(&bookings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", MapGormError(result.Error))
	}
	return bookings, nil
}

// ListInactive retrieves bookings for a location whose time window has ended,
// most recently ended first.
func (r *BookingRepository) ListInactive(ctx context.Context, locationID string, nowMillis int64, take, skip int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	result := r.db.WithContext(ctx).
		Where("location = ? AND (start_date + duration) < ?", locationID, nowMillis).
		Order("(start_date + duration) DESC").
		Limit(take).
		Offset(skip).
		Find(&bookings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list inactive bookings: %w", MapGormError(result.Error))
	}
	return bookings, nil
}

// ListLive retrieves all bookings whose time window covers nowMillis.
// An empty locationID matches every location.
func (r *BookingRepository) ListLive(ctx context.Context, locationID string, nowMillis int64) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := r.db.WithContext(ctx).
		Where("start_date <= ? AND (start_date + duration) > ?", nowMillis, nowMillis)
	if locationID != "" {
		query = query.Where("location = ?", locationID)
	}
	result := query.Order("start_date ASC").Find(&bookings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list live bookings: %w", MapGormError(result.Error))
	}
	return bookings, nil
}

// ListByOwner retrieves a user's not-yet-ended bookings for a location
func (r *BookingRepository) ListByOwner(ctx context.Context, locationID, owner string, nowMillis int64, take, skip int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	result := r.db.WithContext(ctx).
		Where("location = ? AND owner = ? AND (start_date + duration) >= ?", locationID, owner, nowMillis).
		Order("start_date ASC").
		Limit(take).
		Offset(skip).
		Find(&bookings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", MapGormError(result.Error))
	}
	return bookings, nil
}

// HasOverlap reports whether any booking at the location overlaps the
// [start, start+duration) window, excluding the booking with excludeID.
func (r *BookingRepository) HasOverlap(ctx context.Context, locationID string, start, duration, excludeID int64) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("location = ? AND id != ? AND start_date < ? AND (start_date + duration) > ?",
			locationID, excludeID, start+duration, start).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", MapGormError(result.Error))
	}
	return count > 0, nil
}
