// Package booking implements the booking lifecycle: creation with
// duration and overlap validation, active/inactive/live listings, and the
// per-booking content quotas derived from booking duration.
package booking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/config"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

const defaultPageSize = 20

// Service provides booking lifecycle operations
type Service struct {
	repos  *db.Repositories
	limits config.LimitsConfig

	// nowMillis is swappable for tests
	nowMillis func() int64
}

// NewService creates a new booking service
func NewService(repos *db.Repositories, limits config.LimitsConfig) *Service {
	return &Service{
		repos:     repos,
		limits:    limits,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// CreateInput carries the caller-supplied fields of a new booking
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   int64  `json:"start_date"`
	Duration    int64  `json:"duration"`
	EventDate   *int64 `json:"event_date,omitempty"`
	LocationID  string `json:"location"`
}

// UpdateInput carries the patchable fields of a booking; nil fields are
// left unchanged
type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *int64  `json:"start_date,omitempty"`
	Duration    *int64  `json:"duration,omitempty"`
	EventDate   *int64  `json:"event_date,omitempty"`
}

// Limit is the content quota of a booking alongside its current usage
type Limit struct {
	Limit        int   `json:"limit"`
	ContentCount int64 `json:"content_count"`
}

// Create validates and persists a new booking owned by owner
func (s *Service) Create(ctx context.Context, owner string, input CreateInput) (*models.Booking, error) {
	if err := s.checkDuration(input.Duration); err != nil {
		return nil, err
	}

	location, err := s.repos.Locations.GetByID(ctx, input.LocationID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("location %q: %w", input.LocationID, ErrUnknownLocation)
		}
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}
	if !location.ForBooking {
		return nil, fmt.Errorf("location %q: %w", input.LocationID, ErrUnknownLocation)
	}

	overlap, err := s.repos.Bookings.HasOverlap(ctx, input.LocationID, input.StartDate, input.Duration, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlap: %w", err)
	}
	if overlap {
		return nil, fmt.Errorf("location %q at %d: %w", input.LocationID, input.StartDate, ErrOverlap)
	}

	booking := &models.Booking{
		Title:        input.Title,
		Description:  input.Description,
		StartDate:    input.StartDate,
		Duration:     input.Duration,
		EventDate:    input.EventDate,
		CreationDate: s.nowMillis(),
		LocationID:   input.LocationID,
	}
	if owner != "" {
		booking.Owner = &owner
	}

	if err := s.repos.Bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int64("booking_id", booking.ID).
		Str("location", booking.LocationID).
		Int64("start_date", booking.StartDate).
		Msg("Booking created")

	return booking, nil
}

// Get retrieves a booking by id
func (s *Service) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repos.Bookings.GetByID(ctx, id)
}

// Update patches a booking. A non-empty caller must own the booking; an
// empty caller bypasses the ownership check (system callers).
func (s *Service) Update(ctx context.Context, id int64, caller string, input UpdateInput) (*models.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(booking, caller); err != nil {
		return nil, err
	}

	if input.Title != nil {
		booking.Title = *input.Title
	}
	if input.Description != nil {
		booking.Description = *input.Description
	}
	if input.StartDate != nil {
		booking.StartDate = *input.StartDate
	}
	if input.Duration != nil {
		booking.Duration = *input.Duration
	}
	if input.EventDate != nil {
		booking.EventDate = input.EventDate
	}

	if input.Duration != nil {
		if err := s.checkDuration(booking.Duration); err != nil {
			return nil, err
		}
	}
	if input.StartDate != nil || input.Duration != nil {
		overlap, err := s.repos.Bookings.HasOverlap(ctx, booking.LocationID, booking.StartDate, booking.Duration, booking.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check overlap: %w", err)
		}
		if overlap {
			return nil, fmt.Errorf("booking %d: %w", id, ErrOverlap)
		}
	}

	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdatePreview sets a booking's poster image reference
func (s *Service) UpdatePreview(ctx context.Context, id int64, caller string, preview *string) (*models.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(booking, caller); err != nil {
		return nil, err
	}

	booking.Preview = preview
	if err := s.repos.Bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Delete removes a booking together with its persisted slot states
func (s *Service) Delete(ctx context.Context, id int64, caller string) error {
	booking, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwner(booking, caller); err != nil {
		return err
	}

	if err := s.repos.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.repos.SlotStates.DeleteForBooking(ctx, id); err != nil {
		logger.Log.Warn().
			Err(err).
			Int64("booking_id", id).
			Msg("Failed to clean up slot states after booking deletion")
	}

	logger.Log.Info().
		Int64("booking_id", id).
		Msg("Booking deleted")

	return nil
}

// ListActive retrieves a location's not-yet-ended bookings, soonest first
func (s *Service) ListActive(ctx context.Context, locationID string, take, skip int) ([]*models.Booking, error) {
	return s.repos.Bookings.ListActive(ctx, locationID, s.nowMillis(), pageSize(take), skip)
}

// ListInactive retrieves a location's ended bookings, most recent first
func (s *Service) ListInactive(ctx context.Context, locationID string, take, skip int) ([]*models.Booking, error) {
	return s.repos.Bookings.ListInactive(ctx, locationID, s.nowMillis(), pageSize(take), skip)
}

// ListByOwner retrieves a user's not-yet-ended bookings for a location
func (s *Service) ListByOwner(ctx context.Context, locationID, owner string, take, skip int) ([]*models.Booking, error) {
	return s.repos.Bookings.ListByOwner(ctx, locationID, owner, s.nowMillis(), pageSize(take), skip)
}

// ListLive retrieves the bookings whose time window covers nowMillis. An
// empty locationID matches the whole venue. This is the live supervisor's
// source of truth.
func (s *Service) ListLive(ctx context.Context, locationID string, nowMillis int64) ([]*models.Booking, error) {
	return s.repos.Bookings.ListLive(ctx, locationID, nowMillis)
}

// ContentLimit returns the booking's content quota and current usage.
// The quota scales with duration: ContentPerHalfHour items per 30 minutes.
func (s *Service) ContentLimit(ctx context.Context, bookingID int64) (*Limit, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	count, err := s.repos.Contents.CountForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &Limit{
		Limit:        QuotaFor(booking.Duration, s.limits.ContentPerHalfHour),
		ContentCount: count,
	}, nil
}

// MusicLimit returns the booking's music quota and current usage
func (s *Service) MusicLimit(ctx context.Context, bookingID int64) (*Limit, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	count, err := s.repos.Music.CountForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &Limit{
		Limit:        QuotaFor(booking.Duration, s.limits.MusicPerHalfHour),
		ContentCount: count,
	}, nil
}

func (s *Service) checkDuration(duration int64) error {
	if duration < s.limits.MinBookingTime.Milliseconds() || duration > s.limits.MaxBookingTime.Milliseconds() {
		return fmt.Errorf("duration %dms: %w", duration, ErrInvalidDuration)
	}
	return nil
}

func checkOwner(booking *models.Booking, caller string) error {
	if caller == "" {
		return nil
	}
	if booking.Owner == nil || *booking.Owner != caller {
		return fmt.Errorf("booking %d: %w", booking.ID, ErrNotOwner)
	}
	return nil
}

// QuotaFor computes the quota for a booking duration: perHalfHour items
// per 30 minutes, rounded to the nearest whole item.
func QuotaFor(durationMillis int64, perHalfHour int) int {
	halfHours := float64(durationMillis) / float64(30*time.Minute.Milliseconds())
	return int(math.Round(halfHours * float64(perHalfHour)))
}

func pageSize(take int) int {
	if take <= 0 {
		return defaultPageSize
	}
	return take
}
