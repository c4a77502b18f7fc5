// Package music manages per-location playlists: quota-checked appends,
// gap-free removal, and drag reordering.
package music

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/booking"
	"github.com/dapp-craft/daohq-admin-panel/internal/config"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/dapp-craft/daohq-admin-panel/internal/ordering"
)

// Service provides music playlist operations
type Service struct {
	repos  *db.Repositories
	limits config.LimitsConfig
}

// NewService creates a new music service
func NewService(repos *db.Repositories, limits config.LimitsConfig) *Service {
	return &Service{repos: repos, limits: limits}
}

// AddInput carries the caller-supplied fields of a new playlist entry. A
// nil BookingID targets the scene's default playlist, which has no quota.
type AddInput struct {
	BookingID  *int64 `json:"booking,omitempty"`
	LocationID string `json:"location"`
	URN        string `json:"s3_urn"`
	Name       string `json:"name"`
}

// Add appends a track at the end of its playlist, enforcing the booking's
// duration-scaled quota.
func (s *Service) Add(ctx context.Context, input AddInput) (*models.MusicItem, error) {
	if _, err := s.repos.Locations.GetByID(ctx, input.LocationID); err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("location %q: %w", input.LocationID, ErrUnknownLocation)
		}
		return nil, fmt.Errorf("failed to look up location: %w", err)
	}

	if input.BookingID != nil {
		if err := s.checkQuota(ctx, *input.BookingID); err != nil {
			return nil, err
		}
	}

	item := &models.MusicItem{
		BookingID:  input.BookingID,
		LocationID: input.LocationID,
		URN:        input.URN,
		Name:       input.Name,
	}
	if err := s.repos.Music.Create(ctx, item); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int64("music_id", item.ID).
		Str("location", item.LocationID).
		Msg("Music track added")

	return item, nil
}

// Remove deletes a track; the playlist's order values close the gap and
// stay contiguous.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repos.Music.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.Info().
		Int64("music_id", id).
		Msg("Music track removed")

	return nil
}

// ListForLocation retrieves a location's playlist in order
func (s *Service) ListForLocation(ctx context.Context, bookingID *int64, locationID string) ([]*models.MusicItem, error) {
	return s.repos.Music.ListForLocation(ctx, bookingID, locationID)
}

// ApplyOrder persists an explicit {track id: position} mapping for one
// playlist. The payload must cover exactly the playlist's tracks with
// positions 1..N; anything else is rejected all-or-nothing.
func (s *Service) ApplyOrder(ctx context.Context, bookingID *int64, locationID string, positions map[int64]int) error {
	items, err := s.repos.Music.ListForLocation(ctx, bookingID, locationID)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if err := ordering.Validate(ids, ordering.Positions(positions)); err != nil {
		return fmt.Errorf("location %q: %w: %v", locationID, ErrInvalidOrder, err)
	}
	return s.repos.Music.ApplyOrder(ctx, bookingID, locationID, positions)
}

// ReorderByDrag moves the track at order value start to order value drop
// and persists the renumbering, returning the reloaded authoritative
// playlist. A zero start or drop is a no-op.
func (s *Service) ReorderByDrag(ctx context.Context, bookingID *int64, locationID string, start, drop int) ([]*models.MusicItem, error) {
	items, err := s.repos.Music.ListForLocation(ctx, bookingID, locationID)
	if err != nil {
		return nil, err
	}

	ordered := make([]ordering.Item, 0, len(items))
	for _, item := range items {
		ordered = append(ordered, ordering.Item{ID: item.ID, Order: item.OrderID})
	}

	_, positions := ordering.Reconcile(ordered, start, drop)
	if positions == nil {
		return items, nil
	}

	if err := s.repos.Music.ApplyOrder(ctx, bookingID, locationID, map[int64]int(positions)); err != nil {
		return nil, err
	}
	return s.repos.Music.ListForLocation(ctx, bookingID, locationID)
}

func (s *Service) checkQuota(ctx context.Context, bookingID int64) error {
	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	count, err := s.repos.Music.CountForBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	quota := booking.QuotaFor(b.Duration, s.limits.MusicPerHalfHour)
	if count >= int64(quota) {
		return fmt.Errorf("booking %d has %d of %d tracks: %w", bookingID, count, quota, ErrLimitReached)
	}
	return nil
}
