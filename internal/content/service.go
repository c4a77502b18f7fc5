// Package content manages the ordered media collections assigned to
// display slots: quota-checked appends, gap-free removal, drag reordering,
// and the active-kind lookups the live dispatcher validates against.
package content

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/booking"
	"github.com/dapp-craft/daohq-admin-panel/internal/config"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/dapp-craft/daohq-admin-panel/internal/ordering"
)

// Service provides slot content operations
type Service struct {
	repos  *db.Repositories
	limits config.LimitsConfig
}

// NewService creates a new content service
func NewService(repos *db.Repositories, limits config.LimitsConfig) *Service {
	return &Service{repos: repos, limits: limits}
}

// AddInput carries the caller-supplied fields of a new content item. A nil
// BookingID targets the scene's default content collection, which has no
// quota.
type AddInput struct {
	BookingID *int64  `json:"booking,omitempty"`
	SlotID    int64   `json:"slot"`
	Kind      string  `json:"type"`
	URN       string  `json:"s3_urn"`
	Preview   *string `json:"preview,omitempty"`
	Name      string  `json:"name"`
}

// Add appends a content item at the end of its slot collection, enforcing
// the booking's duration-scaled quota.
func (s *Service) Add(ctx context.Context, input AddInput) (*models.ContentItem, error) {
	switch input.Kind {
	case models.KindImage, models.KindVideo, models.KindStreaming:
	default:
		return nil, fmt.Errorf("kind %q: %w", input.Kind, ErrInvalidKind)
	}

	slot, err := s.repos.Locations.GetSlot(ctx, input.SlotID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("slot %d: %w", input.SlotID, ErrUnknownSlot)
		}
		return nil, fmt.Errorf("failed to look up slot: %w", err)
	}
	if input.Kind == models.KindStreaming && !slot.SupportsStreaming {
		return nil, fmt.Errorf("slot %d: %w", input.SlotID, ErrStreamingUnsupported)
	}

	if input.BookingID != nil {
		if err := s.checkQuota(ctx, *input.BookingID); err != nil {
			return nil, err
		}
	}

	item := &models.ContentItem{
		BookingID: input.BookingID,
		SlotID:    input.SlotID,
		Kind:      input.Kind,
		URN:       input.URN,
		Preview:   input.Preview,
		Name:      input.Name,
	}
	if err := s.repos.Contents.Create(ctx, item); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int64("content_id", item.ID).
		Int64("slot_id", item.SlotID).
		Str("kind", item.Kind).
		Msg("Content item added")

	return item, nil
}

// Remove deletes a content item; the collection's order values close the
// gap and stay contiguous.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repos.Contents.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.Info().
		Int64("content_id", id).
		Msg("Content item removed")

	return nil
}

// ListForSlot retrieves a slot's content collection in order
func (s *Service) ListForSlot(ctx context.Context, bookingID *int64, slotID int64) ([]*models.ContentItem, error) {
	return s.repos.Contents.ListForSlot(ctx, bookingID, slotID)
}

// ListForLocation retrieves a location's content grouped by slot id
func (s *Service) ListForLocation(ctx context.Context, bookingID *int64, locationID string) (map[int64][]*models.ContentItem, error) {
	slots, err := s.repos.Locations.SlotsForLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]*models.ContentItem, len(slots))
	for _, slot := range slots {
		items, err := s.repos.Contents.ListForSlot(ctx, bookingID, slot.ID)
		if err != nil {
			return nil, err
		}
		out[slot.ID] = items
	}
	return out, nil
}

// ApplyOrder persists an explicit {item id: position} mapping for one slot
// collection. The payload must cover exactly the collection's items with
// positions 1..N; anything else is rejected all-or-nothing.
func (s *Service) ApplyOrder(ctx context.Context, bookingID *int64, slotID int64, positions map[int64]int) error {
	items, err := s.repos.Contents.ListForSlot(ctx, bookingID, slotID)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if err := ordering.Validate(ids, ordering.Positions(positions)); err != nil {
		return fmt.Errorf("slot %d: %w: %v", slotID, ErrInvalidOrder, err)
	}
	return s.repos.Contents.ApplyOrder(ctx, bookingID, slotID, positions)
}

// ReorderByDrag moves the item at order value start to order value drop and
// persists the renumbering, returning the reloaded authoritative list. A
// zero start or drop is a no-op.
func (s *Service) ReorderByDrag(ctx context.Context, bookingID *int64, slotID int64, start, drop int) ([]*models.ContentItem, error) {
	items, err := s.repos.Contents.ListForSlot(ctx, bookingID, slotID)
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

	if err := s.repos.Contents.ApplyOrder(ctx, bookingID, slotID, map[int64]int(positions)); err != nil {
		return nil, err
	}
	return s.repos.Contents.ListForSlot(ctx, bookingID, slotID)
}

// ActiveKind reports the content kind at a zero-based index of a slot's
// ordered collection. Used by the live dispatcher to validate show and
// pause commands.
func (s *Service) ActiveKind(ctx context.Context, bookingID, slotID int64, contentIndex int) (string, error) {
	items, err := s.repos.Contents.ListForSlot(ctx, &bookingID, slotID)
	if err != nil {
		return "", err
	}
	if contentIndex < 0 || contentIndex >= len(items) {
		return "", fmt.Errorf("slot %d index %d: %w", slotID, contentIndex, livesync.ErrInvalidContentIndex)
	}
	return items[contentIndex].Kind, nil
}

func (s *Service) checkQuota(ctx context.Context, bookingID int64) error {
	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	count, err := s.repos.Contents.CountForBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	quota := booking.QuotaFor(b.Duration, s.limits.ContentPerHalfHour)
	if count >= int64(quota) {
		return fmt.Errorf("booking %d has %d of %d items: %w", bookingID, count, quota, ErrLimitReached)
	}
	return nil
}
