// Package schema maintains the venue's location/slot schema: sync from
// uploaded schema documents, scene-scoped listing and deletion, and the
// slot-id lookups the live supervisor seeds booking state from.
package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

// Service provides location schema operations
type Service struct {
	locations *db.LocationRepository

	// slot-id cache consulted on every live-booking connect; invalidated
	// whenever a sync or deletion changes the schema
	mu    sync.Mutex
	slots map[string][]int64
}

// NewService creates a new schema service
func NewService(locations *db.LocationRepository) *Service {
	return &Service{
		locations: locations,
		slots:     make(map[string][]int64),
	}
}

// Sync replaces a scene's locations and slots with the uploaded schema
// document. Previously stored location previews survive the replacement.
func (s *Service) Sync(ctx context.Context, scene string, document []byte) error {
	if scene == "" {
		return fmt.Errorf("%w: empty scene", ErrInvalidDocument)
	}

	locations, err := ParseDocument(document)
	if err != nil {
		return fmt.Errorf("failed to sync scene %q: %w", scene, err)
	}

	if err := s.locations.ReplaceScene(ctx, scene, locations); err != nil {
		return fmt.Errorf("failed to sync scene %q: %w", scene, err)
	}

	s.invalidate()

	logger.Log.Info().
		Str("scene", scene).
		Int("location_count", len(locations)).
		Msg("Location schema synced")

	return nil
}

// List retrieves every location with its slots
func (s *Service) List(ctx context.Context) ([]*models.Location, error) {
	return s.locations.ListAll(ctx)
}

// ListScene retrieves a scene's locations with their slots
func (s *Service) ListScene(ctx context.Context, scene string) ([]*models.Location, error) {
	return s.locations.ListByScene(ctx, scene)
}

// DeleteScene removes a scene's locations and slots
func (s *Service) DeleteScene(ctx context.Context, scene string) error {
	if err := s.locations.DeleteScene(ctx, scene); err != nil {
		return fmt.Errorf("failed to delete scene %q: %w", scene, err)
	}
	s.invalidate()

	logger.Log.Info().
		Str("scene", scene).
		Msg("Scene locations deleted")

	return nil
}

// UpdatePreview sets a location's preview image reference
func (s *Service) UpdatePreview(ctx context.Context, locationID string, preview *string) error {
	return s.locations.UpdatePreview(ctx, locationID, preview)
}

// SlotIDs returns the ordered slot ids of a location. Unknown locations
// map to livesync.ErrSchemaUnavailable so connection seeding can retry
// after the next sync.
func (s *Service) SlotIDs(ctx context.Context, locationID string) ([]int64, error) {
	s.mu.Lock()
	if ids, ok := s.slots[locationID]; ok {
		s.mu.Unlock()
		out := make([]int64, len(ids))
		copy(out, ids)
		return out, nil
	}
	s.mu.Unlock()

	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("location %q: %w", locationID, livesync.ErrSchemaUnavailable)
		}
		return nil, fmt.Errorf("failed to look up location %q: %w", locationID, err)
	}

	slots, err := s.locations.SlotsForLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for %q: %w", locationID, err)
	}

	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}

	s.mu.Lock()
	s.slots[locationID] = ids
	s.mu.Unlock()

	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.slots = make(map[string][]int64)
	s.mu.Unlock()
}
