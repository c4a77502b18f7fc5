package livesync

import (
	"context"
	"fmt"
	"sync"

	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

// SlotPlaybackState is the presentation state of one display slot within a
// live booking. ContentIndex is a zero-based position into the slot's
// ordered content list; Paused is only meaningful for video content and
// nil while unknown.
type SlotPlaybackState struct {
	SlotID       int64 `json:"slot"`
	ContentIndex int   `json:"content_index"`
	Paused       *bool `json:"is_paused"`
}

// BookingSnapshot is a read-only copy of one live booking's state
type BookingSnapshot struct {
	Booking   models.Booking      `json:"booking"`
	Connected bool                `json:"connected"`
	Slots     []SlotPlaybackState `json:"slots"`
}

// SchemaProvider supplies the ordered slot ids of a location; the store
// uses it to seed per-slot playback state when a channel first connects.
type SchemaProvider interface {
	SlotIDs(ctx context.Context, locationID string) ([]int64, error)
}

// bookingConnection is one registry entry: an immutable booking snapshot
// captured at connect time, the live channel handle, and the per-slot
// playback states.
type bookingConnection struct {
	booking models.Booking
	channel *Channel
	slots   []SlotPlaybackState
	seeded  bool
}

// Store is the process-wide registry of live booking connections. All
// mutation funnels through EnsureConnection, ApplyBulkSync,
// ApplyLocalCommand, and Remove; channel reader goroutines and HTTP
// handlers touch the store concurrently, so every entry point serializes
// on the store mutex. Reads hand out copies, never internal state.
type Store struct {
	baseURL string
	token   string
	cfg     ChannelConfig
	schema  SchemaProvider

	mu    sync.Mutex
	conns map[int64]*bookingConnection
}

// NewStore creates a live booking state store. baseURL is the http(s)
// realtime base URL; token is the bearer credential appended to every
// channel URL.
func NewStore(baseURL, token string, cfg ChannelConfig, schema SchemaProvider) *Store {
	return &Store{
		baseURL: baseURL,
		token:   token,
		cfg:     cfg,
		schema:  schema,
		conns:   make(map[int64]*bookingConnection),
	}
}

// EnsureConnection opens a channel for the booking unless one already
// exists. At most one connection per booking id: repeated calls never
// open a second transport, but they do retry slot seeding while the
// entry is unseeded, so a schema that loads late is picked up on the
// next reconcile. The booking attributes are captured as an immutable
// snapshot at connect time.
func (s *Store) EnsureConnection(ctx context.Context, booking models.Booking) error {
	s.mu.Lock()
	if entry, exists := s.conns[booking.ID]; exists {
		seeded := entry.seeded
		s.mu.Unlock()
		// An earlier establishment may have found the schema missing;
		// a retrying caller gets another seeding attempt.
		if !seeded {
			s.seedSlots(ctx, booking.ID)
		}
		return nil
	}

	// Reserve the slot under the lock so concurrent callers cannot race a
	// second transport into existence, then dial outside it.
	entry := &bookingConnection{booking: booking}
	s.conns[booking.ID] = entry
	s.mu.Unlock()

	endpoint := fmt.Sprintf("/ws/booking/%d/auth", booking.ID)
	channel, err := OpenChannel(ctx, s.baseURL, endpoint, s.token, s.cfg,
		func() { s.seedSlots(ctx, booking.ID) },
		func(states []SlotSync) { s.ApplyBulkSync(states) },
	)
	if err != nil {
		// Transport construction failure is fatal for this booking until a
		// fresh EnsureConnection call.
		s.mu.Lock()
		delete(s.conns, booking.ID)
		s.mu.Unlock()
		return fmt.Errorf("failed to connect booking %d: %w", booking.ID, err)
	}

	s.mu.Lock()
	if current, ok := s.conns[booking.ID]; !ok || current != entry {
		// Removed while dialing: the registry no longer owns this entry,
		// so the fresh transport must not outlive it.
		s.mu.Unlock()
		channel.Close()
		return nil
	}
	entry.channel = channel
	s.mu.Unlock()

	logger.Log.Info().
		Int64("booking_id", booking.ID).
		Str("location", booking.LocationID).
		Msg("Live booking connection opened")

	return nil
}

// seedSlots populates the entry's per-slot playback states from the
// location schema on first establishment. Reconnects keep existing state;
// the server's bulk sync snapshot rehydrates it anyway.
func (s *Store) seedSlots(ctx context.Context, bookingID int64) {
	s.mu.Lock()
	entry, ok := s.conns[bookingID]
	if !ok || entry.seeded {
		s.mu.Unlock()
		return
	}
	locationID := entry.booking.LocationID
	s.mu.Unlock()

	slotIDs, err := s.schema.SlotIDs(ctx, locationID)
	if err != nil {
		// Schema not loaded yet: leave the entry unseeded and let a later
		// establishment retry.
		logger.Log.Warn().
			Err(err).
			Int64("booking_id", bookingID).
			Str("location", locationID).
			Msg("Cannot seed booked slots, location schema unavailable")
		return
	}

	paused := false
	slots := make([]SlotPlaybackState, 0, len(slotIDs))
	for _, slotID := range slotIDs {
		slots = append(slots, SlotPlaybackState{
			SlotID:       slotID,
			ContentIndex: 0,
			Paused:       &paused,
		})
	}

	s.mu.Lock()
	if entry, ok := s.conns[bookingID]; ok && !entry.seeded {
		entry.slots = slots
		entry.seeded = true
	}
	s.mu.Unlock()

	logger.Log.Debug().
		Int64("booking_id", bookingID).
		Int("slot_count", len(slots)).
		Msg("Seeded booked slot states")
}

// ApplyBulkSync applies a server snapshot. Messages for unknown bookings
// or slots are dropped without error: other admin sessions may track
// bookings this one does not have open. Messages are applied in arrival
// order.
func (s *Store) ApplyBulkSync(states []SlotSync) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range states {
		if !s.applyLocked(state.Booking, state.Slot, state.ContentIndex, state.Paused.Ptr()) {
			logger.Log.Debug().
				Int64("booking_id", state.Booking).
				Int64("slot_id", state.Slot).
				Msg("Dropping sync for untracked booking or slot")
		}
	}
}

// ApplyLocalCommand mirrors this session's own show/pause command into the
// store. It shares the update path with ApplyBulkSync so readers never
// observe divergent mutation logic.
func (s *Store) ApplyLocalCommand(bookingID, slotID int64, contentIndex int, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applyLocked(bookingID, slotID, contentIndex, &paused) {
		logger.Log.Debug().
			Int64("booking_id", bookingID).
			Int64("slot_id", slotID).
			Msg("Local command for untracked booking or slot")
	}
}

// applyLocked performs the targeted overwrite shared by both writers.
// Caller must hold the store mutex.
func (s *Store) applyLocked(bookingID, slotID int64, contentIndex int, paused *bool) bool {
	entry, ok := s.conns[bookingID]
	if !ok {
		return false
	}
	for i := range entry.slots {
		if entry.slots[i].SlotID == slotID {
			entry.slots[i].ContentIndex = contentIndex
			entry.slots[i].Paused = paused
			return true
		}
	}
	return false
}

// Send transmits an envelope over the booking's channel. Returns
// ErrNoConnection when the booking has no registry entry and
// ErrChannelDown when the entry's transport is not up.
func (s *Store) Send(bookingID int64, env Envelope) error {
	s.mu.Lock()
	entry, ok := s.conns[bookingID]
	var channel *Channel
	if ok {
		channel = entry.channel
	}
	s.mu.Unlock()

	if !ok || channel == nil {
		return fmt.Errorf("booking %d: %w", bookingID, ErrNoConnection)
	}
	return channel.Send(env)
}

// Snapshot returns a copy of one booking's live state
func (s *Store) Snapshot(bookingID int64) (*BookingSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.conns[bookingID]
	if !ok {
		return nil, false
	}
	return s.snapshotLocked(entry), true
}

// Snapshots returns copies of every tracked booking's live state
func (s *Store) Snapshots() []*BookingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*BookingSnapshot, 0, len(s.conns))
	for _, entry := range s.conns {
		out = append(out, s.snapshotLocked(entry))
	}
	return out
}

func (s *Store) snapshotLocked(entry *bookingConnection) *BookingSnapshot {
	slots := make([]SlotPlaybackState, len(entry.slots))
	copy(slots, entry.slots)
	connected := entry.channel != nil && entry.channel.Connected()
	return &BookingSnapshot{
		Booking:   entry.booking,
		Connected: connected,
		Slots:     slots,
	}
}

// TrackedBookings returns the ids of all bookings with a registry entry
func (s *Store) TrackedBookings() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	return ids
}

// Remove tears down a booking's connection and deletes its entry. Safe to
// call for unknown bookings.
func (s *Store) Remove(bookingID int64) {
	s.mu.Lock()
	entry, ok := s.conns[bookingID]
	if ok {
		delete(s.conns, bookingID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if entry.channel != nil {
		entry.channel.Close()
	}

	logger.Log.Info().
		Int64("booking_id", bookingID).
		Msg("Live booking connection removed")
}

// Shutdown tears down every connection
func (s *Store) Shutdown() {
	s.mu.Lock()
	entries := make([]*bookingConnection, 0, len(s.conns))
	for id, entry := range s.conns {
		entries = append(entries, entry)
		delete(s.conns, id)
	}
	s.mu.Unlock()

	for _, entry := range entries {
		if entry.channel != nil {
			entry.channel.Close()
		}
	}
}
