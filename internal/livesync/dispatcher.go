package livesync

import (
	"context"
	"fmt"

	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

// ContentResolver reports the content kind at a zero-based index of a
// slot's ordered content list
type ContentResolver interface {
	ActiveKind(ctx context.Context, bookingID, slotID int64, contentIndex int) (string, error)
}

// Dispatcher translates operator show/pause actions into outbound
// switch-content commands plus optimistic local state updates. Both
// operations are fire-and-forget: no acknowledgement is awaited, and a
// down channel loses the command while local state still updates. The
// next bulk sync is authoritative and corrects any divergence.
type Dispatcher struct {
	store    *Store
	contents ContentResolver
}

// NewDispatcher creates a content-switch command dispatcher
func NewDispatcher(store *Store, contents ContentResolver) *Dispatcher {
	return &Dispatcher{store: store, contents: contents}
}

// Show selects which content item a live slot displays. Switching always
// starts playback: video content is unpaused. The local update is applied
// even when no channel is open so this session's view stays consistent.
func (d *Dispatcher) Show(ctx context.Context, bookingID, slotID int64, contentIndex int) error {
	if contentIndex < 0 {
		return fmt.Errorf("show content for booking %d: %w", bookingID, ErrInvalidContentIndex)
	}
	if _, err := d.contents.ActiveKind(ctx, bookingID, slotID, contentIndex); err != nil {
		return fmt.Errorf("show content for booking %d: %w", bookingID, err)
	}

	d.dispatch(bookingID, slotID, contentIndex, false)
	return nil
}

// TogglePause flips the paused flag of the active video. Only valid when
// the content at contentIndex is a video; an unknown paused state toggles
// to paused.
func (d *Dispatcher) TogglePause(ctx context.Context, bookingID, slotID int64, contentIndex int) error {
	if contentIndex < 0 {
		return fmt.Errorf("toggle pause for booking %d: %w", bookingID, ErrInvalidContentIndex)
	}
	kind, err := d.contents.ActiveKind(ctx, bookingID, slotID, contentIndex)
	if err != nil {
		return fmt.Errorf("toggle pause for booking %d: %w", bookingID, err)
	}
	if kind != models.KindVideo {
		return fmt.Errorf("toggle pause for booking %d slot %d: %w", bookingID, slotID, ErrNotVideo)
	}

	paused := true
	if snap, ok := d.store.Snapshot(bookingID); ok {
		for _, slot := range snap.Slots {
			if slot.SlotID == slotID && slot.Paused != nil {
				paused = !*slot.Paused
				break
			}
		}
	}

	d.dispatch(bookingID, slotID, contentIndex, paused)
	return nil
}

// dispatch mirrors the command into the store first, then sends it over
// the booking's channel when one is up. Readers observe the optimistic
// state before the send attempt, whatever the send outcome.
func (d *Dispatcher) dispatch(bookingID, slotID int64, contentIndex int, paused bool) {
	env, err := NewSwitchContent(SwitchCommand{
		Slot:         slotID,
		ContentIndex: contentIndex,
		Paused:       paused,
	})
	if err != nil {
		logger.Log.Error().
			Err(err).
			Int64("booking_id", bookingID).
			Msg("Failed to encode switch-content command")
		return
	}

	d.store.ApplyLocalCommand(bookingID, slotID, contentIndex, paused)

	if err := d.store.Send(bookingID, env); err != nil {
		// Lost commands are acceptable: the next bulk sync after a
		// reconnect overwrites local state.
		logger.Log.Debug().
			Err(err).
			Int64("booking_id", bookingID).
			Int64("slot_id", slotID).
			Msg("Switch-content command not transmitted")
	}
}
