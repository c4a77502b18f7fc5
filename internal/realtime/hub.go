// Package realtime implements the server side of the booking websocket
// protocol: per-booking subscriber sets, init_booking_states replay from
// persisted slot states, and owner-checked switch-content fan-out.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const commandTimeout = 5 * time.Second

// subscriber is one websocket connection attached to a booking. Writes are
// serialized per connection.
type subscriber struct {
	id          uuid.UUID
	conn        *websocket.Conn
	userAddress string
	system      bool

	writeMu sync.Mutex
}

func (s *subscriber) send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Hub fans booking state out to websocket subscribers. Each subscriber
// gets the persisted slot states on connect; switch-content commands from
// a booking's owner (or a system subscriber) are persisted and broadcast
// to every subscriber of that booking, echo included.
type Hub struct {
	repos *db.Repositories

	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[int64]map[*subscriber]bool
	closed bool
}

// NewHub creates a realtime hub
func NewHub(repos *db.Repositories) *Hub {
	return &Hub{
		repos: repos,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[int64]map[*subscriber]bool),
	}
}

// Subscribe upgrades the request and serves the booking socket until the
// peer disconnects or the hub shuts down. system subscribers bypass the
// owner check on inbound commands.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, bookingID int64, userAddress string, system bool) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		id:          uuid.New(),
		conn:        conn,
		userAddress: userAddress,
		system:      system,
	}

	if !h.register(bookingID, sub) {
		_ = conn.Close()
		return nil
	}
	defer h.unregister(bookingID, sub)

	logger.Log.Info().
		Str("client_id", sub.id.String()).
		Int64("booking_id", bookingID).
		Bool("system", system).
		Msg("Websocket subscriber connected")

	if err := h.replayStates(r.Context(), bookingID, sub); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("client_id", sub.id.String()).
			Msg("Failed to replay booking states")
		return nil
	}

	h.readLoop(bookingID, sub)
	return nil
}

// replayStates sends the persisted slot states of a booking to one
// subscriber as an init_booking_states envelope
func (h *Hub) replayStates(ctx context.Context, bookingID int64, sub *subscriber) error {
	states, err := h.repos.SlotStates.ListForBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	syncs := make([]livesync.SlotSync, 0, len(states))
	for _, state := range states {
		sync := livesync.SlotSync{
			Booking:      state.BookingID,
			Slot:         state.SlotID,
			ContentIndex: state.ContentIndex,
		}
		if state.Paused != nil {
			sync.Paused = livesync.PausedFlag{Known: true, Value: *state.Paused}
		}
		syncs = append(syncs, sync)
	}

	env, err := livesync.NewBookingStates(syncs)
	if err != nil {
		return err
	}
	return sub.send(env)
}

func (h *Hub) readLoop(bookingID int64, sub *subscriber) {
	for {
		_, raw, err := sub.conn.ReadMessage()
		if err != nil {
			logger.Log.Debug().
				Str("client_id", sub.id.String()).
				Int64("booking_id", bookingID).
				Msg("Websocket subscriber disconnected")
			return
		}

		env, err := livesync.DecodeEnvelope(raw)
		if err != nil {
			logger.Log.Debug().
				Err(err).
				Str("client_id", sub.id.String()).
				Msg("Dropping malformed subscriber frame")
			continue
		}
		if env.Type != livesync.TypeSwitchContent {
			continue
		}

		h.handleCommand(bookingID, sub, env)
	}
}

// handleCommand persists and broadcasts one switch-content command if the
// sender may control the booking
func (h *Hub) handleCommand(bookingID int64, sub *subscriber, env *livesync.Envelope) {
	cmd, err := env.SwitchCommand()
	if err != nil {
		logger.Log.Debug().
			Err(err).
			Str("client_id", sub.id.String()).
			Msg("Dropping malformed switch-content command")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if !sub.system {
		booking, err := h.repos.Bookings.GetByID(ctx, bookingID)
		if err != nil || booking.Owner == nil || *booking.Owner != sub.userAddress {
			logger.Log.Debug().
				Str("client_id", sub.id.String()).
				Int64("booking_id", bookingID).
				Msg("Dropping command from non-owner")
			return
		}
	}

	paused := cmd.Paused
	state := &models.SlotState{
		BookingID:    bookingID,
		SlotID:       cmd.Slot,
		ContentIndex: cmd.ContentIndex,
		Paused:       &paused,
	}
	if err := h.repos.SlotStates.Upsert(ctx, state); err != nil {
		logger.Log.Error().
			Err(err).
			Int64("booking_id", bookingID).
			Msg("Failed to persist slot state")
		return
	}

	h.broadcast(bookingID, env)
}

// broadcast sends an envelope to every subscriber of a booking
func (h *Hub) broadcast(bookingID int64, env *livesync.Envelope) {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs[bookingID]))
	for sub := range h.subs[bookingID] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		if err := sub.send(env); err != nil {
			logger.Log.Debug().
				Err(err).
				Str("client_id", sub.id.String()).
				Msg("Failed to deliver broadcast")
		}
	}
}

// SubscriberCount reports the current subscriber count of a booking
func (h *Hub) SubscriberCount(bookingID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[bookingID])
}

func (h *Hub) register(bookingID int64, sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.subs[bookingID] == nil {
		h.subs[bookingID] = make(map[*subscriber]bool)
	}
	h.subs[bookingID][sub] = true
	return true
}

func (h *Hub) unregister(bookingID int64, sub *subscriber) {
	h.mu.Lock()
	if h.subs[bookingID] != nil {
		delete(h.subs[bookingID], sub)
		if len(h.subs[bookingID]) == 0 {
			delete(h.subs, bookingID)
		}
	}
	h.mu.Unlock()
	_ = sub.conn.Close()
}

// Shutdown closes every subscriber connection and rejects new ones
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var conns []*websocket.Conn
	for _, subs := range h.subs {
		for sub := range subs {
			conns = append(conns, sub.conn)
		}
	}
	h.subs = make(map[int64]map[*subscriber]bool)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}

	logger.Log.Info().Msg("Realtime hub stopped")
}
