package livesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
)

// ErrSupervisorStopped indicates the supervisor has been shut down
var ErrSupervisorStopped = errors.New("live supervisor has been stopped")

// LiveLister supplies the set of currently-live bookings, venue wide
type LiveLister interface {
	ListLive(ctx context.Context, locationID string, nowMillis int64) ([]*models.Booking, error)
}

// Supervisor keeps the store's connection set aligned with the bookings
// that are currently within their time window: it opens a channel for each
// live booking and tears down channels whose booking left the live set.
type Supervisor struct {
	store    *Store
	bookings LiveLister
	interval time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	done     chan struct{}
	ticker   *time.Ticker
	mu       sync.Mutex
	stopped  bool
}

// NewSupervisor creates a live-connection supervisor
func NewSupervisor(store *Store, bookings LiveLister, interval time.Duration) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		store:    store,
		bookings: bookings,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs an immediate reconcile pass and begins the periodic loop
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSupervisorStopped
	}

	s.ticker = time.NewTicker(s.interval)
	go s.run()

	logger.Log.Info().
		Dur("interval", s.interval).
		Msg("Live supervisor started")

	return nil
}

// Stop shuts down the reconcile loop and every open connection
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
	if s.ticker != nil {
		<-s.done
		s.ticker.Stop()
	}
	s.cancel()
	s.store.Shutdown()

	logger.Log.Info().Msg("Live supervisor stopped")
}

func (s *Supervisor) run() {
	defer close(s.done)

	s.reconcile()

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.ticker.C:
			s.reconcile()
		}
	}
}

// reconcile aligns open connections with the current live booking set
func (s *Supervisor) reconcile() {
	ctx, cancelTimeout := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancelTimeout()

	now := time.Now().UnixMilli()
	live, err := s.bookings.ListLive(ctx, "", now)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list live bookings")
		return
	}

	liveSet := make(map[int64]bool, len(live))
	for _, booking := range live {
		liveSet[booking.ID] = true
		// Channels outlive the reconcile pass, so they hang off the
		// supervisor context, not the timeout.
		if err := s.store.EnsureConnection(s.ctx, *booking); err != nil {
			logger.Log.Error().
				Err(err).
				Int64("booking_id", booking.ID).
				Msg("Failed to open live booking connection")
		}
	}

	for _, id := range s.store.TrackedBookings() {
		if !liveSet[id] {
			s.store.Remove(id)
		}
	}
}
