package livesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/gorilla/websocket"
)

func init() {
	logger.Init("error", false)
}

func testChannelConfig() ChannelConfig {
	return ChannelConfig{
		ReconnectFloor:   10 * time.Millisecond,
		ReconnectStep:    10 * time.Millisecond,
		ReconnectCeiling: 50 * time.Millisecond,
		HandshakeTimeout: 2 * time.Second,
	}
}

// wsTestServer is a minimal realtime endpoint: it counts upgrades, records
// inbound envelopes, and can push frames to the most recent subscriber.
type wsTestServer struct {
	t        *testing.T
	srv      *httptest.Server
	upgrades atomic.Int32
	received chan Envelope
	onOpen   func(*websocket.Conn)

	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()

	s := &wsTestServer{t: t, received: make(chan Envelope, 16)}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.upgrades.Add(1)

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		if s.onOpen != nil {
			s.onOpen(conn)
		}

		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			s.received <- env
		}
	}))
	t.Cleanup(s.srv.Close)

	return s
}

// BaseURL returns the http base URL the channel derives its ws URL from
func (s *wsTestServer) BaseURL() string {
	return s.srv.URL
}

// Push sends an envelope to the current subscriber
func (s *wsTestServer) Push(t *testing.T, env Envelope) {
	t.Helper()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		t.Fatal("no subscriber connected")
	}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("push failed: %v", err)
	}
}

// DropSubscriber severs the current connection without a close handshake
func (s *wsTestServer) DropSubscriber() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func initStatesEnvelope(t *testing.T, states []SlotSync) Envelope {
	t.Helper()

	data, err := json.Marshal(states)
	if err != nil {
		t.Fatalf("marshal states: %v", err)
	}
	return Envelope{Type: TypeInitBookingStates, Data: data}
}

// fakeSchema is a map-backed SchemaProvider
type fakeSchema struct {
	slots map[string][]int64
}

func (f *fakeSchema) SlotIDs(_ context.Context, locationID string) ([]int64, error) {
	ids, ok := f.slots[locationID]
	if !ok {
		return nil, ErrSchemaUnavailable
	}
	return ids, nil
}

func testBooking(id int64, locationID string) models.Booking {
	owner := "0x1111111111111111111111111111111111111111"
	now := time.Now().UnixMilli()
	return models.Booking{
		ID:           id,
		Title:        "Test booking",
		Description:  "live sync test",
		StartDate:    now - time.Minute.Milliseconds(),
		Duration:     time.Hour.Milliseconds(),
		CreationDate: now,
		Owner:        &owner,
		LocationID:   locationID,
	}
}
