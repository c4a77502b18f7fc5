package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddress    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	strangerAddress = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// hubFixture mounts the hub behind an httptest server. The ?as= query
// selects the subscriber identity: "owner", "stranger", or "system".
type hubFixture struct {
	hub       *Hub
	repos     *db.Repositories
	srv       *httptest.Server
	bookingID int64
}

func setupHubTest(t *testing.T) *hubFixture {
	t.Helper()

	logger.Init("error", false)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	database, err := db.New(dbPath)
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := db.NewRepositories(database)

	owner := ownerAddress
	booking := &models.Booking{
		Title:        "Launch party",
		Description:  "Product launch",
		StartDate:    time.Now().UnixMilli(),
		Duration:     time.Hour.Milliseconds(),
		CreationDate: time.Now().UnixMilli(),
		Owner:        &owner,
		LocationID:   "stage",
	}
	require.NoError(t, repos.Bookings.Create(context.Background(), booking))

	hub := NewHub(repos)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var address string
		system := false
		switch r.URL.Query().Get("as") {
		case "owner":
			address = ownerAddress
		case "stranger":
			address = strangerAddress
		case "system":
			system = true
		}
		_ = hub.Subscribe(w, r, booking.ID, address, system)
	}))

	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
		_ = database.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &hubFixture{hub: hub, repos: repos, srv: srv, bookingID: booking.ID}
}

func (f *hubFixture) dial(t *testing.T, identity string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "?as=" + identity
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) livesync.Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env livesync.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func switchEnvelope(t *testing.T, slot int64, contentIndex int, paused bool) livesync.Envelope {
	t.Helper()

	env, err := livesync.NewSwitchContent(livesync.SwitchCommand{
		Slot:         slot,
		ContentIndex: contentIndex,
		Paused:       paused,
	})
	require.NoError(t, err)
	return env
}

func TestHub_ReplaysPersistedStatesOnConnect(t *testing.T) {
	f := setupHubTest(t)

	paused := true
	require.NoError(t, f.repos.SlotStates.Upsert(context.Background(), &models.SlotState{
		BookingID: f.bookingID, SlotID: 3, ContentIndex: 2, Paused: &paused,
	}))

	conn := f.dial(t, "owner")

	env := readEnvelope(t, conn)
	require.Equal(t, livesync.TypeInitBookingStates, env.Type)

	states, err := env.BookingStates()
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, f.bookingID, states[0].Booking)
	assert.Equal(t, int64(3), states[0].Slot)
	assert.Equal(t, 2, states[0].ContentIndex)
	require.NotNil(t, states[0].Paused.Ptr())
	assert.True(t, *states[0].Paused.Ptr())
}

func TestHub_ReplaysEmptySnapshotForFreshBooking(t *testing.T) {
	f := setupHubTest(t)

	conn := f.dial(t, "owner")

	env := readEnvelope(t, conn)
	assert.Equal(t, livesync.TypeInitBookingStates, env.Type)

	states, err := env.BookingStates()
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestHub_OwnerCommandPersistsAndBroadcasts(t *testing.T) {
	f := setupHubTest(t)

	owner := f.dial(t, "owner")
	watcher := f.dial(t, "stranger")

	// Drain the replay envelopes
	readEnvelope(t, owner)
	readEnvelope(t, watcher)

	require.NoError(t, owner.WriteJSON(switchEnvelope(t, 3, 1, false)))

	// Both subscribers receive the broadcast, sender included
	for _, conn := range []*websocket.Conn{owner, watcher} {
		env := readEnvelope(t, conn)
		require.Equal(t, livesync.TypeSwitchContent, env.Type)
		cmd, err := env.SwitchCommand()
		require.NoError(t, err)
		assert.Equal(t, int64(3), cmd.Slot)
		assert.Equal(t, 1, cmd.ContentIndex)
	}

	// The state was persisted for future replays
	assert.Eventually(t, func() bool {
		states, err := f.repos.SlotStates.ListForBooking(context.Background(), f.bookingID)
		return err == nil && len(states) == 1 && states[0].ContentIndex == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_NonOwnerCommandDropped(t *testing.T) {
	f := setupHubTest(t)

	stranger := f.dial(t, "stranger")
	readEnvelope(t, stranger)

	require.NoError(t, stranger.WriteJSON(switchEnvelope(t, 3, 1, false)))

	// No broadcast comes back
	require.NoError(t, stranger.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var env livesync.Envelope
	assert.Error(t, stranger.ReadJSON(&env))

	states, err := f.repos.SlotStates.ListForBooking(context.Background(), f.bookingID)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestHub_SystemSubscriberBypassesOwnerCheck(t *testing.T) {
	f := setupHubTest(t)

	system := f.dial(t, "system")
	readEnvelope(t, system)

	require.NoError(t, system.WriteJSON(switchEnvelope(t, 5, 0, true)))

	env := readEnvelope(t, system)
	assert.Equal(t, livesync.TypeSwitchContent, env.Type)

	assert.Eventually(t, func() bool {
		states, err := f.repos.SlotStates.ListForBooking(context.Background(), f.bookingID)
		return err == nil && len(states) == 1 && states[0].SlotID == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_MalformedFramesIgnored(t *testing.T) {
	f := setupHubTest(t)

	owner := f.dial(t, "owner")
	readEnvelope(t, owner)

	require.NoError(t, owner.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, owner.WriteMessage(websocket.TextMessage, []byte(`{"type":"mystery","data":{}}`)))

	// The connection survives and commands still work
	require.NoError(t, owner.WriteJSON(switchEnvelope(t, 1, 0, false)))
	env := readEnvelope(t, owner)
	assert.Equal(t, livesync.TypeSwitchContent, env.Type)
}

func TestHub_SubscriberCountTracksConnections(t *testing.T) {
	f := setupHubTest(t)

	conn := f.dial(t, "owner")
	readEnvelope(t, conn)

	assert.Eventually(t, func() bool {
		return f.hub.SubscriberCount(f.bookingID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_ = conn.Close()

	assert.Eventually(t, func() bool {
		return f.hub.SubscriberCount(f.bookingID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 180*time.Second)

	token, err := issuer.Mint(ownerAddress)
	require.NoError(t, err)

	address, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, ownerAddress, address)
}

func TestTokenIssuer_RejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 180*time.Second)

	_, err := issuer.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret
	other, err := NewTokenIssuer("other-secret", 180*time.Second).Mint(ownerAddress)
	require.NoError(t, err)
	_, err = issuer.Validate(other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Second)

	token, err := issuer.Mint(ownerAddress)
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
