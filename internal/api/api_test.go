package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/booking"
	"github.com/dapp-craft/daohq-admin-panel/internal/config"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init("error", false)
}

var testLimits = config.LimitsConfig{
	ContentPerHalfHour: 10,
	MusicPerHalfHour:   10,
	MinBookingTime:     30 * time.Minute,
	MaxBookingTime:     4 * time.Hour,
}

// setupTestDB creates a migrated test database in a temp directory
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return database, repos, cleanup
}

// seedStage inserts a bookable location with two slots
func seedStage(t *testing.T, repos *db.Repositories) {
	t.Helper()

	err := repos.Locations.ReplaceScene(context.Background(), "main", []*models.Location{
		{
			ID:         "stage",
			Type:       "stage",
			Scene:      "main",
			ForBooking: true,
			Slots: []models.Slot{
				{ID: 1, LocationID: "stage", Name: "screen", SupportsStreaming: true, Format: "16:9"},
				{ID: 2, LocationID: "stage", Name: "banner", SupportsStreaming: false, Format: "1:1"},
			},
		},
	})
	require.NoError(t, err)
}

// seedBooking inserts a booking owned by the given address
func seedBooking(t *testing.T, repos *db.Repositories, owner string, start, duration int64) *models.Booking {
	t.Helper()

	b := &models.Booking{
		Title:        "Launch party",
		Description:  "",
		StartDate:    start,
		Duration:     duration,
		CreationDate: time.Now().UnixMilli(),
		Owner:        &owner,
		LocationID:   "stage",
	}
	require.NoError(t, repos.Bookings.Create(context.Background(), b))
	return b
}

// newTestRouter creates a test Gin router and an /api group for route setup
func newTestRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router, router.Group("/api")
}

// doJSON performs a JSON request against the router and returns the recorder
func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asOwner(owner string) map[string]string {
	return map[string]string{userAddressHeader: owner}
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func newBookingService(repos *db.Repositories) *booking.Service {
	return booking.NewService(repos, testLimits)
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
