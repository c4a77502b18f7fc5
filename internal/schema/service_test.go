package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSchemaTest(t *testing.T) (*Service, *db.Repositories, func()) {
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
	service := NewService(repos.Locations)

	cleanup := func() {
		_ = database.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return service, repos, cleanup
}

const sampleDocument = `{
	"stage": {
		"type": "hall",
		"for_booking": 1,
		"slots": [
			{"id": 1, "name": "main screen", "supports_streaming": 1, "format": "16:9", "trigger": 0},
			{"id": "2", "name": "side banner", "supports_streaming": 0, "format": "9:16", "trigger": 1}
		]
	},
	"lobby": {
		"type": "lounge",
		"for_booking": false,
		"slots": []
	}
}`

func TestParseDocument(t *testing.T) {
	locations, err := ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)
	require.Len(t, locations, 2)

	// Sorted by location id
	assert.Equal(t, "lobby", locations[0].ID)
	assert.False(t, locations[0].ForBooking)
	assert.Empty(t, locations[0].Slots)

	stage := locations[1]
	assert.Equal(t, "stage", stage.ID)
	assert.Equal(t, "hall", stage.Type)
	assert.True(t, stage.ForBooking)
	require.Len(t, stage.Slots, 2)

	assert.Equal(t, int64(1), stage.Slots[0].ID)
	assert.Equal(t, "main screen", stage.Slots[0].Name)
	assert.True(t, stage.Slots[0].SupportsStreaming)
	assert.False(t, stage.Slots[0].Trigger)

	// Numeric-string slot id accepted
	assert.Equal(t, int64(2), stage.Slots[1].ID)
	assert.False(t, stage.Slots[1].SupportsStreaming)
	assert.True(t, stage.Slots[1].Trigger)
}

func TestParseDocument_Defaults(t *testing.T) {
	locations, err := ParseDocument([]byte(`{
		"plaza": {"type": "open", "slots": [{"id": 5, "name": "board", "format": "1:1", "trigger": false}]}
	}`))
	require.NoError(t, err)
	require.Len(t, locations, 1)

	assert.True(t, locations[0].ForBooking)
	assert.True(t, locations[0].Slots[0].SupportsStreaming)
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{{`},
		{name: "missing location type", doc: `{"stage": {"slots": []}}`},
		{name: "non-numeric slot id", doc: `{"stage": {"type": "hall", "slots": [{"id": "abc", "name": "x", "format": "16:9", "trigger": 0}]}}`},
		{name: "missing slot name", doc: `{"stage": {"type": "hall", "slots": [{"id": 1, "format": "16:9", "trigger": 0}]}}`},
		{name: "missing slot format", doc: `{"stage": {"type": "hall", "slots": [{"id": 1, "name": "x", "trigger": 0}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsInvalidDocument(err))
		})
	}
}

func TestService_SyncAndList(t *testing.T) {
	service, _, cleanup := setupSchemaTest(t)
	defer cleanup()

	require.NoError(t, service.Sync(context.Background(), "scene-1", []byte(sampleDocument)))

	locations, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "scene-1", locations[0].Scene)

	stage, err := service.ListScene(context.Background(), "scene-1")
	require.NoError(t, err)
	assert.Len(t, stage, 2)
}

func TestService_SyncReplacesSceneAndPreservesPreviews(t *testing.T) {
	service, repos, cleanup := setupSchemaTest(t)
	defer cleanup()

	require.NoError(t, service.Sync(context.Background(), "scene-1", []byte(sampleDocument)))

	preview := "https://cdn.example.com/stage.png"
	require.NoError(t, service.UpdatePreview(context.Background(), "stage", &preview))

	// Re-sync with a changed slot set
	require.NoError(t, service.Sync(context.Background(), "scene-1", []byte(`{
		"stage": {"type": "hall", "slots": [{"id": 9, "name": "new screen", "format": "16:9", "trigger": 0}]}
	}`)))

	location, err := repos.Locations.GetByID(context.Background(), "stage")
	require.NoError(t, err)
	require.NotNil(t, location.Preview)
	assert.Equal(t, preview, *location.Preview)

	ids, err := service.SlotIDs(context.Background(), "stage")
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, ids)

	// The lobby was dropped by the re-sync
	_, err = repos.Locations.GetByID(context.Background(), "lobby")
	assert.True(t, db.IsNotFound(err))
}

func TestService_SyncRejectsInvalidDocument(t *testing.T) {
	service, _, cleanup := setupSchemaTest(t)
	defer cleanup()

	err := service.Sync(context.Background(), "scene-1", []byte(`{{`))
	require.Error(t, err)
	assert.True(t, IsInvalidDocument(err))

	err = service.Sync(context.Background(), "", []byte(sampleDocument))
	assert.Error(t, err)
}

func TestService_SlotIDs(t *testing.T) {
	service, _, cleanup := setupSchemaTest(t)
	defer cleanup()

	require.NoError(t, service.Sync(context.Background(), "scene-1", []byte(sampleDocument)))

	ids, err := service.SlotIDs(context.Background(), "stage")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	// Second lookup is served from the cache
	ids, err = service.SlotIDs(context.Background(), "stage")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	// Slotless locations are known but empty
	ids, err = service.SlotIDs(context.Background(), "lobby")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestService_SlotIDsUnknownLocation(t *testing.T) {
	service, _, cleanup := setupSchemaTest(t)
	defer cleanup()

	_, err := service.SlotIDs(context.Background(), "nowhere")
	assert.ErrorIs(t, err, livesync.ErrSchemaUnavailable)
}

func TestService_DeleteSceneInvalidatesCache(t *testing.T) {
	service, _, cleanup := setupSchemaTest(t)
	defer cleanup()

	require.NoError(t, service.Sync(context.Background(), "scene-1", []byte(sampleDocument)))

	_, err := service.SlotIDs(context.Background(), "stage")
	require.NoError(t, err)

	require.NoError(t, service.DeleteScene(context.Background(), "scene-1"))

	_, err = service.SlotIDs(context.Background(), "stage")
	assert.ErrorIs(t, err, livesync.ErrSchemaUnavailable)
}
