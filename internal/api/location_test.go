package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSystemToken = "system-secret"

const stageSchema = `{
	"stage": {
		"type": "stage",
		"for_booking": true,
		"slots": [
			{"id": 1, "name": "screen", "supports_streaming": true, "format": "16:9", "trigger": false},
			{"id": 2, "name": "banner", "supports_streaming": false, "format": "1:1", "trigger": false}
		]
	}
}`

func setupLocationRouter(t *testing.T) (*db.Repositories, *gin.Engine, func()) {
	t.Helper()

	_, repos, cleanup := setupTestDB(t)

	router, apiGroup := newTestRouter()
	SetupLocationRoutes(apiGroup, schema.NewService(repos.Locations), testSystemToken)

	return repos, router, cleanup
}

func syncSchema(router *gin.Engine, scene, document, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/sync/location-schema?scene="+scene, bytes.NewBufferString(document))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(systemTokenHeader, token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLocationSchemaSync(t *testing.T) {
	_, router, cleanup := setupLocationRouter(t)
	defer cleanup()

	t.Run("Rejects missing system token", func(t *testing.T) {
		w := syncSchema(router, "main", stageSchema, "")
		requireStatus(t, w, http.StatusForbidden)
	})

	t.Run("Rejects wrong system token", func(t *testing.T) {
		w := syncSchema(router, "main", stageSchema, "guess")
		requireStatus(t, w, http.StatusForbidden)
	})

	t.Run("Requires scene parameter", func(t *testing.T) {
		w := syncSchema(router, "", stageSchema, testSystemToken)
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("Syncs a valid schema document", func(t *testing.T) {
		w := syncSchema(router, "main", stageSchema, testSystemToken)
		requireStatus(t, w, http.StatusOK)

		w = doJSON(router, "GET", "/api/locations", nil, nil)
		requireStatus(t, w, http.StatusOK)

		var resp LocationListResponse
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "stage", resp.Items[0].ID)
		assert.Len(t, resp.Items[0].Slots, 2)
	})

	t.Run("Rejects an invalid schema document", func(t *testing.T) {
		w := syncSchema(router, "main", `{"stage": {"slots": "nope"}}`, testSystemToken)
		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestLocationListingAndPreview(t *testing.T) {
	_, router, cleanup := setupLocationRouter(t)
	defer cleanup()

	w := syncSchema(router, "main", stageSchema, testSystemToken)
	requireStatus(t, w, http.StatusOK)

	t.Run("Filters by scene", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/locations?scene=main", nil, nil)
		requireStatus(t, w, http.StatusOK)

		var resp LocationListResponse
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Items, 1)

		w = doJSON(router, "GET", "/api/locations?scene=other", nil, nil)
		requireStatus(t, w, http.StatusOK)
		decodeJSON(t, w, &resp)
		assert.Empty(t, resp.Items)
	})

	t.Run("Updates a location preview", func(t *testing.T) {
		body := map[string]interface{}{"preview": "s3://previews/stage.png"}
		w := doJSON(router, "PATCH", "/api/locations/stage/preview", body, nil)
		requireStatus(t, w, http.StatusOK)

		w = doJSON(router, "GET", "/api/locations?scene=main", nil, nil)
		requireStatus(t, w, http.StatusOK)

		var resp LocationListResponse
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Items, 1)
		require.NotNil(t, resp.Items[0].Preview)
		assert.Equal(t, "s3://previews/stage.png", *resp.Items[0].Preview)
	})

	t.Run("Preview update for unknown location returns 404", func(t *testing.T) {
		body := map[string]interface{}{"preview": "s3://previews/x.png"}
		w := doJSON(router, "PATCH", "/api/locations/void/preview", body, nil)
		requireStatus(t, w, http.StatusNotFound)
	})

	t.Run("Scene delete requires system token", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/locations?scene=main", nil, nil)
		requireStatus(t, w, http.StatusForbidden)
	})

	t.Run("Scene delete removes locations", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/locations?scene=main", nil, map[string]string{systemTokenHeader: testSystemToken})
		requireStatus(t, w, http.StatusOK)

		w = doJSON(router, "GET", "/api/locations", nil, nil)
		requireStatus(t, w, http.StatusOK)

		var resp LocationListResponse
		decodeJSON(t, w, &resp)
		assert.Empty(t, resp.Items)
	})
}
