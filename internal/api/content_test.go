package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/content"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupContentRouter(t *testing.T) (*db.Repositories, *gin.Engine, func()) {
	t.Helper()

	_, repos, cleanup := setupTestDB(t)
	seedStage(t, repos)

	router, apiGroup := newTestRouter()
	SetupContentRoutes(apiGroup, content.NewService(repos, testLimits))

	return repos, router, cleanup
}

func TestContentAddAndList(t *testing.T) {
	repos, router, cleanup := setupContentRouter(t)
	defer cleanup()

	seeded := seedBooking(t, repos, "0xabc", time.Now().UnixMilli(), hourMillis)

	t.Run("Adds content to a slot", func(t *testing.T) {
		body := map[string]interface{}{
			"booking": seeded.ID,
			"slot":    1,
			"type":    models.KindImage,
			"s3_urn":  "s3://content/poster.png",
			"name":    "poster",
		}
		w := doJSON(router, "POST", "/api/contents", body, nil)
		requireStatus(t, w, http.StatusCreated)

		var created models.ContentItem
		decodeJSON(t, w, &created)
		assert.Equal(t, 1, created.OrderID)
	})

	t.Run("Rejects unknown slot", func(t *testing.T) {
		body := map[string]interface{}{
			"booking": seeded.ID,
			"slot":    99,
			"type":    models.KindImage,
			"s3_urn":  "s3://content/poster.png",
			"name":    "poster",
		}
		w := doJSON(router, "POST", "/api/contents", body, nil)
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("Lists slot content in order", func(t *testing.T) {
		body := map[string]interface{}{
			"booking": seeded.ID,
			"slot":    1,
			"type":    models.KindVideo,
			"s3_urn":  "s3://content/trailer.mp4",
			"name":    "trailer",
		}
		w := doJSON(router, "POST", "/api/contents", body, nil)
		requireStatus(t, w, http.StatusCreated)

		w = doJSON(router, "GET", fmt.Sprintf("/api/contents?slot=1&booking=%d", seeded.ID), nil, nil)
		requireStatus(t, w, http.StatusOK)

		var resp ContentListResponse
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "poster", resp.Items[0].Name)
		assert.Equal(t, "trailer", resp.Items[1].Name)
	})

	t.Run("Lists location content grouped by slot", func(t *testing.T) {
		w := doJSON(router, "GET", fmt.Sprintf("/api/contents?location=stage&booking=%d", seeded.ID), nil, nil)
		requireStatus(t, w, http.StatusOK)

		var grouped map[string][]*models.ContentItem
		decodeJSON(t, w, &grouped)
		require.Len(t, grouped["1"], 2)
	})
}

func TestContentReorderEndpoints(t *testing.T) {
	repos, router, cleanup := setupContentRouter(t)
	defer cleanup()

	seeded := seedBooking(t, repos, "0xabc", time.Now().UnixMilli(), hourMillis)

	names := []string{"a", "b", "c"}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		body := map[string]interface{}{
			"booking": seeded.ID,
			"slot":    1,
			"type":    models.KindImage,
			"s3_urn":  "s3://content/" + name,
			"name":    name,
		}
		w := doJSON(router, "POST", "/api/contents", body, nil)
		requireStatus(t, w, http.StatusCreated)

		var created models.ContentItem
		decodeJSON(t, w, &created)
		ids = append(ids, created.ID)
	}

	t.Run("Applies an explicit order", func(t *testing.T) {
		body := map[string]interface{}{
			"booking": seeded.ID,
			"slot":    1,
			"order": map[string]int{
				fmt.Sprint(ids[0]): 3,
				fmt.Sprint(ids[1]): 1,
				fmt.Sprint(ids[2]): 2,
			},
		}
		w := doJSON(router, "PATCH", "/api/contents/order", body, nil)
		requireStatus(t, w, http.StatusOK)

		var resp ContentListResponse
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Items, 3)
		assert.Equal(t, "b", resp.Items[0].Name)
		assert.Equal(t, "c", resp.Items[1].Name)
		assert.Equal(t, "a", resp.Items[2].Name)
	})

	t.Run("Rejects incomplete order payload", func(t *testing.T) {
		body := map[string]interface{}{
			"booking": seeded.ID,
			"slot":    1,
			"order":   map[string]int{fmt.Sprint(ids[0]): 1},
		}
		w := doJSON(router, "PATCH", "/api/contents/order", body, nil)
		requireStatus(t, w, http.StatusBadRequest)

		var resp ErrorResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, "invalid_order", resp.Error)
	})

	t.Run("Reorders by drag", func(t *testing.T) {
		body := map[string]interface{}{
			"booking":     seeded.ID,
			"slot":        1,
			"start_order": 1,
			"drop_order":  3,
		}
		w := doJSON(router, "POST", "/api/contents/reorder", body, nil)
		requireStatus(t, w, http.StatusOK)

		var resp ContentListResponse
		decodeJSON(t, w, &resp)
		require.Len(t, resp.Items, 3)
		assert.Equal(t, "c", resp.Items[0].Name)
		assert.Equal(t, "a", resp.Items[1].Name)
		assert.Equal(t, "b", resp.Items[2].Name)
	})
}

func TestContentRemove(t *testing.T) {
	repos, router, cleanup := setupContentRouter(t)
	defer cleanup()

	seeded := seedBooking(t, repos, "0xabc", time.Now().UnixMilli(), hourMillis)

	body := map[string]interface{}{
		"booking": seeded.ID,
		"slot":    1,
		"type":    models.KindImage,
		"s3_urn":  "s3://content/poster.png",
		"name":    "poster",
	}
	w := doJSON(router, "POST", "/api/contents", body, nil)
	requireStatus(t, w, http.StatusCreated)

	var created models.ContentItem
	decodeJSON(t, w, &created)

	w = doJSON(router, "DELETE", fmt.Sprintf("/api/contents/%d", created.ID), nil, nil)
	requireStatus(t, w, http.StatusOK)

	w = doJSON(router, "DELETE", fmt.Sprintf("/api/contents/%d", created.ID), nil, nil)
	requireStatus(t, w, http.StatusNotFound)
}
