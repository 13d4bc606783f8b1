package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartRouter(svc *Service, guestID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if guestID != "" {
			c.Set("guestID", guestID)
		}
		c.Next()
	})

	h := NewHandler(svc)
	r.GET("/cart", h.Get)
	r.GET("/cart/totals", h.Totals)
	r.POST("/cart/items", h.Add)
	r.PUT("/cart/items/:id", h.SetQuantity)
	r.DELETE("/cart/items/:id", h.Remove)
	r.DELETE("/cart", h.Clear)
	r.POST("/cart/sync", h.Sync)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) View {
	t.Helper()
	var v View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHandler_CartFlow(t *testing.T) {
	r := newCartRouter(newTestService(t, newMemoryStore(), newMemoryStore()), "g1")

	w := doJSON(r, http.MethodPost, "/cart/items", `{"menu_item_id":"a"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeView(t, w).ItemCount)

	w = doJSON(r, http.MethodPost, "/cart/items", `{"menu_item_id":"b","quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/cart/items/a", `{"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, 3, v.ItemCount)
	assert.Equal(t, "461", v.Totals.GrandTotal.String())

	w = doJSON(r, http.MethodDelete, "/cart/items/b", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeView(t, w).Lines, 1)

	w = doJSON(r, http.MethodGet, "/cart/totals", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subtotal":"240"`)

	w = doJSON(r, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeView(t, w).ItemCount)
}

func TestHandler_Errors(t *testing.T) {
	r := newCartRouter(newTestService(t, newMemoryStore(), newMemoryStore()), "g1")

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/cart/items", `{"menu_item_id":"a","quantity":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/cart/items", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPost, "/cart/items", `{"menu_item_id":"zzz"}`).Code)
	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/cart/items", `{"menu_item_id":"off"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPut, "/cart/items/a", `{}`).Code)

	noSession := newCartRouter(newTestService(t, newMemoryStore(), newMemoryStore()), "")
	assert.Equal(t, http.StatusUnauthorized, doJSON(noSession, http.MethodGet, "/cart", "").Code)
}

func TestHandler_DivergedWriteStillSucceeds(t *testing.T) {
	guests := newMemoryStore()
	guests.setFail(errors.New("disk full"))
	r := newCartRouter(newTestService(t, guests, newMemoryStore()), "g1")

	w := doJSON(r, http.MethodPost, "/cart/items", `{"menu_item_id":"a","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	v := decodeView(t, w)
	assert.Equal(t, SyncDiverged, v.Sync.State)
	assert.Equal(t, "disk full", v.Sync.Error)
	assert.Equal(t, 2, v.ItemCount)

	guests.setFail(nil)
	w = doJSON(r, http.MethodPost, "/cart/sync", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SyncSynced, decodeView(t, w).Sync.State)
}
