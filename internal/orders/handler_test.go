package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})

	h := NewHandler(svc)
	r.POST("/orders", h.Place)
	r.GET("/orders", h.List)
	r.GET("/orders/:id", h.Get)
	r.POST("/orders/:id/reorder", h.Reorder)
	r.PUT("/admin/orders/:id/status", NewAdminHandler(svc).UpdateStatus)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_PlaceAndFetch(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "u1")
	r := newOrderRouter(h.svc, "u1")

	w := send(r, http.MethodPost, "/orders", `{"payment_method":"card"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var placed Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	assert.True(t, placed.Total.Equal(decimal.NewFromInt(461)))
	assert.Len(t, placed.Items, 2)

	w = send(r, http.MethodGet, "/orders/"+placed.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodGet, "/orders?status=pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Orders []Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Orders, 1)

	w = send(r, http.MethodPut, "/admin/orders/"+placed.ID+"/status", `{"status":"preparing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"preparing"`)

	w = send(r, http.MethodPost, "/orders/"+placed.ID+"/reorder", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":2`)
}

func TestHandler_Errors(t *testing.T) {
	h := newHarness(t)
	r := newOrderRouter(h.svc, "u1")

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"empty cart", http.MethodPost, "/orders", `{"payment_method":"card"}`, http.StatusBadRequest},
		{"bad payment", http.MethodPost, "/orders", `{"payment_method":"barter"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/orders", `{`, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/orders?status=lost", "", http.StatusBadRequest},
		{"unknown order", http.MethodGet, "/orders/7b0c1c2e-36c1-4c5e-9d43-0d3c5f1f9a10", "", http.StatusNotFound},
		{"missing status", http.MethodPut, "/admin/orders/x/status", `{}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(r, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestHandler_PlaceReportsRemovedDishes(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "u1")
	r := newOrderRouter(h.svc, "u1")

	rice, err := h.catalog.Get(context.Background(), "b")
	require.NoError(t, err)
	rice.Available = false
	require.NoError(t, h.catalog.Update(context.Background(), rice))

	w := send(r, http.MethodPost, "/orders", `{"payment_method":"card"}`)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var body struct {
		Removed []string `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Jeera Rice"}, body.Removed)
}
