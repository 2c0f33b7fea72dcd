package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/orders"
)

type stubRepo struct {
	orders      map[string]orders.Order
	byCodeCalls int
}

func (r *stubRepo) ByCode(_ context.Context, code string) (orders.Order, error) {
	r.byCodeCalls++
	o, ok := r.orders[code]
	if !ok {
		return orders.Order{}, apperr.NotFound("order")
	}
	return o, nil
}

func (r *stubRepo) Details(context.Context, string) ([]orders.Detail, error) { return nil, nil }

func (r *stubRepo) Transition(context.Context, string, func(*orders.Order) (bool, error)) (orders.Order, error) {
	return orders.Order{}, apperr.NotFound("order")
}

func (r *stubRepo) OpenByShops(context.Context, []string) ([]orders.Order, error) { return nil, nil }

type stubDirectory struct {
	managers map[string][]string
}

func (d *stubDirectory) ShopManagers(_ context.Context, shopID string) ([]string, error) {
	return d.managers[shopID], nil
}

func (d *stubDirectory) IsManager(_ context.Context, shopID, staffID string) (bool, error) {
	for _, id := range d.managers[shopID] {
		if id == staffID {
			return true, nil
		}
	}
	return false, nil
}

func (d *stubDirectory) StaffShops(context.Context, string) ([]string, error) { return nil, nil }

type stubSink struct{}

func (stubSink) OrderCreated(context.Context, orders.Order, []orders.Detail) {}
func (stubSink) OrderUpdated(context.Context, orders.Order, string)          {}

type memStatusCache struct {
	docs map[string]string
	sets int
}

func (c *memStatusCache) GetStatus(_ context.Context, code string) (string, bool) {
	v, ok := c.docs[code]
	return v, ok
}

func (c *memStatusCache) SetStatus(_ context.Context, code string, doc []byte) {
	if c.docs == nil {
		c.docs = map[string]string{}
	}
	c.docs[code] = string(doc)
	c.sets++
}

func statusTestHandler() (*OrdersHandler, *stubRepo, *memStatusCache) {
	repo := &stubRepo{orders: map[string]orders.Order{
		"FD-1": {
			ID: "o-1", Code: "FD-1", UserID: "u1", ShopID: "shop-1",
			Status: orders.StatusConfirmed, PaymentStatus: orders.PayPaid,
			UpdatedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		},
	}}
	dir := &stubDirectory{managers: map[string][]string{"shop-1": {"staff-1"}}}
	cache := &memStatusCache{}
	h := &OrdersHandler{
		Service:   &orders.Service{Repo: repo, Directory: dir, Events: stubSink{}},
		Directory: dir,
		Status:    cache,
	}
	return h, repo, cache
}

func statusRequest(t *testing.T, h *OrdersHandler, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter()
	h.Register(router)
	req := httptest.NewRequest(http.MethodGet, "/orders/FD-1/status", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetOrderStatus_RequiresIdentity(t *testing.T) {
	h, repo, _ := statusTestHandler()

	rec := statusRequest(t, h, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, repo.byCodeCalls)
}

func TestGetOrderStatus_OwnerFallsBackToDBAndPrimesCache(t *testing.T) {
	h, repo, cache := statusTestHandler()

	rec := statusRequest(t, h, map[string]string{headerUserID: "u1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var doc orders.StatusDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, orders.StatusConfirmed, doc.Status)
	assert.Equal(t, orders.PayPaid, doc.PaymentStatus)
	assert.Equal(t, 1, repo.byCodeCalls)
	assert.Equal(t, 1, cache.sets, "DB fallback must prime the cache")
}

func TestGetOrderStatus_WrongCustomerForbiddenFromCache(t *testing.T) {
	h, repo, cache := statusTestHandler()
	doc, _ := json.Marshal(orders.StatusDoc{UserID: "u1", ShopID: "shop-1", Status: orders.StatusConfirmed})
	cache.docs = map[string]string{"FD-1": string(doc)}

	rec := statusRequest(t, h, map[string]string{headerUserID: "someone-else"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, repo.byCodeCalls, "authorization runs on the cached doc alone")
}

func TestGetOrderStatus_CacheHitServesWithoutDB(t *testing.T) {
	h, repo, cache := statusTestHandler()
	doc, _ := json.Marshal(orders.StatusDoc{
		UserID: "u1", ShopID: "shop-1", Status: orders.StatusShipping, PaymentStatus: orders.PayPaid,
	})
	cache.docs = map[string]string{"FD-1": string(doc)}

	rec := statusRequest(t, h, map[string]string{headerUserID: "u1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var got orders.StatusDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, orders.StatusShipping, got.Status)
	assert.Zero(t, repo.byCodeCalls)
}

func TestGetOrderStatus_StaffAuthorization(t *testing.T) {
	h, _, _ := statusTestHandler()

	rec := statusRequest(t, h, map[string]string{headerStaffID: "staff-1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = statusRequest(t, h, map[string]string{headerStaffID: "intruder"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
