package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Keiter0309/EcomGrove/internal/auth"
	"github.com/Keiter0309/EcomGrove/internal/cart"
	"github.com/Keiter0309/EcomGrove/internal/domain"
	"github.com/Keiter0309/EcomGrove/internal/httpx"
	"github.com/Keiter0309/EcomGrove/internal/memory"
	"github.com/Keiter0309/EcomGrove/internal/orders"
)

type nopPublisher struct{ published int }

func (p *nopPublisher) Publish(_, _ []byte, _ ...kafkago.Header) { p.published++ }

type env struct {
	srv     *httptest.Server
	store   *memory.Store
	created *nopPublisher
	token   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	log := zap.NewNop()

	tokens := auth.NewMemoryTokenStore(time.Hour)
	require.NoError(t, tokens.Set(context.Background(), "tok-user-1", 1))
	require.NoError(t, tokens.Set(context.Background(), "tok-user-2", 2))

	created := &nopPublisher{}
	router := httpx.NewRouter(nil)
	router.Route("/api", func(r chi.Router) {
		r.Use(httpx.Auth(tokens))
		ch := &httpx.CartHandler{Svc: cart.NewService(store, log), Log: log}
		ch.Register(r)
		oh := &httpx.OrdersHandler{
			Svc:       orders.NewService(store, log),
			Created:   created,
			Cancelled: &nopPublisher{},
			Service:   "test",
			Log:       log,
		}
		oh.Register(r)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: store, created: created, token: "tok-user-1"}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	return e.doAs(t, e.token, method, path, body)
}

func (e *env) doAs(t *testing.T, token, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.srv.URL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/api/cart", nil)
	req.Header.Set("Authorization", "Bearer expired-or-bogus")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestCartFlowOverHTTP(t *testing.T) {
	e := newEnv(t)
	p := e.store.SeedProduct(domain.Product{
		Name:  "notebook",
		Price: decimal.RequireFromString("4.00"),
		Stock: 6,
	})

	resp, body := e.do(t, http.MethodPost, "/api/cart",
		map[string]any{"product_id": p.ID, "quantity": 2})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Product added to cart successfully", body["message"])

	resp, body = e.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].([]any)
	require.Len(t, data, 1)

	// asking for more than remains maps to a 400 with the stable kind
	resp, body = e.do(t, http.MethodPost, "/api/cart",
		map[string]any{"product_id": p.ID, "quantity": 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.EINSUFFICIENTSTOCK, body["error"])
}

func TestCheckoutAndCancelOverHTTP(t *testing.T) {
	e := newEnv(t)
	p := e.store.SeedProduct(domain.Product{
		Name:  "notebook",
		Price: decimal.RequireFromString("4.00"),
		Stock: 6,
	})

	_, _ = e.do(t, http.MethodPost, "/api/cart",
		map[string]any{"product_id": p.ID, "quantity": 3})

	resp, body := e.do(t, http.MethodPost, "/api/orders/checkout", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["data"].([]any)
	require.Len(t, created, 1)
	assert.Equal(t, 1, e.created.published)

	orderID := int64(created[0].(map[string]any)["id"].(float64))

	resp, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 6, e.store.ProductStock(p.ID))

	// cancelling again conflicts
	resp, body = e.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.EINVALIDTRANSITION, body["error"])
}

func TestOrderReadsScopedToOwner(t *testing.T) {
	e := newEnv(t)
	p := e.store.SeedProduct(domain.Product{
		Name:  "notebook",
		Price: decimal.RequireFromString("4.00"),
		Stock: 6,
	})

	_, _ = e.do(t, http.MethodPost, "/api/cart",
		map[string]any{"product_id": p.ID, "quantity": 2})
	_, body := e.do(t, http.MethodPost, "/api/orders/checkout", nil)
	created := body["data"].([]any)
	require.Len(t, created, 1)
	orderID := int64(created[0].(map[string]any)["id"].(float64))

	// the owner sees the order and its status
	resp, _ := e.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d/status", orderID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// everyone else sees not found on both paths
	resp, _ = e.doAs(t, "tok-user-2", http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, body = e.doAs(t, "tok-user-2", http.MethodGet, fmt.Sprintf("/api/orders/%d/status", orderID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.ENOTFOUND, body["error"])
}

func TestCheckoutEmptyCartOverHTTP(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/orders/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.EEMPTYCART, body["error"])
}
