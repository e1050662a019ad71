package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/clients"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
	"github.com/joao-fontenele/bizops-backend/internal/inventory"
	"github.com/joao-fontenele/bizops-backend/internal/invoices"
	"github.com/joao-fontenele/bizops-backend/internal/logging"
	"github.com/joao-fontenele/bizops-backend/internal/orders"
	"github.com/joao-fontenele/bizops-backend/internal/users"
)

type stubHealth struct{ err error }

func (s stubHealth) Check(context.Context) error { return s.err }

type stubInventory struct {
	adjusted []string
	updated  []int64
}

func (s *stubInventory) List(context.Context) ([]domain.InventoryItem, error) {
	return []domain.InventoryItem{}, nil
}

func (s *stubInventory) Create(context.Context, domain.InventoryItem) (int64, error) { return 1, nil }

func (s *stubInventory) Update(_ context.Context, id int64, _ domain.InventoryItem) error {
	s.updated = append(s.updated, id)
	return nil
}

func (s *stubInventory) Delete(context.Context, int64) error { return nil }

func (s *stubInventory) AdjustStock(_ context.Context, name string, _ int) error {
	s.adjusted = append(s.adjusted, name)
	return nil
}

type stubOrders struct{}

func (stubOrders) List(context.Context) ([]domain.Order, error) { return []domain.Order{}, nil }

func (stubOrders) PlaceOrder(context.Context, orders.PlaceOrderInput) (*orders.Placement, error) {
	return nil, apperr.ErrInsufficientStock
}

type stubClients struct{}

func (stubClients) List(context.Context) ([]domain.Client, error)        { return []domain.Client{}, nil }
func (stubClients) Create(context.Context, domain.Client) (int64, error) { return 1, nil }

type stubInvoices struct{}

func (stubInvoices) List(context.Context) ([]domain.Invoice, error) { return []domain.Invoice{}, nil }
func (stubInvoices) Latest(context.Context) (*domain.Invoice, error) {
	return nil, invoices.ErrNoInvoices
}
func (stubInvoices) TotalSales(context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("12.50"), nil
}

type stubUsers struct{}

func (stubUsers) Create(context.Context, string, string) (int64, error) { return 1, nil }
func (stubUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, apperr.NotFound("user not found")
}

func newTestRouter(t *testing.T, health error) (http.Handler, *stubInventory) {
	t.Helper()
	logger := logging.Discard()
	resp := httpx.NewResponder(logger, false)
	inv := &stubInventory{}

	return NewRouter(Deps{
		Users:          users.NewHandler(users.NewService(stubUsers{}, logger), resp, logger),
		Inventory:      inventory.NewHandler(inv, resp, logger),
		Orders:         orders.NewHandler(stubOrders{}, stubOrders{}, resp, logger),
		Clients:        clients.NewHandler(stubClients{}, resp, logger),
		Invoices:       invoices.NewHandler(stubInvoices{}, resp, logger),
		Health:         stubHealth{err: health},
		Metrics:        http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
		Responder:      resp,
		Logger:         logger,
		AllowedOrigins: []string{"*"},
	}), inv
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/inventory", "", http.StatusOK},
		{http.MethodPost, "/inventory", `{"product_name":"bolt","stock_quantity":1,"price":"1"}`, http.StatusOK},
		{http.MethodDelete, "/inventory/3", "", http.StatusOK},
		{http.MethodGet, "/orders", "", http.StatusOK},
		{http.MethodPost, "/orders", `{"client_name":"a","product_name":"b","quantity":1,"order_date":"2024-01-01"}`, http.StatusBadRequest},
		{http.MethodGet, "/clients", "", http.StatusOK},
		{http.MethodPost, "/clients", `{"name":"Acme"}`, http.StatusOK},
		{http.MethodGet, "/invoices", "", http.StatusOK},
		{http.MethodGet, "/reports/sales", "", http.StatusOK},
		{http.MethodGet, "/reports/invoices", "", http.StatusNotFound},
		{http.MethodPost, "/register", `{"email":"a@b.co","password":"pw"}`, http.StatusOK},
		{http.MethodPost, "/login", `{"email":"a@b.co","password":"pw"}`, http.StatusUnauthorized},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
		{http.MethodPatch, "/orders", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_UpdateStockIsNotAnID(t *testing.T) {
	router, inv := newTestRouter(t, nil)

	rec := serve(router, http.MethodPut, "/inventory/updateStock", `{"product_name":"bolt","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"bolt"}, inv.adjusted)
	assert.Empty(t, inv.updated)

	rec = serve(router, http.MethodPut, "/inventory/7", `{"product_name":"bolt","stock_quantity":2,"price":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{7}, inv.updated)
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	router, _ = newTestRouter(t, errors.New("database unavailable"))
	rec = serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","error":"database unavailable"}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
