package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
	"github.com/joao-fontenele/bizops-backend/internal/logging"
)

type fakeStore struct {
	items   map[int64]domain.InventoryItem
	nextID  int64
	listErr error
}

func newFakeStore(items ...domain.InventoryItem) *fakeStore {
	s := &fakeStore{items: map[int64]domain.InventoryItem{}, nextID: 1}
	for _, item := range items {
		s.items[item.ID] = item
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
	}
	return s
}

func (s *fakeStore) List(context.Context) ([]domain.InventoryItem, error) {
	if s.listErr != nil {
		return nil, apperr.Storage(s.listErr)
	}
	items := []domain.InventoryItem{}
	for id := int64(1); id < s.nextID; id++ {
		if item, ok := s.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *fakeStore) Create(_ context.Context, item domain.InventoryItem) (int64, error) {
	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return item.ID, nil
}

func (s *fakeStore) Update(_ context.Context, id int64, item domain.InventoryItem) error {
	if _, ok := s.items[id]; !ok {
		return errItemNotFound
	}
	item.ID = id
	s.items[id] = item
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return errItemNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeStore) AdjustStock(_ context.Context, name string, quantity int) error {
	for id, item := range s.items {
		if item.ProductName != name {
			continue
		}
		if item.StockQuantity-quantity < 0 {
			return apperr.ErrInsufficientStock
		}
		item.StockQuantity -= quantity
		s.items[id] = item
		return nil
	}
	return apperr.ErrProductNotFound
}

func newTestHandler(store Store) *Handler {
	logger := logging.Discard()
	return NewHandler(store, httpx.NewResponder(logger, false), logger)
}

func bolt(stock int) domain.InventoryItem {
	return domain.InventoryItem{
		ID:               1,
		ProductName:      "bolt",
		StockQuantity:    stock,
		ReorderThreshold: 2,
		Price:            decimal.RequireFromString("0.25"),
	}
}

func do(h http.HandlerFunc, method, target, body, id string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if id != "" {
		req.SetPathValue("id", id)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleList(t *testing.T) {
	h := newTestHandler(newFakeStore(bolt(7)))

	rec := do(h.HandleList, http.MethodGet, "/inventory", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "bolt", items[0]["product_name"])
	assert.EqualValues(t, 7, items[0]["stock_quantity"])
}

func TestHandleList_StorageFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	h := newTestHandler(store)

	rec := do(h.HandleList, http.MethodGet, "/inventory", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"storage failure"}`, rec.Body.String())
}

func TestHandleCreate(t *testing.T) {
	t.Run("adds item", func(t *testing.T) {
		store := newFakeStore()
		h := newTestHandler(store)

		rec := do(h.HandleCreate, http.MethodPost, "/inventory",
			`{"product_name":"nut","stock_quantity":50,"reorder_threshold":10,"price":"0.10"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Inventory item added","id":1}`, rec.Body.String())
		assert.Equal(t, "nut", store.items[1].ProductName)
		assert.True(t, decimal.RequireFromString("0.10").Equal(store.items[1].Price))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		h := newTestHandler(newFakeStore())

		rec := do(h.HandleCreate, http.MethodPost, "/inventory",
			`{"product_name":"nut","stock_quantity":1,"price":-1}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		h := newTestHandler(newFakeStore())

		rec := do(h.HandleCreate, http.MethodPost, "/inventory",
			`{"product_name":"nut","stock_quantity":-1,"price":1}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpdate(t *testing.T) {
	t.Run("updates item", func(t *testing.T) {
		store := newFakeStore(bolt(7))
		h := newTestHandler(store)

		rec := do(h.HandleUpdate, http.MethodPut, "/inventory/1",
			`{"product_name":"bolt","stock_quantity":9,"reorder_threshold":3,"price":"0.30"}`, "1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Inventory item updated"}`, rec.Body.String())
		assert.Equal(t, 9, store.items[1].StockQuantity)
	})

	t.Run("missing item", func(t *testing.T) {
		h := newTestHandler(newFakeStore())

		rec := do(h.HandleUpdate, http.MethodPut, "/inventory/42",
			`{"product_name":"bolt","stock_quantity":9,"price":"0.30"}`, "42")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		h := newTestHandler(newFakeStore())

		rec := do(h.HandleUpdate, http.MethodPut, "/inventory/abc",
			`{"product_name":"bolt","stock_quantity":9,"price":"0.30"}`, "abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDelete(t *testing.T) {
	store := newFakeStore(bolt(7))
	h := newTestHandler(store)

	rec := do(h.HandleDelete, http.MethodDelete, "/inventory/1", "", "1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Inventory item deleted"}`, rec.Body.String())
	assert.Empty(t, store.items)

	rec = do(h.HandleDelete, http.MethodDelete, "/inventory/1", "", "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdateStock(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantStock  int
	}{
		{name: "decrement", body: `{"product_name":"bolt","quantity":3}`, wantStatus: http.StatusOK, wantStock: 4},
		{name: "restock", body: `{"product_name":"bolt","quantity":-5}`, wantStatus: http.StatusOK, wantStock: 12},
		{name: "drains to zero", body: `{"product_name":"bolt","quantity":7}`, wantStatus: http.StatusOK, wantStock: 0},
		{name: "overdraw", body: `{"product_name":"bolt","quantity":8}`, wantStatus: http.StatusBadRequest, wantStock: 7},
		{name: "unknown product", body: `{"product_name":"gear","quantity":1}`, wantStatus: http.StatusInternalServerError, wantStock: 7},
		{name: "zero quantity", body: `{"product_name":"bolt","quantity":0}`, wantStatus: http.StatusBadRequest, wantStock: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(bolt(7))
			h := newTestHandler(store)

			rec := do(h.HandleUpdateStock, http.MethodPut, "/inventory/updateStock", tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStock, store.items[1].StockQuantity)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"message":"Inventory stock updated"}`, rec.Body.String())
			}
		})
	}
}
