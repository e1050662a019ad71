package invoices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
	"github.com/joao-fontenele/bizops-backend/internal/logging"
)

type fakeStore struct {
	invoices []domain.Invoice
	err      error
}

func (s *fakeStore) List(context.Context) ([]domain.Invoice, error) {
	if s.err != nil {
		return nil, apperr.Storage(s.err)
	}
	return append([]domain.Invoice{}, s.invoices...), nil
}

func (s *fakeStore) Latest(context.Context) (*domain.Invoice, error) {
	if s.err != nil {
		return nil, apperr.Storage(s.err)
	}
	if len(s.invoices) == 0 {
		return nil, ErrNoInvoices
	}
	inv := s.invoices[len(s.invoices)-1]
	return &inv, nil
}

func (s *fakeStore) TotalSales(context.Context) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, apperr.Storage(s.err)
	}
	total := decimal.Zero
	for _, inv := range s.invoices {
		total = total.Add(inv.Amount)
	}
	return total, nil
}

func newTestHandler(store Store) *Handler {
	logger := logging.Discard()
	return NewHandler(store, httpx.NewResponder(logger, false), logger)
}

func sampleInvoices() []domain.Invoice {
	return []domain.Invoice{
		{ID: 1, OrderID: 10, Amount: decimal.RequireFromString("10.00"), DueDate: domain.NewDate(2024, time.March, 1), Status: "Pending"},
		{ID: 2, OrderID: 11, Amount: decimal.RequireFromString("0.35"), DueDate: domain.NewDate(2024, time.March, 2), Status: "Pending"},
	}
}

func TestHandleSalesReport(t *testing.T) {
	t.Run("sums amounts", func(t *testing.T) {
		h := newTestHandler(&fakeStore{invoices: sampleInvoices()})

		rec := httptest.NewRecorder()
		h.HandleSalesReport(rec, httptest.NewRequest(http.MethodGet, "/reports/sales", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"total_sales":"10.35"}`, rec.Body.String())
	})

	t.Run("empty is zero", func(t *testing.T) {
		h := newTestHandler(&fakeStore{})

		rec := httptest.NewRecorder()
		h.HandleSalesReport(rec, httptest.NewRequest(http.MethodGet, "/reports/sales", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"total_sales":"0"}`, rec.Body.String())
	})
}

func TestHandleLatestInvoice(t *testing.T) {
	t.Run("returns newest", func(t *testing.T) {
		h := newTestHandler(&fakeStore{invoices: sampleInvoices()})

		rec := httptest.NewRecorder()
		h.HandleLatestInvoice(rec, httptest.NewRequest(http.MethodGet, "/reports/invoices", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"id":2,"order_id":11,"amount":"0.35","due_date":"2024-03-02","status":"Pending"}`,
			rec.Body.String())
	})

	t.Run("none yet", func(t *testing.T) {
		h := newTestHandler(&fakeStore{})

		rec := httptest.NewRecorder()
		h.HandleLatestInvoice(rec, httptest.NewRequest(http.MethodGet, "/reports/invoices", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"No invoices found"}`, rec.Body.String())
	})
}

func TestHandleList_StorageFailure(t *testing.T) {
	h := newTestHandler(&fakeStore{err: errors.New("timeout")})

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/invoices", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
