package invoices

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
)

type Store interface {
	List(ctx context.Context) ([]domain.Invoice, error)
	Latest(ctx context.Context) (*domain.Invoice, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
}

type Handler struct {
	store  Store
	resp   *httpx.Responder
	logger zerolog.Logger
}

func NewHandler(store Store, resp *httpx.Responder, logger zerolog.Logger) *Handler {
	return &Handler{store: store, resp: resp, logger: logger}
}

type salesReport struct {
	TotalSales decimal.Decimal `json:"total_sales"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.store.List(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int("count", len(invoices)).Msg("invoices listed")
	h.resp.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) HandleSalesReport(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.TotalSales(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Str("total_sales", total.StringFixed(2)).Msg("sales report generated")
	h.resp.JSON(w, http.StatusOK, salesReport{TotalSales: total})
}

func (h *Handler) HandleLatestInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Latest(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("invoice_id", inv.ID).Msg("latest invoice retrieved")
	h.resp.JSON(w, http.StatusOK, inv)
}
