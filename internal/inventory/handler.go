package inventory

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
)

type Store interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	Create(ctx context.Context, item domain.InventoryItem) (int64, error)
	Update(ctx context.Context, id int64, item domain.InventoryItem) error
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, productName string, quantity int) error
}

type Handler struct {
	store  Store
	resp   *httpx.Responder
	logger zerolog.Logger
}

func NewHandler(store Store, resp *httpx.Responder, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  store,
		resp:   resp,
		logger: logger,
	}
}

type itemRequest struct {
	ProductName      string          `json:"product_name" validate:"required"`
	StockQuantity    int             `json:"stock_quantity" validate:"gte=0"`
	ReorderThreshold int             `json:"reorder_threshold" validate:"gte=0"`
	Price            decimal.Decimal `json:"price"`
}

func (req itemRequest) toItem() (domain.InventoryItem, error) {
	if req.Price.IsNegative() {
		return domain.InventoryItem{}, apperr.InvalidArgument("validation failed").
			WithDetails(map[string]string{"price": "must be at least 0"})
	}
	return domain.InventoryItem{
		ProductName:      req.ProductName,
		StockQuantity:    req.StockQuantity,
		ReorderThreshold: req.ReorderThreshold,
		Price:            req.Price,
	}, nil
}

// updateStockRequest subtracts quantity from stock; negative values restock.
type updateStockRequest struct {
	ProductName string `json:"product_name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"ne=0"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int("count", len(items)).Msg("inventory listed")
	h.resp.JSON(w, http.StatusOK, items)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	item, err := req.toItem()
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	id, err := h.store.Create(r.Context(), item)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("item_id", id).Str("product_name", item.ProductName).Msg("inventory item added")
	h.resp.JSON(w, http.StatusOK, map[string]any{"message": "Inventory item added", "id": id})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var req itemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	item, err := req.toItem()
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.store.Update(r.Context(), id, item); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("item_id", id).Msg("inventory item updated")
	h.resp.Message(w, "Inventory item updated")
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("item_id", id).Msg("inventory item deleted")
	h.resp.Message(w, "Inventory item deleted")
}

func (h *Handler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	if err := h.store.AdjustStock(r.Context(), req.ProductName, req.Quantity); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Str("product_name", req.ProductName).Int("quantity", req.Quantity).Msg("inventory stock updated")
	h.resp.Message(w, "Inventory stock updated")
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument("invalid inventory id").WithDetails(map[string]string{"id": raw})
	}
	return id, nil
}
