package orders

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
)

type Lister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type Placer interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Placement, error)
}

type Handler struct {
	repo    Lister
	service Placer
	resp    *httpx.Responder
	logger  zerolog.Logger
}

func NewHandler(repo Lister, service Placer, resp *httpx.Responder, logger zerolog.Logger) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		resp:    resp,
		logger:  logger,
	}
}

type placeOrderRequest struct {
	ClientName  string      `json:"client_name" validate:"required"`
	ProductName string      `json:"product_name" validate:"required"`
	Quantity    int         `json:"quantity" validate:"gt=0"`
	OrderDate   domain.Date `json:"order_date"`
	Status      string      `json:"status"`
}

type placeOrderResponse struct {
	Message   string          `json:"message"`
	OrderID   int64           `json:"order_id"`
	InvoiceID int64           `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int("count", len(orders)).Msg("orders listed")
	h.resp.JSON(w, http.StatusOK, orders)
}

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	placement, err := h.service.PlaceOrder(r.Context(), PlaceOrderInput{
		ClientName:  req.ClientName,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		OrderDate:   req.OrderDate,
		Status:      req.Status,
	})
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.resp.JSON(w, http.StatusOK, placeOrderResponse{
		Message:   "Order & Invoice created",
		OrderID:   placement.OrderID,
		InvoiceID: placement.InvoiceID,
		Amount:    placement.Amount,
	})
}
