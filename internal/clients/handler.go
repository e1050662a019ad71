package clients

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
)

type Store interface {
	List(ctx context.Context) ([]domain.Client, error)
	Create(ctx context.Context, c domain.Client) (int64, error)
}

type Handler struct {
	store  Store
	resp   *httpx.Responder
	logger zerolog.Logger
}

func NewHandler(store Store, resp *httpx.Responder, logger zerolog.Logger) *Handler {
	return &Handler{store: store, resp: resp, logger: logger}
}

type createClientRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.List(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int("count", len(clients)).Msg("clients listed")
	h.resp.JSON(w, http.StatusOK, clients)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	id, err := h.store.Create(r.Context(), domain.Client{
		Name:          req.Name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	})
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("client_id", id).Msg("client added")
	h.resp.JSON(w, http.StatusOK, map[string]any{"message": "Client added", "id": id})
}
