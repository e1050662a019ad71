package email

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joao-fontenele/bizops-backend/internal/httpx"
)

// Handler is a mail sink: it validates and logs messages instead of
// delivering them.
type Handler struct {
	resp   *httpx.Responder
	logger zerolog.Logger
}

func NewHandler(resp *httpx.Responder, logger zerolog.Logger) *Handler {
	return &Handler{
		resp:   resp,
		logger: logger,
	}
}

type sendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().
		Str("to", req.To).
		Str("subject", req.Subject).
		Int("body_bytes", len(req.Body)).
		Msg("email sent")

	h.resp.JSON(w, http.StatusOK, sendResponse{Status: "sent"})
}
