package users

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joao-fontenele/bizops-backend/internal/domain"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
)

type Handler struct {
	service *Service
	resp    *httpx.Responder
	logger  zerolog.Logger
}

func NewHandler(service *Service, resp *httpx.Responder, logger zerolog.Logger) *Handler {
	return &Handler{service: service, resp: resp, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	id, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("user_id", id).Msg("user registered")
	h.resp.JSON(w, http.StatusOK, map[string]any{"message": "User registered successfully", "id": id})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	h.resp.JSON(w, http.StatusOK, loginResponse{Message: "Login successful", User: user})
}
