package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
)

// Responder writes JSON responses and maps errors onto the apperr taxonomy.
type Responder struct {
	logger       zerolog.Logger
	exposeErrors bool
}

func NewResponder(logger zerolog.Logger, exposeErrors bool) *Responder {
	return &Responder{logger: logger, exposeErrors: exposeErrors}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// Message writes {"message": msg} with status 200.
func (rs *Responder) Message(w http.ResponseWriter, msg string) {
	rs.JSON(w, http.StatusOK, map[string]any{"message": msg})
}

func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	typed := apperr.Storage(err)
	status := typed.HTTPStatus()

	if status >= http.StatusInternalServerError {
		rs.logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("code", string(typed.Code())).
			Msg("request failed")
	} else {
		rs.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("code", string(typed.Code())).
			Str("reason", typed.Message()).
			Msg("request rejected")
	}

	msg := typed.Message()
	if typed.Code() == apperr.CodeStorageFailure && !rs.exposeErrors {
		msg = "storage failure"
	}

	if typed.Code() == apperr.CodeInvalidCredentials {
		rs.JSON(w, status, map[string]any{"message": msg})
		return
	}

	body := map[string]any{"error": msg}
	if details := typed.Details(); details != nil {
		body["details"] = details
	}
	rs.JSON(w, status, body)
}
