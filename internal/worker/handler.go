package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

// ReorderHandler turns order.placed events into purchasing alerts when a
// product's remaining stock reaches its reorder threshold.
type ReorderHandler struct {
	emailServiceURL string
	recipient       string
	httpClient      *http.Client
	logger          zerolog.Logger
}

func NewReorderHandler(emailServiceURL, recipient string, client *http.Client, logger zerolog.Logger) *ReorderHandler {
	return &ReorderHandler{
		emailServiceURL: emailServiceURL,
		recipient:       recipient,
		httpClient:      client,
		logger:          logger,
	}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *ReorderHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error().Err(err).Msg("dropping undecodable order placed event")
		return nil
	}

	log := h.logger.With().
		Str("event_id", event.EventID).
		Int64("order_id", event.OrderID).
		Str("product_name", event.ProductName).
		Int("remaining_stock", event.RemainingStock).
		Int("reorder_threshold", event.ReorderThreshold).
		Logger()

	if !event.NeedsReorder() {
		log.Debug().Msg("stock above reorder threshold")
		return nil
	}

	if err := h.sendEmail(ctx, emailRequest{
		To:      h.recipient,
		Subject: "Reorder needed: " + event.ProductName,
		Body: fmt.Sprintf("Order %d left %d unit(s) of %s in stock, at or below the reorder threshold of %d.",
			event.OrderID, event.RemainingStock, event.ProductName, event.ReorderThreshold),
	}); err != nil {
		log.Error().Err(err).Msg("failed to send reorder alert")
		return fmt.Errorf("send reorder alert: %w", err)
	}

	log.Info().Msg("reorder alert sent")
	return nil
}

func (h *ReorderHandler) sendEmail(ctx context.Context, body emailRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
