package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	EventID          string          `json:"event_id"`
	OrderID          int64           `json:"order_id"`
	InvoiceID        int64           `json:"invoice_id"`
	ClientName       string          `json:"client_name"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingStock   int             `json:"remaining_stock"`
	ReorderThreshold int             `json:"reorder_threshold"`
	Timestamp        time.Time       `json:"timestamp"`
}

func (e OrderPlacedEvent) NeedsReorder() bool {
	return e.RemainingStock <= e.ReorderThreshold
}
