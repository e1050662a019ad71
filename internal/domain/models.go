package domain

import "github.com/shopspring/decimal"

type InventoryItem struct {
	ID               int64           `json:"id"`
	ProductName      string          `json:"product_name"`
	StockQuantity    int             `json:"stock_quantity"`
	ReorderThreshold int             `json:"reorder_threshold"`
	Price            decimal.Decimal `json:"price"`
}

const (
	OrderStatusPending   = "Pending"
	InvoiceStatusPending = "Pending"
)

type Order struct {
	ID          int64  `json:"id"`
	ClientName  string `json:"client_name"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	OrderDate   Date   `json:"order_date"`
	Status      string `json:"status"`
}

type Invoice struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate Date            `json:"due_date"`
	Status  string          `json:"status"`
}

type Client struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
}

// User never serializes its password hash.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
