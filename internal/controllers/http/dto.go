package http

import "time"

type CreateOrderRequest struct {
	ProductID uint64 `json:"product_id" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Chat      string `json:"chat"`
}

type CreateOrderResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	ProductName   string `json:"product_name"`
	TotalAmount   int64  `json:"total_amount"`
	UniqueCode    int64  `json:"unique_code"`
	QRISString    string `json:"qris_string"`
	Status        string `json:"status"`
}

type OrderStatusResponse struct {
	InvoiceNumber string     `json:"invoice_number"`
	ProductName   string     `json:"product_name"`
	TotalAmount   int64      `json:"total_amount"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type WebhookResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

type RecoverRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Chat          string `json:"chat"`
}

type RecoverResponse struct {
	InvoiceNumber string    `json:"invoice_number"`
	DownloadURL   string    `json:"download_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}
