package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
)

const PaymentMethodQRIS = "qris"

// Order is a purchase intent. Product fields are a snapshot taken at checkout so
// later product edits do not alter historical invoices.
type Order struct {
	ID            uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	InvoiceNumber string      `json:"invoiceNumber" gorm:"size:32;not null;uniqueIndex"`
	ProductID     uint64      `json:"productId" gorm:"not null;index"`
	ProductName   string      `json:"productName" gorm:"size:255;not null"`
	ProductPrice  int64       `json:"productPrice" gorm:"not null"`
	UniqueCode    int64       `json:"uniqueCode" gorm:"not null"`
	TotalAmount   int64       `json:"totalAmount" gorm:"not null;index:idx_orders_amount_status"`
	BuyerEmail    string      `json:"buyerEmail,omitempty" gorm:"size:255"`
	BuyerPhone    string      `json:"buyerPhone,omitempty" gorm:"size:32"`
	BuyerChat     string      `json:"buyerChat,omitempty" gorm:"size:64"`
	Status        OrderStatus `json:"status" gorm:"size:16;not null;default:pending;index:idx_orders_amount_status"`
	PaymentMethod string      `json:"paymentMethod" gorm:"size:32"`
	QRISString    string      `json:"qrisString" gorm:"type:text"`
	CreatedAt     time.Time   `json:"createdAt" gorm:"index"`
	PaidAt        *time.Time  `json:"paidAt,omitempty"`
}

func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// HasContact reports whether any of the given values matches one of the buyer
// contact channels recorded on the order. Empty values never match.
func (o *Order) HasContact(email, phone, chat string) bool {
	if email != "" && o.BuyerEmail != "" && strings.EqualFold(strings.TrimSpace(email), o.BuyerEmail) {
		return true
	}
	if phone != "" && o.BuyerPhone != "" && phone == o.BuyerPhone {
		return true
	}
	return chat != "" && o.BuyerChat != "" && chat == o.BuyerChat
}
