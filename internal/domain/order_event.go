package domain

import "time"

type OrderCreatedEvent struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	ProductID     uint64    `json:"productId"`
	TotalAmount   int64     `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type OrderPaidEvent struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	ProductID     uint64    `json:"productId"`
	TotalAmount   int64     `json:"totalAmount"`
	PaidAt        time.Time `json:"paidAt"`
}

type ChatChannel string

const (
	ChannelTelegram ChatChannel = "telegram"
	ChannelWhatsApp ChatChannel = "whatsapp"
)

// ChatNotification is the job handed to the bot process for delivery.
type ChatNotification struct {
	Channel       ChatChannel `json:"channel"`
	Recipient     string      `json:"recipient"`
	InvoiceNumber string      `json:"invoiceNumber"`
	Text          string      `json:"text"`
}

func (c ChatChannel) RoutingKey() string {
	return "notify." + string(c)
}

