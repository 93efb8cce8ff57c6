package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/infra/redisstore"
	"storefront/internal/services"
)

const stateAwaitingPayment = "awaiting_payment"

type OrderPlacer interface {
	CreateOrder(ctx context.Context, req services.CheckoutRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, invoice string) (*domain.Order, error)
}

type SessionStore interface {
	Get(ctx context.Context, channel, chatID string) (*redisstore.Session, error)
	Save(ctx context.Context, sess *redisstore.Session) error
}

// Commands answers the chat commands /buy and /status.
type Commands struct {
	orders   OrderPlacer
	sessions SessionStore
	channel  domain.ChatChannel
}

func NewCommands(orders OrderPlacer, sessions SessionStore, channel domain.ChatChannel) *Commands {
	return &Commands{orders: orders, sessions: sessions, channel: channel}
}

const helpText = "Commands:\n/buy <product_id> - create an order and get a QRIS payment code\n/status - check your latest order"

// Handle returns the reply for one command. args is everything after the
// command word.
func (c *Commands) Handle(ctx context.Context, chatID, command, args string) string {
	switch command {
	case "buy":
		return c.buy(ctx, chatID, strings.TrimSpace(args))
	case "status":
		return c.status(ctx, chatID)
	default:
		return helpText
	}
}

func (c *Commands) buy(ctx context.Context, chatID, arg string) string {
	productID, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || productID == 0 {
		return "Usage: /buy <product_id>"
	}

	order, err := c.orders.CreateOrder(ctx, services.CheckoutRequest{ProductID: productID, Chat: chatID})
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return fmt.Sprintf("Product %d does not exist.", productID)
	case errors.Is(err, services.ErrProductUnavailable):
		return "Sorry, that product is currently unavailable."
	case err != nil:
		log.Printf("Bot: /buy %d for chat %s failed: %v", productID, chatID, err)
		return "Could not create your order right now, please try again later."
	}

	sess := &redisstore.Session{
		Channel:       string(c.channel),
		ChatID:        chatID,
		State:         stateAwaitingPayment,
		ProductID:     productID,
		InvoiceNumber: order.InvoiceNumber,
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		log.Printf("Bot: failed to save session for chat %s: %v", chatID, err)
	}

	return fmt.Sprintf(
		"Invoice: %s\nProduct: %s\nPay exactly Rp %d (includes unique code %d) with any QRIS app.\n\n%s\n\nThe download link is sent here once the payment is received. Unpaid orders expire after one hour.",
		order.InvoiceNumber, order.ProductName, order.TotalAmount, order.UniqueCode, order.QRISString,
	)
}

func (c *Commands) status(ctx context.Context, chatID string) string {
	sess, err := c.sessions.Get(ctx, string(c.channel), chatID)
	if err != nil {
		log.Printf("Bot: failed to load session for chat %s: %v", chatID, err)
	}
	if sess == nil || sess.InvoiceNumber == "" {
		return "No active order. Use /buy <product_id> to start."
	}

	order, err := c.orders.GetOrder(ctx, sess.InvoiceNumber)
	if errors.Is(err, services.ErrOrderNotFound) {
		return fmt.Sprintf("Order %s has expired. Use /buy <product_id> to start again.", sess.InvoiceNumber)
	}
	if err != nil {
		log.Printf("Bot: status lookup for %s failed: %v", sess.InvoiceNumber, err)
		return "Could not check your order right now, please try again later."
	}

	if order.IsPaid() {
		return fmt.Sprintf("Order %s is paid. Your download link has been sent.", order.InvoiceNumber)
	}
	return fmt.Sprintf("Order %s is waiting for a payment of exactly Rp %d.", order.InvoiceNumber, order.TotalAmount)
}
