package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"time"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

type PaymentResult struct {
	Matched       bool
	InvoiceNumber string
	Amount        int64
	Message       string
}

// PaymentService attributes payment notifications to pending orders by exact
// total amount.
type PaymentService struct {
	orders      repository.OrderRepository
	tokens      *TokenService
	settings    *SettingsService
	dispatcher  Notifier
	publisher   rabbit.PublisherInterface
	fallbackKey string

	now   func() time.Time
	spawn func(func())
}

func NewPaymentService(
	orders repository.OrderRepository,
	tokens *TokenService,
	settings *SettingsService,
	dispatcher Notifier,
	pub rabbit.PublisherInterface,
	fallbackKey string,
) *PaymentService {
	return &PaymentService{
		orders:      orders,
		tokens:      tokens,
		settings:    settings,
		dispatcher:  dispatcher,
		publisher:   pub,
		fallbackKey: fallbackKey,
		now:         time.Now,
		spawn:       func(f func()) { go f() },
	}
}

// Authenticate compares the caller's key with the webhook_api_key setting,
// or the process-level key when the setting is empty.
func (s *PaymentService) Authenticate(ctx context.Context, apiKey string) error {
	expected, err := s.settings.Get(ctx, domain.SettingWebhookAPIKey)
	if err != nil {
		log.Printf("Failed to read webhook key setting: %v", err)
	}
	if expected == "" {
		expected = s.fallbackKey
	}
	if expected == "" {
		return ErrWebhookKeyMissing
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// HandleNotification matches n against pending orders. A notification without
// an amount, or with no matching pending order, is not an error.
func (s *PaymentService) HandleNotification(ctx context.Context, n payment.Notification) (*PaymentResult, error) {
	amount, ok := n.DetectedAmount()
	if !ok {
		log.Printf("Payment notification without a detectable amount (kind=%s)", n.Kind)
		return &PaymentResult{Message: "notification received, no amount detected"}, nil
	}

	order, err := s.orders.FindPendingByAmount(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pending order: %w", err)
	}
	if order == nil {
		log.Printf("No pending order for amount %d", amount)
		return &PaymentResult{Amount: amount, Message: "notification received, no pending order matches this amount"}, nil
	}

	paidAt := s.now()
	res, err := s.orders.MarkPaid(ctx, order, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mark %s as paid: %w", order.InvoiceNumber, err)
	}
	if !res.Won {
		log.Printf("Order %s was already paid by a concurrent notification", order.InvoiceNumber)
		return &PaymentResult{Amount: amount, Message: "notification received, order already processed"}, nil
	}

	log.Printf("Order %s paid (amount %d)", order.InvoiceNumber, amount)
	if !res.StockDecremented {
		// Stock is not reserved at checkout, so a paid order can outrun the
		// last unit. Surface it for manual follow-up.
		log.Printf("WARNING: order %s paid but product %d had no stock left to decrement", order.InvoiceNumber, order.ProductID)
	}

	tok, err := s.tokens.Issue(ctx, order)
	if err != nil {
		log.Printf("Failed to issue download token for %s, recovery can re-issue: %v", order.InvoiceNumber, err)
	}

	paid := *order
	s.spawn(func() { s.publishOrderPaid(&paid) })
	if tok != nil && s.dispatcher != nil {
		s.spawn(func() { dispatchDetached(s.dispatcher, &paid, tok) })
	}

	return &PaymentResult{
		Matched:       true,
		InvoiceNumber: order.InvoiceNumber,
		Amount:        amount,
		Message:       "payment matched, order marked as paid",
	}, nil
}

func (s *PaymentService) publishOrderPaid(order *domain.Order) {
	if s.publisher == nil {
		return
	}
	evt := domain.OrderPaidEvent{
		InvoiceNumber: order.InvoiceNumber,
		ProductID:     order.ProductID,
		TotalAmount:   order.TotalAmount,
		PaidAt:        s.now(),
	}
	if order.PaidAt != nil {
		evt.PaidAt = *order.PaidAt
	}
	if err := s.publisher.Publish(context.Background(), "order.paid", evt); err != nil {
		log.Printf("Failed to publish order.paid for %s: %v", order.InvoiceNumber, err)
	}
}
