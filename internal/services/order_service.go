package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/repository"
)

type CheckoutRequest struct {
	ProductID uint64
	Email     string
	Phone     string
	Chat      string
}

type OrderOptions struct {
	UniqueCodeMax int64
	// UniqueCodeCheck redraws the unique code while another pending order
	// created within PendingOrderTTL already carries the same total.
	UniqueCodeCheck    bool
	UniqueCodeAttempts int
	PendingOrderTTL    time.Duration
}

func DefaultOrderOptions() OrderOptions {
	return OrderOptions{
		UniqueCodeMax:      999,
		UniqueCodeCheck:    true,
		UniqueCodeAttempts: 10,
		PendingOrderTTL:    time.Hour,
	}
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	settings  *SettingsService
	qris      infra.QRISGenerator
	publisher rabbit.PublisherInterface
	sequencer SharedSequencer
	fallback  InvoiceSequencer
	opts      OrderOptions

	now        func() time.Time
	uniqueCode func(max int64) int64
	spawn      func(func())
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	settings *SettingsService,
	qris infra.QRISGenerator,
	pub rabbit.PublisherInterface,
	opts OrderOptions,
) *OrderService {
	if opts.UniqueCodeMax <= 0 {
		opts.UniqueCodeMax = 999
	}
	if opts.UniqueCodeAttempts <= 0 {
		opts.UniqueCodeAttempts = 1
	}
	if opts.PendingOrderTTL <= 0 {
		opts.PendingOrderTTL = time.Hour
	}
	return &OrderService{
		orders:     orders,
		products:   products,
		settings:   settings,
		qris:       qris,
		publisher:  pub,
		fallback:   dbSequencer{orders: orders},
		opts:       opts,
		now:        time.Now,
		uniqueCode: func(max int64) int64 { return rand.Int63n(max) + 1 },
		spawn:      func(f func()) { go f() },
	}
}

// SetSequencer installs a shared invoice sequencer. Without one, sequence
// numbers come from the orders table.
func (u *OrderService) SetSequencer(seq SharedSequencer) {
	u.sequencer = seq
}

// CreateOrder records a pending order. Stock is not reserved: it is only
// decremented once the payment is matched.
func (u *OrderService) CreateOrder(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	contact, err := SanitizeContact(req.Email, req.Phone, req.Chat)
	if err != nil {
		return nil, err
	}
	if contact.Empty() {
		return nil, ErrContactRequired
	}

	prod, err := u.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}
	if !prod.Available() {
		return nil, ErrProductUnavailable
	}

	now := u.now()

	invoice, shared, err := u.nextInvoice(ctx, now)
	if err != nil {
		return nil, err
	}

	code, err := u.pickUniqueCode(ctx, prod.Price, now)
	if err != nil {
		return nil, err
	}
	total := prod.Price + code

	order := &domain.Order{
		InvoiceNumber: invoice,
		ProductID:     prod.ID,
		ProductName:   prod.Name,
		ProductPrice:  prod.Price,
		UniqueCode:    code,
		TotalAmount:   total,
		BuyerEmail:    contact.Email,
		BuyerPhone:    contact.Phone,
		BuyerChat:     contact.Chat,
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentMethodQRIS,
		QRISString:    u.paymentString(ctx, total),
		CreatedAt:     now,
	}

	err = u.orders.Create(ctx, order)
	if shared && errors.Is(err, repository.ErrDuplicateInvoice) {
		// The shared counter is behind invoices issued by the database
		// fallback, or it was reset. Catch it up and retry once.
		log.Printf("Invoice %s already taken, resyncing sequencer", order.InvoiceNumber)
		if order.InvoiceNumber, err = u.resyncInvoice(ctx, now); err == nil {
			err = u.orders.Create(ctx, order)
		}
	}
	if err != nil {
		return nil, err
	}

	u.spawn(func() { u.publishOrderCreatedEvent(context.Background(), order) })

	return order, nil
}

// nextInvoice reports whether the number came from the shared sequencer.
func (u *OrderService) nextInvoice(ctx context.Context, now time.Time) (string, bool, error) {
	day := now.Format("20060102")

	if u.sequencer != nil {
		seq, err := u.sequencer.Next(ctx, day)
		if err == nil {
			return FormatInvoice(day, seq), true, nil
		}
		log.Printf("Invoice sequencer failed, falling back to database: %v", err)
	}

	seq, err := u.fallback.Next(ctx, day)
	if err != nil {
		return "", false, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return FormatInvoice(day, seq), false, nil
}

func (u *OrderService) resyncInvoice(ctx context.Context, now time.Time) (string, error) {
	day := now.Format("20060102")

	next, err := u.fallback.Next(ctx, day)
	if err != nil {
		return "", fmt.Errorf("failed to read stored invoices: %w", err)
	}
	if err := u.sequencer.Resync(ctx, day, next-1); err != nil {
		return "", err
	}
	seq, err := u.sequencer.Next(ctx, day)
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return FormatInvoice(day, seq), nil
}

func (u *OrderService) pickUniqueCode(ctx context.Context, price int64, now time.Time) (int64, error) {
	if !u.opts.UniqueCodeCheck {
		return u.uniqueCode(u.opts.UniqueCodeMax), nil
	}

	since := now.Add(-u.opts.PendingOrderTTL)
	for attempt := 0; attempt < u.opts.UniqueCodeAttempts; attempt++ {
		code := u.uniqueCode(u.opts.UniqueCodeMax)
		taken, err := u.orders.ExistsPendingAmount(ctx, price+code, since)
		if err != nil {
			return 0, err
		}
		if !taken {
			return code, nil
		}
		log.Printf("Unique code %d for price %d collides with a pending order, redrawing", code, price)
	}
	return 0, ErrUniqueCodeExhausted
}

// paymentString asks the QRIS service for a dynamic payload. Any failure falls
// back to the configured static base string.
func (u *OrderService) paymentString(ctx context.Context, amount int64) string {
	base, err := u.settings.Get(ctx, domain.SettingQRISBaseString)
	if err != nil {
		log.Printf("Failed to read QRIS base string: %v", err)
		return ""
	}
	if base == "" || u.qris == nil {
		return base
	}

	s, err := u.qris.Generate(ctx, base, amount)
	if err != nil {
		log.Printf("QRIS service unavailable for amount %d, using static base string: %v", amount, err)
		return base
	}
	return s
}

func (u *OrderService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order) {
	if u.publisher == nil {
		return
	}
	evt := domain.OrderCreatedEvent{
		InvoiceNumber: order.InvoiceNumber,
		ProductID:     order.ProductID,
		TotalAmount:   order.TotalAmount,
		CreatedAt:     order.CreatedAt,
	}

	if err := u.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("Failed to publish order.created for %s: %v", order.InvoiceNumber, err)
	}
}

func (u *OrderService) GetOrder(ctx context.Context, invoice string) (*domain.Order, error) {
	o, err := u.orders.FindByInvoice(ctx, invoice)
	if err != nil {
		return nil, err
	}

	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (u *OrderService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// SweepAbandoned deletes pending orders older than the pending TTL.
func (u *OrderService) SweepAbandoned(ctx context.Context) (int64, error) {
	cutoff := u.now().Add(-u.opts.PendingOrderTTL)
	n, err := u.orders.DeletePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep abandoned orders: %w", err)
	}
	if n > 0 {
		log.Printf("Swept %d abandoned pending orders created before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
